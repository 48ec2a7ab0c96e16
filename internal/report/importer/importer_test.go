package importer

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/norra/internal/config"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
	"go.uber.org/zap"
)

func newTestImporter(t *testing.T, bound int) *Importer {
	t.Helper()
	return NewImporter(Params{
		Log:    zap.NewNop(),
		Config: config.Config{HeaderSearchBound: bound},
	})
}

func TestImportMonthlyReport(t *testing.T) {
	src := strings.Join([]string{
		"Month,Customers,Net MRR",
		"2025-01,120,2000000.50",
		"2025-02,122,2057856.53",
	}, "\n")

	imp, err := newTestImporter(t, 5).Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imp.Granularity != reportdomain.GranularityMonthly {
		t.Fatalf("expected monthly granularity, got %s", imp.Granularity)
	}
	if imp.HeaderOffset != 0 {
		t.Fatalf("expected header at offset 0, got %d", imp.HeaderOffset)
	}
	if len(imp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(imp.Rows))
	}
	if imp.Rows[1].Period != "2025-02" {
		t.Fatalf("expected period 2025-02, got %s", imp.Rows[1].Period)
	}
	if !imp.Rows[1].MRR.Equal(decimal.RequireFromString("2057856.53")) {
		t.Fatalf("unexpected mrr %s", imp.Rows[1].MRR)
	}
}

func TestImportShiftedHeader(t *testing.T) {
	// Exports sometimes carry a decorative title row above the header.
	src := strings.Join([]string{
		"Monthly Recurring Revenue Report,,",
		"date,customers,net_mrr",
		"2025-03-01,130,2100000.00",
		"2025-04-01,131,2150000.00",
	}, "\n")

	imp, err := newTestImporter(t, 5).Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imp.HeaderOffset != 1 {
		t.Fatalf("expected header found at offset 1, got %d", imp.HeaderOffset)
	}
	if len(imp.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(imp.Rows))
	}
	if imp.Rows[0].Period != "2025-03" {
		t.Fatalf("expected period 2025-03, got %s", imp.Rows[0].Period)
	}
}

func TestImportHeaderBeyondBound(t *testing.T) {
	lines := []string{"junk,junk", "junk,junk", "junk,junk"}
	lines = append(lines, "date,net_mrr", "2025-01,100")
	src := strings.Join(lines, "\n")

	_, err := newTestImporter(t, 2).Import(strings.NewReader(src))
	if !errors.Is(err, reportdomain.ErrUnrecognizedFormat) {
		t.Fatalf("expected ErrUnrecognizedFormat, got %v", err)
	}

	var formatErr *reportdomain.UnrecognizedFormatError
	if !errors.As(err, &formatErr) {
		t.Fatalf("expected UnrecognizedFormatError, got %T", err)
	}
	if formatErr.OffsetsTried != 3 {
		t.Fatalf("expected 3 offsets tried, got %d", formatErr.OffsetsTried)
	}
	if len(formatErr.ColumnsSeen) == 0 {
		t.Fatal("expected columns seen to be reported")
	}
}

func TestImportSkipsUnparseableCells(t *testing.T) {
	src := strings.Join([]string{
		"date,net_mrr",
		"2025-01,1000.00",
		"2025-02,n/a",
		"not-a-date,2000.00",
		"2025-03,3000.00",
	}, "\n")

	imp, err := newTestImporter(t, 5).Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imp.Rows) != 2 {
		t.Fatalf("expected 2 parsed rows, got %d", len(imp.Rows))
	}
	if imp.SkippedRows != 2 {
		t.Fatalf("expected 2 skipped rows, got %d", imp.SkippedRows)
	}
}

func TestImportSubscriptionDetails(t *testing.T) {
	src := strings.Join([]string{
		"date,subscription_id,customer_id,plan,mrr",
		"2025-02-01,sub-1,cust-1,Basic,1000.00",
		"2025-02-01,sub-2,cust-1,Extra,500.00",
		"2025-02-01,sub-3,cust-2,Basic,1000.00",
	}, "\n")

	imp, err := newTestImporter(t, 5).Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if imp.Granularity != reportdomain.GranularitySubscription {
		t.Fatalf("expected subscription granularity, got %s", imp.Granularity)
	}

	figs := imp.ReferenceFigures()
	if len(figs) != 1 {
		t.Fatalf("expected 1 period figure, got %d", len(figs))
	}
	fig := figs[0]
	if fig.Period != "2025-02" {
		t.Fatalf("expected period 2025-02, got %s", fig.Period)
	}
	if !fig.MRR.Equal(decimal.RequireFromString("2500")) {
		t.Fatalf("expected reference MRR 2500, got %s", fig.MRR)
	}
	if fig.Population != 3 {
		t.Fatalf("expected population 3, got %d", fig.Population)
	}
	if fig.Customers != 2 {
		t.Fatalf("expected 2 distinct customers, got %d", fig.Customers)
	}
}

func TestImportNorwegianFormattedAmounts(t *testing.T) {
	src := strings.Join([]string{
		"date,net_mrr",
		"2025-01,\"2 057 856.53 kr\"",
	}, "\n")

	imp, err := newTestImporter(t, 5).Import(strings.NewReader(src))
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if len(imp.Rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(imp.Rows))
	}
	if !imp.Rows[0].MRR.Equal(decimal.RequireFromString("2057856.53")) {
		t.Fatalf("unexpected amount %s", imp.Rows[0].MRR)
	}
}

func TestImportFileMissing(t *testing.T) {
	_, err := newTestImporter(t, 5).ImportFile("testdata/does-not-exist.csv")
	if !errors.Is(err, reportdomain.ErrSourceUnavailable) {
		t.Fatalf("expected ErrSourceUnavailable, got %v", err)
	}
}
