// Package importer parses CSV revenue exports whose layout drifts between
// export versions.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/norra/internal/config"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

// Exports periodically gain or lose a title row above the header, so the
// header is searched at increasing offsets up to a hard bound.
const defaultHeaderSearchBound = 5

type Importer struct {
	log   *zap.Logger
	bound int
}

type Params struct {
	fx.In

	Log    *zap.Logger
	Config config.Config
}

func NewImporter(p Params) *Importer {
	bound := p.Config.HeaderSearchBound
	if bound <= 0 {
		bound = defaultHeaderSearchBound
	}
	return &Importer{
		log:   p.Log.Named("report.importer"),
		bound: bound,
	}
}

// ImportFile opens and parses a report export from disk.
func (i *Importer) ImportFile(path string) (*reportdomain.Import, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", reportdomain.ErrSourceUnavailable, path)
	}
	defer f.Close()
	return i.Import(f)
}

// Import parses a report export. The header row is searched at offsets
// 0..bound; the first offset whose row matches the expected vocabulary wins
// and later offsets are never considered.
func (i *Importer) Import(r io.Reader) (*reportdomain.Import, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", reportdomain.ErrSourceUnavailable, err)
	}

	columnsSeen := make([]string, 0)
	offsetsTried := 0
	for offset := 0; offset <= i.bound && offset < len(records); offset++ {
		offsetsTried++
		header := records[offset]
		columnsSeen = appendColumns(columnsSeen, header)
		if !headerRecognized(header) {
			continue
		}

		imp := i.parseAt(records, offset)
		i.log.Info("report parsed",
			zap.Int("header_offset", offset),
			zap.String("granularity", string(imp.Granularity)),
			zap.Int("rows", len(imp.Rows)),
			zap.Int("skipped_rows", imp.SkippedRows),
		)
		return imp, nil
	}

	return nil, &reportdomain.UnrecognizedFormatError{
		OffsetsTried: offsetsTried,
		ColumnsSeen:  columnsSeen,
	}
}

// headerRecognized matches the expected column vocabulary case-insensitively.
// A real header carries both a period column and a revenue column in separate
// cells; requiring both keeps decorative title rows from matching.
func headerRecognized(header []string) bool {
	periodIdx, revenueIdx := -1, -1
	for idx, col := range header {
		lower := strings.ToLower(strings.TrimSpace(col))
		if periodIdx < 0 && (strings.Contains(lower, "month") || strings.Contains(lower, "date")) {
			periodIdx = idx
		}
		if strings.Contains(lower, "mrr") {
			revenueIdx = idx
		}
	}
	return periodIdx >= 0 && revenueIdx >= 0 && periodIdx != revenueIdx
}

type layout struct {
	dateCol     int
	mrrCol      int
	subIDCol    int
	customerCol int
}

func detectLayout(header []string) layout {
	l := layout{dateCol: -1, mrrCol: -1, subIDCol: -1, customerCol: -1}
	for idx, col := range header {
		lower := strings.ToLower(strings.TrimSpace(col))
		switch {
		case l.dateCol < 0 && (strings.Contains(lower, "date") || strings.Contains(lower, "month")):
			l.dateCol = idx
		case l.mrrCol < 0 && strings.Contains(lower, "mrr") && !strings.Contains(lower, "customer"):
			l.mrrCol = idx
		case l.subIDCol < 0 && strings.Contains(lower, "subscription"):
			l.subIDCol = idx
		case l.customerCol < 0 && strings.Contains(lower, "customer") && strings.Contains(lower, "id"):
			l.customerCol = idx
		}
	}
	// The provider's exports keep the period first and the revenue last when
	// the columns are not labelled recognizably.
	if l.dateCol < 0 {
		l.dateCol = 0
	}
	if l.mrrCol < 0 {
		l.mrrCol = len(header) - 1
	}
	return l
}

func (i *Importer) parseAt(records [][]string, offset int) *reportdomain.Import {
	header := records[offset]
	l := detectLayout(header)

	imp := &reportdomain.Import{
		Granularity:  reportdomain.GranularityMonthly,
		HeaderOffset: offset,
		Columns:      append([]string(nil), header...),
	}
	if l.subIDCol >= 0 {
		imp.Granularity = reportdomain.GranularitySubscription
	}

	for _, record := range records[offset+1:] {
		if isBlank(record) {
			continue
		}
		row, ok := parseRow(record, l)
		if !ok {
			imp.SkippedRows++
			continue
		}
		imp.Rows = append(imp.Rows, row)
	}

	imp.Metadata = datatypes.JSONMap{
		"header_offset": offset,
		"columns":       strings.Join(imp.Columns, ","),
		"skipped_rows":  imp.SkippedRows,
	}
	return imp
}

func parseRow(record []string, l layout) (reportdomain.Row, bool) {
	if l.dateCol >= len(record) || l.mrrCol >= len(record) {
		return reportdomain.Row{}, false
	}

	period, ok := parsePeriod(record[l.dateCol])
	if !ok {
		return reportdomain.Row{}, false
	}
	// Unparseable revenue cells are excluded from aggregation, not zeroed.
	mrr, ok := parseAmount(record[l.mrrCol])
	if !ok {
		return reportdomain.Row{}, false
	}

	row := reportdomain.Row{Period: period, MRR: mrr}
	if l.subIDCol >= 0 && l.subIDCol < len(record) {
		row.SubscriptionID = strings.TrimSpace(record[l.subIDCol])
	}
	if l.customerCol >= 0 && l.customerCol < len(record) {
		row.CustomerID = strings.TrimSpace(record[l.customerCol])
	}
	return row, true
}

var periodLayouts = []string{
	"2006-01",
	"2006-01-02",
	"02.01.2006",
	"Jan 2006",
	"January 2006",
	"01/2006",
}

func parsePeriod(value string) (string, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	for _, layout := range periodLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts.Format("2006-01"), true
		}
	}
	return "", false
}

func parseAmount(value string) (decimal.Decimal, bool) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimSuffix(cleaned, "kr")
	cleaned = strings.TrimSuffix(cleaned, "NOK")
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "\u00a0", "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" {
		return decimal.Zero, false
	}
	amount, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return amount, true
}

func isBlank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

func appendColumns(seen []string, header []string) []string {
	for _, col := range header {
		col = strings.TrimSpace(col)
		if col != "" {
			seen = append(seen, col)
		}
	}
	return seen
}
