package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/norra/internal/config"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	mrrrepository "github.com/smallbiznis/norra/internal/mrr/repository"
	reconciledomain "github.com/smallbiznis/norra/internal/reconcile/domain"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	statements := []string{
		`CREATE TABLE mrr_snapshots (
			id INTEGER PRIMARY KEY,
			snapshot_date DATETIME NOT NULL,
			mrr NUMERIC NOT NULL,
			arr NUMERIC NOT NULL,
			total_customers INTEGER NOT NULL,
			active_subscriptions INTEGER NOT NULL,
			skipped_records INTEGER NOT NULL DEFAULT 0,
			source TEXT NOT NULL DEFAULT 'calculated',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE reconciliation_results (
			id INTEGER PRIMARY KEY,
			period TEXT NOT NULL,
			calculated_mrr NUMERIC NOT NULL,
			reference_mrr NUMERIC NOT NULL,
			absolute_delta NUMERIC NOT NULL,
			classification TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func newTestService(t *testing.T, db *gorm.DB) (reconciledomain.Service, mrrdomain.SnapshotRepository) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	repo := mrrrepository.NewRepository(mrrrepository.Params{DB: db, GenID: node})
	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Config: config.Config{
			TaxRate:             decimal.RequireFromString("0.25"),
			ReconcileTolerance:  decimal.RequireFromString("0.02"),
			PopulationThreshold: 25,
		},
		SnapshotRepo: repo,
	})
	return svc, repo
}

func seedSnapshot(t *testing.T, repo mrrdomain.SnapshotRepository, date time.Time, mrr string, population int) {
	t.Helper()
	snap := &mrrdomain.Snapshot{
		SnapshotDate:        date,
		MRR:                 decimal.RequireFromString(mrr),
		ARR:                 decimal.RequireFromString(mrr).Mul(decimal.NewFromInt(12)),
		TotalCustomers:      population,
		ActiveSubscriptions: population,
		Source:              mrrdomain.SourceCalculated,
	}
	if err := repo.Append(context.Background(), snap); err != nil {
		t.Fatalf("seed snapshot: %v", err)
	}
}

func monthlyImport(rows map[string]string) *reportdomain.Import {
	imp := &reportdomain.Import{Granularity: reportdomain.GranularityMonthly}
	for period, mrr := range rows {
		imp.Rows = append(imp.Rows, reportdomain.Row{
			Period: period,
			MRR:    decimal.RequireFromString(mrr),
		})
	}
	return imp
}

func TestRunClassifiesMatch(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	seedSnapshot(t, repo, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2000000", 400)

	run, err := svc.Run(context.Background(), monthlyImport(map[string]string{"2025-06": "2000000"}), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(run.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(run.Results))
	}
	if run.Results[0].Classification != reconciledomain.ClassificationMatch {
		t.Fatalf("classification = %s, want match", run.Results[0].Classification)
	}
	if len(run.MissingPeriods) != 0 {
		t.Fatalf("missing periods = %v, want none", run.MissingPeriods)
	}
}

func TestRunFlagsTaxDiscrepancy(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	// Calculated figure still carries 25% VAT relative to the report.
	seedSnapshot(t, repo, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2500000", 400)

	run, err := svc.Run(context.Background(), monthlyImport(map[string]string{"2025-06": "2000000"}), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Results[0].Classification != reconciledomain.ClassificationTaxDiscrepancy {
		t.Fatalf("classification = %s, want tax_discrepancy", run.Results[0].Classification)
	}
}

func TestRunReportsMissingPeriods(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	seedSnapshot(t, repo, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2000000", 400)

	run, err := svc.Run(context.Background(), monthlyImport(map[string]string{
		"2025-06": "2000000",
		"2025-07": "2100000",
	}), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(run.Results) != 1 {
		t.Fatalf("results = %d, want 1", len(run.Results))
	}
	if len(run.MissingPeriods) != 1 || run.MissingPeriods[0] != "2025-07" {
		t.Fatalf("missing periods = %v, want [2025-07]", run.MissingPeriods)
	}
}

func TestRunDoesNotCrossPeriodBoundaries(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	// Only a May snapshot exists; a June reference must not match it.
	seedSnapshot(t, repo, time.Date(2025, 5, 31, 0, 0, 0, 0, time.UTC), "2000000", 400)

	run, err := svc.Run(context.Background(), monthlyImport(map[string]string{"2025-06": "2000000"}), false)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(run.Results) != 0 {
		t.Fatalf("results = %d, want 0", len(run.Results))
	}
	if len(run.MissingPeriods) != 1 || run.MissingPeriods[0] != "2025-06" {
		t.Fatalf("missing periods = %v, want [2025-06]", run.MissingPeriods)
	}
}

func TestRunPersistsResults(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	seedSnapshot(t, repo, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2000000", 400)

	if _, err := svc.Run(context.Background(), monthlyImport(map[string]string{"2025-06": "2000000"}), true); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var records []reconciledomain.Record
	if err := db.Find(&records).Error; err != nil {
		t.Fatalf("load records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Period != "2025-06" || records[0].Classification != reconciledomain.ClassificationMatch {
		t.Fatalf("record = %+v, want 2025-06 match", records[0])
	}
}

func TestRunEphemeralByDefault(t *testing.T) {
	db := setupTestDB(t)
	svc, repo := newTestService(t, db)

	seedSnapshot(t, repo, time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC), "2000000", 400)

	if _, err := svc.Run(context.Background(), monthlyImport(map[string]string{"2025-06": "2000000"}), false); err != nil {
		t.Fatalf("Run: %v", err)
	}

	var count int64
	if err := db.Table("reconciliation_results").Count(&count).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if count != 0 {
		t.Fatalf("records = %d, want 0", count)
	}
}

func TestRunEmptyImport(t *testing.T) {
	db := setupTestDB(t)
	svc, _ := newTestService(t, db)

	if _, err := svc.Run(context.Background(), &reportdomain.Import{}, false); err != reconciledomain.ErrEmptyImport {
		t.Fatalf("err = %v, want ErrEmptyImport", err)
	}
}
