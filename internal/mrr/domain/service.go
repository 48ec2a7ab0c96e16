package domain

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ChurnReport summarises customer and revenue churn for a period.
type ChurnReport struct {
	PeriodStart       time.Time       `json:"period_start"`
	PeriodEnd         time.Time       `json:"period_end"`
	ChurnedCustomers  int             `json:"churned_customers"`
	ChurnedMRR        decimal.Decimal `json:"churned_mrr"`
	CustomerChurnRate decimal.Decimal `json:"customer_churn_rate"`
	RevenueChurnRate  decimal.Decimal `json:"revenue_churn_rate"`
}

// Movement breaks the month-over-month MRR change into its components.
type Movement struct {
	CurrentMonth  string          `json:"current_month"`
	PreviousMonth string          `json:"previous_month"`
	NewMRR        decimal.Decimal `json:"new_mrr"`
	ChurnedMRR    decimal.Decimal `json:"churned_mrr"`
	NetChange     decimal.Decimal `json:"net_change"`
	NewCount      int             `json:"new_subscriptions"`
	ChurnedCount  int             `json:"churned_subscriptions"`
}

// Service computes and persists recurring revenue metrics.
type Service interface {
	// ComputeSnapshot builds a calculated snapshot as of the given instant
	// and appends it to the snapshot store.
	ComputeSnapshot(ctx context.Context, asOf time.Time) (*Snapshot, error)

	// LatestSnapshot returns the most recent snapshot at or before the
	// given date, preferring the given source.
	LatestSnapshot(ctx context.Context, onOrBefore time.Time, source SnapshotSource) (*Snapshot, error)

	// ListSnapshots returns the latest snapshot per period between the
	// given dates, both sources.
	ListSnapshots(ctx context.Context, start, end time.Time) ([]Snapshot, error)

	// Churn computes churn for [start, end).
	Churn(ctx context.Context, start, end time.Time) (*ChurnReport, error)

	// ARPU returns average revenue per customer as of the given instant.
	ARPU(ctx context.Context, asOf time.Time) (decimal.Decimal, error)
}

var (
	ErrSnapshotNotFound = errors.New("snapshot_not_found")
	ErrInvalidPeriod    = errors.New("invalid_period")
)
