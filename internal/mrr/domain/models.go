// Package domain contains the recurring revenue snapshot models and the pure
// normalization and aggregation rules they are computed with.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// SnapshotSource records snapshot provenance.
type SnapshotSource string

const (
	SourceCalculated SnapshotSource = "calculated"
	SourceImported   SnapshotSource = "imported"
)

// Snapshot is an immutable point-in-time aggregate of the subscription ledger.
// A re-run for the same date appends a new row; the latest row wins for
// reporting.
type Snapshot struct {
	ID           snowflake.ID   `gorm:"primaryKey" json:"id"`
	SnapshotDate time.Time      `gorm:"not null;index" json:"snapshot_date"`

	MRR decimal.Decimal `gorm:"type:numeric;not null" json:"mrr"`
	ARR decimal.Decimal `gorm:"type:numeric;not null" json:"arr"`

	TotalCustomers      int `gorm:"not null" json:"total_customers"`
	ActiveSubscriptions int `gorm:"not null" json:"active_subscriptions"`

	// SkippedRecords counts ledger rows excluded because normalization
	// rejected them. Carried on every snapshot so data loss is never silent.
	SkippedRecords int `gorm:"not null;default:0" json:"skipped_records"`

	Source    SnapshotSource `gorm:"type:text;not null;default:calculated" json:"source"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Snapshot) TableName() string { return "mrr_snapshots" }

// Month returns the snapshot period in YYYY-MM form.
func (s Snapshot) Month() string {
	return s.SnapshotDate.UTC().Format("2006-01")
}
