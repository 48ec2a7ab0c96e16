// Package domain contains the reconciliation result model and the ranked
// hypothesis rules that classify gaps between calculated and reported MRR.
package domain

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
)

// Classification explains a reconciliation delta.
type Classification string

const (
	ClassificationMatch           Classification = "match"
	ClassificationWithinTolerance Classification = "within_tolerance"
	ClassificationTaxDiscrepancy  Classification = "tax_discrepancy"
	ClassificationPopulation      Classification = "population_discrepancy"
	ClassificationUnexplained     Classification = "unexplained"
)

// Policy holds the thresholds the classifier evaluates against.
type Policy struct {
	// Tolerance is the relative delta treated as agreement.
	Tolerance decimal.Decimal
	// TaxRate is the known tax fraction; double taxation is the recurring
	// failure mode this classifier exists to surface.
	TaxRate decimal.Decimal
	// PopulationThreshold is the subscription-count divergence beyond which
	// the gap is attributed to population change.
	PopulationThreshold int
}

// Result is the outcome of reconciling one period. It is ephemeral unless
// the caller asks for persistence.
type Result struct {
	Period         string           `json:"period"`
	CalculatedMRR  decimal.Decimal  `json:"calculated_mrr"`
	ReferenceMRR   decimal.Decimal  `json:"reference_mrr"`
	AbsoluteDelta  decimal.Decimal  `json:"absolute_delta"`
	RelativeDelta  *decimal.Decimal `json:"relative_delta"` // nil when reference is zero
	Classification Classification   `json:"classification"`
}

// Record is the optional persisted form of a Result.
type Record struct {
	ID             snowflake.ID    `gorm:"primaryKey" json:"id"`
	Period         string          `gorm:"type:text;not null;index" json:"period"`
	CalculatedMRR  decimal.Decimal `gorm:"type:numeric;not null" json:"calculated_mrr"`
	ReferenceMRR   decimal.Decimal `gorm:"type:numeric;not null" json:"reference_mrr"`
	AbsoluteDelta  decimal.Decimal `gorm:"type:numeric;not null" json:"absolute_delta"`
	Classification Classification  `gorm:"type:text;not null" json:"classification"`
	CreatedAt      time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

// TableName sets the database table name.
func (Record) TableName() string { return "reconciliation_results" }

// RunResult is the outcome of reconciling an imported report.
type RunResult struct {
	Results []Result `json:"results"`
	// MissingPeriods lists reference periods with no calculated snapshot.
	MissingPeriods []string `json:"missing_periods,omitempty"`
}

// Service reconciles imported reference reports against calculated snapshots.
type Service interface {
	Run(ctx context.Context, imp *reportdomain.Import, persist bool) (*RunResult, error)
}

var (
	ErrEmptyImport = errors.New("empty_import")
)
