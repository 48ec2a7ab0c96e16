// Package domain describes imported revenue reports from the external
// billing provider.
package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

// Granularity tells consumers what one imported row represents.
type Granularity string

const (
	// GranularityMonthly means each row is an already-aggregated period figure.
	GranularityMonthly Granularity = "monthly"
	// GranularitySubscription means each row is one subscription for a period.
	GranularitySubscription Granularity = "subscription"
)

// Row is one parsed report line.
type Row struct {
	Period         string          `json:"period"`
	SubscriptionID string          `json:"subscription_id,omitempty"`
	CustomerID     string          `json:"customer_id,omitempty"`
	MRR            decimal.Decimal `json:"mrr"`
}

// Import is the canonical result of parsing one report export.
type Import struct {
	Granularity  Granularity       `json:"granularity"`
	Rows         []Row             `json:"rows"`
	SkippedRows  int               `json:"skipped_rows"`
	HeaderOffset int               `json:"header_offset"`
	Columns      []string          `json:"columns"`
	Metadata     datatypes.JSONMap `json:"metadata,omitempty"`
}

// ReferenceFigure is a per-period reference aggregate consumed by the
// reconciler.
type ReferenceFigure struct {
	Period     string          `json:"period"`
	MRR        decimal.Decimal `json:"mrr"`
	Population int             `json:"population"`
	Customers  int             `json:"customers"`
}

// ReferenceFigures folds the import into ordered per-period aggregates. For
// monthly exports every row already is a figure; for subscription-level
// exports rows are summed per period and the population is the row count.
func (imp *Import) ReferenceFigures() []ReferenceFigure {
	if imp == nil {
		return nil
	}

	order := make([]string, 0)
	byPeriod := make(map[string]*ReferenceFigure)
	customers := make(map[string]map[string]struct{})

	for _, row := range imp.Rows {
		fig, ok := byPeriod[row.Period]
		if !ok {
			fig = &ReferenceFigure{Period: row.Period}
			byPeriod[row.Period] = fig
			customers[row.Period] = make(map[string]struct{})
			order = append(order, row.Period)
		}
		fig.MRR = fig.MRR.Add(row.MRR)
		if imp.Granularity == GranularitySubscription {
			fig.Population++
			if row.CustomerID != "" {
				customers[row.Period][row.CustomerID] = struct{}{}
			}
		}
	}

	out := make([]ReferenceFigure, 0, len(order))
	for _, period := range order {
		fig := byPeriod[period]
		fig.Customers = len(customers[period])
		out = append(out, *fig)
	}
	return out
}

var (
	ErrUnrecognizedFormat = errors.New("unrecognized_report_format")
	ErrSourceUnavailable  = errors.New("report_source_unavailable")
	ErrGranularityNeeded  = errors.New("subscription_granularity_required")
)

// UnrecognizedFormatError carries enough context for a human to diagnose a
// failed import: which offsets were tried and what columns were seen.
type UnrecognizedFormatError struct {
	OffsetsTried int
	ColumnsSeen  []string
}

func (e *UnrecognizedFormatError) Error() string {
	return fmt.Sprintf("unrecognized report format after %d header offsets (columns seen: %s)",
		e.OffsetsTried, strings.Join(e.ColumnsSeen, ", "))
}

func (e *UnrecognizedFormatError) Unwrap() error { return ErrUnrecognizedFormat }
