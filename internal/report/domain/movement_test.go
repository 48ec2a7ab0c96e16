package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func detailsImport(period string, rows map[string]string) *Import {
	imp := &Import{Granularity: GranularitySubscription}
	for id, mrr := range rows {
		imp.Rows = append(imp.Rows, Row{Period: period, SubscriptionID: id, MRR: dec(mrr)})
	}
	return imp
}

func TestComputeMovement(t *testing.T) {
	previous := detailsImport("2024-10", map[string]string{
		"sub-1": "1000",
		"sub-2": "500",
		"sub-3": "250",
	})
	current := detailsImport("2024-11", map[string]string{
		"sub-1": "1000",
		"sub-2": "500",
		"sub-4": "800",
	})

	movement, err := ComputeMovement(current, previous)
	if err != nil {
		t.Fatalf("compute movement: %v", err)
	}
	if !movement.NewMRR.Equal(dec("800")) {
		t.Fatalf("expected new MRR 800, got %s", movement.NewMRR)
	}
	if movement.NewCount != 1 {
		t.Fatalf("expected 1 new subscription, got %d", movement.NewCount)
	}
	if !movement.ChurnedMRR.Equal(dec("250")) {
		t.Fatalf("expected churned MRR 250, got %s", movement.ChurnedMRR)
	}
	if movement.ChurnedCount != 1 {
		t.Fatalf("expected 1 churned subscription, got %d", movement.ChurnedCount)
	}
	if !movement.NetChange.Equal(dec("550")) {
		t.Fatalf("expected net change 550, got %s", movement.NetChange)
	}
	if movement.CurrentMonth != "2024-11" || movement.PreviousMonth != "2024-10" {
		t.Fatalf("unexpected months %s / %s", movement.CurrentMonth, movement.PreviousMonth)
	}
}

func TestComputeMovementRequiresSubscriptionGranularity(t *testing.T) {
	monthly := &Import{Granularity: GranularityMonthly}
	details := detailsImport("2024-11", map[string]string{"sub-1": "100"})

	if _, err := ComputeMovement(monthly, details); !errors.Is(err, ErrGranularityNeeded) {
		t.Fatalf("expected ErrGranularityNeeded, got %v", err)
	}
	if _, err := ComputeMovement(details, nil); !errors.Is(err, ErrGranularityNeeded) {
		t.Fatalf("expected ErrGranularityNeeded for nil import, got %v", err)
	}
}
