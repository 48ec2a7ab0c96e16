package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestNormalizeAnnualWithVAT(t *testing.T) {
	// 1200 yearly, 25% VAT embedded: 1200/1.25/12 = 80.
	got, err := Normalize(dec("1200"), subscriptiondomain.IntervalYears, 1, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !got.Equal(dec("80")) {
		t.Fatalf("expected 80, got %s", got)
	}
}

func TestNormalizeMonthlyNoTax(t *testing.T) {
	got, err := Normalize(dec("100"), subscriptiondomain.IntervalMonths, 1, decimal.Zero)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !got.Equal(dec("100")) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestNormalizeQuarterly(t *testing.T) {
	// interval=months, unit=3 is a quarterly plan.
	got, err := Normalize(dec("375"), subscriptiondomain.IntervalMonths, 3, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !got.Equal(dec("100")) {
		t.Fatalf("expected 100, got %s", got)
	}
}

func TestNormalizeRejectsUnknownInterval(t *testing.T) {
	_, err := Normalize(dec("100"), subscriptiondomain.BillingInterval("weeks"), 1, decimal.Zero)
	if !errors.Is(err, ErrInvalidInterval) {
		t.Fatalf("expected ErrInvalidInterval, got %v", err)
	}
}

func TestNormalizeRejectsBadInputs(t *testing.T) {
	if _, err := Normalize(dec("-1"), subscriptiondomain.IntervalMonths, 1, decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative amount, got %v", err)
	}
	if _, err := Normalize(dec("100"), subscriptiondomain.IntervalMonths, 0, decimal.Zero); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero interval unit, got %v", err)
	}
	if _, err := Normalize(dec("100"), subscriptiondomain.IntervalMonths, 1, dec("1")); !errors.Is(err, ErrInvalidTaxRate) {
		t.Fatalf("expected ErrInvalidTaxRate for rate >= 1, got %v", err)
	}
	if _, err := Normalize(dec("100"), subscriptiondomain.IntervalMonths, 1, dec("-0.1")); !errors.Is(err, ErrInvalidTaxRate) {
		t.Fatalf("expected ErrInvalidTaxRate for negative rate, got %v", err)
	}
}

func TestNormalizeMonotonicity(t *testing.T) {
	lower, err := Normalize(dec("100"), subscriptiondomain.IntervalMonths, 1, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	higher, err := Normalize(dec("200"), subscriptiondomain.IntervalMonths, 1, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !higher.GreaterThan(lower) {
		t.Fatalf("expected monthly amount to increase with amount: %s vs %s", higher, lower)
	}

	unit1, err := Normalize(dec("1200"), subscriptiondomain.IntervalMonths, 1, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	unit6, err := Normalize(dec("1200"), subscriptiondomain.IntervalMonths, 6, dec("0.25"))
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if !unit6.LessThan(unit1) {
		t.Fatalf("expected monthly amount to decrease with interval unit: %s vs %s", unit6, unit1)
	}
}
