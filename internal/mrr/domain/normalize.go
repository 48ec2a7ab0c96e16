package domain

import (
	"errors"

	"github.com/shopspring/decimal"
	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
)

var (
	ErrInvalidAmount   = errors.New("invalid_amount")
	ErrInvalidInterval = errors.New("invalid_interval")
	ErrInvalidTaxRate  = errors.New("invalid_tax_rate")
)

// DefaultTaxRate is the VAT fraction embedded in amounts as synced from the
// billing provider. Jurisdiction-dependent; callers should take it from
// configuration rather than relying on this default.
var DefaultTaxRate = decimal.RequireFromString("0.25")

var months12 = decimal.NewFromInt(12)

// Normalize converts one billing amount into its tax-exclusive monthly
// equivalent. The stored amount is tax-inclusive, so the embedded tax is
// stripped first and the net is then spread over the billing interval.
func Normalize(amount decimal.Decimal, interval subscriptiondomain.BillingInterval, intervalUnit int, taxRate decimal.Decimal) (decimal.Decimal, error) {
	if amount.IsNegative() || intervalUnit < 1 {
		return decimal.Zero, ErrInvalidAmount
	}
	if taxRate.IsNegative() || taxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return decimal.Zero, ErrInvalidTaxRate
	}

	net := amount.Div(decimal.NewFromInt(1).Add(taxRate))
	unit := decimal.NewFromInt(int64(intervalUnit))

	switch interval {
	case subscriptiondomain.IntervalMonths:
		return net.Div(unit), nil
	case subscriptiondomain.IntervalYears:
		return net.Div(unit.Mul(months12)), nil
	default:
		return decimal.Zero, ErrInvalidInterval
	}
}

// NormalizeSubscription applies Normalize to a ledger row.
func NormalizeSubscription(sub subscriptiondomain.Subscription, taxRate decimal.Decimal) (decimal.Decimal, error) {
	return Normalize(sub.Amount, sub.Interval, sub.IntervalUnit, taxRate)
}
