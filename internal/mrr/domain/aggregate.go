package domain

import (
	"time"

	"github.com/shopspring/decimal"
	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
)

// BuildSnapshot folds the ledger into a calculated snapshot as of the given
// instant. Rounding is applied once, at the sum, so repeated runs over the
// same ledger produce identical figures. Rows the normalizer rejects are
// counted in SkippedRecords, never silently dropped.
func BuildSnapshot(subs []subscriptiondomain.Subscription, asOf time.Time, taxRate decimal.Decimal) Snapshot {
	total := decimal.Zero
	customers := make(map[string]struct{})
	active := 0
	skipped := 0

	for _, sub := range subs {
		if !sub.IsActiveAt(asOf) {
			continue
		}
		monthly, err := NormalizeSubscription(sub, taxRate)
		if err != nil {
			skipped++
			continue
		}
		total = total.Add(monthly)
		customers[sub.CustomerID] = struct{}{}
		active++
	}

	mrr := total.Round(2)
	return Snapshot{
		SnapshotDate:        asOf.UTC(),
		MRR:                 mrr,
		ARR:                 mrr.Mul(decimal.NewFromInt(12)),
		TotalCustomers:      len(customers),
		ActiveSubscriptions: active,
		SkippedRecords:      skipped,
		Source:              SourceCalculated,
	}
}
