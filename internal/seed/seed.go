// Package seed bootstraps a demo subscription ledger for non-production
// environments.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
	"gorm.io/gorm"
)

// EnsureDemoLedger seeds a handful of subscriptions so a fresh install has
// figures to show. Existing rows are left untouched.
func EnsureDemoLedger(db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&subscriptiondomain.Subscription{}).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return nil
		}

		now := time.Now().UTC()
		activated := now.AddDate(0, -6, 0)
		cancelled := now.AddDate(0, -1, 0)

		subs := []subscriptiondomain.Subscription{
			{
				ID:           "demo-monthly-1",
				CustomerID:   "demo-cust-1",
				CustomerName: "Fjordline Consulting AS",
				PlanCode:     "standard-monthly",
				PlanName:     "Standard (monthly)",
				Amount:       decimal.RequireFromString("625"),
				Interval:     subscriptiondomain.IntervalMonths,
				IntervalUnit: 1,
				Status:       subscriptiondomain.StatusLive,
				ActivatedAt:  &activated,
				LastSynced:   now,
			},
			{
				ID:           "demo-annual-1",
				CustomerID:   "demo-cust-2",
				CustomerName: "Nordkapp Logistikk AS",
				PlanCode:     "standard-annual",
				PlanName:     "Standard (annual)",
				Amount:       decimal.RequireFromString("6000"),
				Interval:     subscriptiondomain.IntervalYears,
				IntervalUnit: 1,
				Status:       subscriptiondomain.StatusLive,
				ActivatedAt:  &activated,
				LastSynced:   now,
			},
			{
				ID:           "demo-quarterly-1",
				CustomerID:   "demo-cust-3",
				CustomerName: "Bryggen Regnskap AS",
				PlanCode:     "standard-quarterly",
				PlanName:     "Standard (quarterly)",
				Amount:       decimal.RequireFromString("1875"),
				Interval:     subscriptiondomain.IntervalMonths,
				IntervalUnit: 3,
				Status:       subscriptiondomain.StatusLive,
				ActivatedAt:  &activated,
				LastSynced:   now,
			},
			{
				ID:           "demo-cancelled-1",
				CustomerID:   "demo-cust-4",
				CustomerName: "Lofoten Media AS",
				PlanCode:     "standard-monthly",
				PlanName:     "Standard (monthly)",
				Amount:       decimal.RequireFromString("625"),
				Interval:     subscriptiondomain.IntervalMonths,
				IntervalUnit: 1,
				Status:       subscriptiondomain.StatusCancelled,
				ActivatedAt:  &activated,
				CancelledAt:  &cancelled,
				LastSynced:   now,
			},
		}
		return tx.Create(&subs).Error
	})
}
