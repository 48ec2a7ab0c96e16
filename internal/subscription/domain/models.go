// Package domain contains the subscription ledger models synced from the
// external billing provider.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SubscriptionStatus is the lifecycle state reported by the billing provider.
type SubscriptionStatus string

const (
	StatusLive      SubscriptionStatus = "live"
	StatusCancelled SubscriptionStatus = "cancelled"
	StatusExpired   SubscriptionStatus = "expired"
	StatusFuture    SubscriptionStatus = "future"
)

// BillingInterval is the unit the provider bills in.
type BillingInterval string

const (
	IntervalMonths BillingInterval = "months"
	IntervalYears  BillingInterval = "years"
)

// Subscription is one billing agreement. Rows are created on first sync and
// only ever transition status/cancelled_at afterwards; they are never deleted.
type Subscription struct {
	ID           string             `gorm:"primaryKey" json:"id"`
	CustomerID   string             `gorm:"not null;index" json:"customer_id"`
	CustomerName string             `gorm:"type:text" json:"customer_name"`
	PlanCode     string             `gorm:"type:text;index" json:"plan_code"`
	PlanName     string             `gorm:"type:text" json:"plan_name"`

	// Amount is tax-inclusive as received from the provider.
	Amount       decimal.Decimal    `gorm:"type:numeric;not null" json:"amount"`
	CurrencyCode string             `gorm:"type:text;not null;default:NOK" json:"currency_code"`
	Interval     BillingInterval    `gorm:"type:text;not null" json:"interval"`
	IntervalUnit int                `gorm:"not null;default:1" json:"interval_unit"`
	Status       SubscriptionStatus `gorm:"type:text;not null;index" json:"status"`

	ActivatedAt *time.Time `gorm:"index" json:"activated_at"`
	CancelledAt *time.Time `gorm:"" json:"cancelled_at"`
	LastSynced  time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP" json:"-"`
}

// TableName sets the database table name.
func (Subscription) TableName() string { return "subscriptions" }

// IsActiveAt reports whether the subscription counts toward recurring revenue
// at the given instant. Future-dated subscriptions never count until their
// activation has passed and their status has transitioned to live.
func (s Subscription) IsActiveAt(at time.Time) bool {
	if s.Status != StatusLive {
		return false
	}
	if s.ActivatedAt == nil || s.ActivatedAt.After(at) {
		return false
	}
	if s.CancelledAt != nil && !s.CancelledAt.After(at) {
		return false
	}
	return true
}
