package domain

import (
	"context"
	"errors"
	"time"
)

// Repository is the read side of the subscription ledger. The engine only
// needs a filtered scan, not a specific storage technology.
type Repository interface {
	// ListAsOf returns every subscription whose activation window could
	// overlap the given instant. Callers still apply IsActiveAt; the
	// repository may over-fetch but must never under-fetch.
	ListAsOf(ctx context.Context, at time.Time) ([]Subscription, error)

	// ListByStatus returns subscriptions in the given states.
	ListByStatus(ctx context.Context, statuses ...SubscriptionStatus) ([]Subscription, error)

	// ListCancelledBetween returns subscriptions cancelled within [start, end),
	// used for churn attribution.
	ListCancelledBetween(ctx context.Context, start, end time.Time) ([]Subscription, error)

	// Upsert writes a synced subscription row.
	Upsert(ctx context.Context, sub *Subscription) error
}

var (
	ErrInvalidSubscription = errors.New("invalid_subscription")
)
