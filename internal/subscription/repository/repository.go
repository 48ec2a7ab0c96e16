// Package repository provides the gorm-backed subscription ledger store.
package repository

import (
	"context"
	"strings"
	"time"

	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db  *gorm.DB
	log *zap.Logger
}

type Params struct {
	fx.In

	DB  *gorm.DB
	Log *zap.Logger
}

func NewRepository(p Params) subscriptiondomain.Repository {
	return &Repository{
		db:  p.DB,
		log: p.Log.Named("subscription.repository"),
	}
}

func (r *Repository) ListAsOf(ctx context.Context, at time.Time) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).
		Where("activated_at IS NOT NULL AND activated_at <= ?", at).
		Where("cancelled_at IS NULL OR cancelled_at > ?", at).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repository) ListByStatus(ctx context.Context, statuses ...subscriptiondomain.SubscriptionStatus) ([]subscriptiondomain.Subscription, error) {
	if len(statuses) == 0 {
		return nil, subscriptiondomain.ErrInvalidSubscription
	}
	var subs []subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repository) ListCancelledBetween(ctx context.Context, start, end time.Time) ([]subscriptiondomain.Subscription, error) {
	var subs []subscriptiondomain.Subscription
	err := r.db.WithContext(ctx).
		Where("cancelled_at IS NOT NULL AND cancelled_at >= ? AND cancelled_at < ?", start, end).
		Find(&subs).Error
	if err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *Repository) Upsert(ctx context.Context, sub *subscriptiondomain.Subscription) error {
	if sub == nil || strings.TrimSpace(sub.ID) == "" {
		return subscriptiondomain.ErrInvalidSubscription
	}
	sub.LastSynced = time.Now().UTC()
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"status", "amount", "interval", "interval_unit",
				"activated_at", "cancelled_at", "last_synced",
			}),
		}).
		Create(sub).Error
}
