// Package service implements the recurring revenue metrics service.
package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/smallbiznis/norra/internal/cache"
	"github.com/smallbiznis/norra/internal/config"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	subscriptiondomain "github.com/smallbiznis/norra/internal/subscription/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const latestSnapshotTTL = 30 * time.Second

type Service struct {
	log *zap.Logger
	cfg config.Config

	subscriptionRepo subscriptiondomain.Repository
	snapshotRepo     mrrdomain.SnapshotRepository
	latestCache      cache.Cache[string, mrrdomain.Snapshot]
}

type Params struct {
	fx.In

	Log              *zap.Logger
	Config           config.Config
	SubscriptionRepo subscriptiondomain.Repository
	SnapshotRepo     mrrdomain.SnapshotRepository
	LatestCache      cache.Cache[string, mrrdomain.Snapshot]
}

func NewService(p Params) mrrdomain.Service {
	return &Service{
		log:              p.Log.Named("mrr.service"),
		cfg:              p.Config,
		subscriptionRepo: p.SubscriptionRepo,
		snapshotRepo:     p.SnapshotRepo,
		latestCache:      p.LatestCache,
	}
}

func (s *Service) ComputeSnapshot(ctx context.Context, asOf time.Time) (*mrrdomain.Snapshot, error) {
	subs, err := s.subscriptionRepo.ListAsOf(ctx, asOf)
	if err != nil {
		return nil, err
	}

	snap := mrrdomain.BuildSnapshot(subs, asOf, s.cfg.TaxRate)
	if err := s.snapshotRepo.Append(ctx, &snap); err != nil {
		return nil, err
	}
	s.latestCache.Delete(cacheKey(asOf, mrrdomain.SourceCalculated))

	if snap.SkippedRecords > 0 {
		s.log.Warn("ledger rows excluded from snapshot",
			zap.Time("as_of", asOf),
			zap.Int("skipped", snap.SkippedRecords),
		)
	}
	s.log.Info("snapshot computed",
		zap.Time("as_of", asOf),
		zap.String("mrr", snap.MRR.String()),
		zap.Int("active_subscriptions", snap.ActiveSubscriptions),
		zap.Int("total_customers", snap.TotalCustomers),
	)
	return &snap, nil
}

func (s *Service) LatestSnapshot(ctx context.Context, onOrBefore time.Time, source mrrdomain.SnapshotSource) (*mrrdomain.Snapshot, error) {
	key := cacheKey(onOrBefore, source)
	if snap, ok := s.latestCache.Get(key); ok {
		return &snap, nil
	}

	snap, err := s.snapshotRepo.LatestByDate(ctx, onOrBefore, source)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, mrrdomain.ErrSnapshotNotFound
	}
	s.latestCache.Set(key, *snap, latestSnapshotTTL)
	return snap, nil
}

func (s *Service) ListSnapshots(ctx context.Context, start, end time.Time) ([]mrrdomain.Snapshot, error) {
	if end.Before(start) {
		return nil, mrrdomain.ErrInvalidPeriod
	}
	return s.snapshotRepo.ListBetween(ctx, start, end)
}

func (s *Service) Churn(ctx context.Context, start, end time.Time) (*mrrdomain.ChurnReport, error) {
	if !end.After(start) {
		return nil, mrrdomain.ErrInvalidPeriod
	}

	atStart, err := s.subscriptionRepo.ListAsOf(ctx, start)
	if err != nil {
		return nil, err
	}
	startCustomers := make(map[string]struct{})
	startMRR := decimal.Zero
	for _, sub := range atStart {
		if !sub.IsActiveAt(start) {
			continue
		}
		monthly, err := mrrdomain.NormalizeSubscription(sub, s.cfg.TaxRate)
		if err != nil {
			continue
		}
		startMRR = startMRR.Add(monthly)
		startCustomers[sub.CustomerID] = struct{}{}
	}

	cancelled, err := s.subscriptionRepo.ListCancelledBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	churnedCustomers := make(map[string]struct{})
	churnedMRR := decimal.Zero
	for _, sub := range cancelled {
		// Only count subscriptions that were already active when the
		// period opened; in-period signups that also cancel in-period are
		// not churn against the opening base.
		if sub.ActivatedAt == nil || !sub.ActivatedAt.Before(start) {
			continue
		}
		monthly, err := mrrdomain.NormalizeSubscription(sub, s.cfg.TaxRate)
		if err != nil {
			continue
		}
		churnedMRR = churnedMRR.Add(monthly)
		churnedCustomers[sub.CustomerID] = struct{}{}
	}

	report := &mrrdomain.ChurnReport{
		PeriodStart:      start,
		PeriodEnd:        end,
		ChurnedCustomers: len(churnedCustomers),
		ChurnedMRR:       churnedMRR.Round(2),
	}

	hundred := decimal.NewFromInt(100)
	if len(startCustomers) > 0 {
		report.CustomerChurnRate = decimal.NewFromInt(int64(len(churnedCustomers))).
			Div(decimal.NewFromInt(int64(len(startCustomers)))).
			Mul(hundred).Round(2)
	}
	if startMRR.IsPositive() {
		report.RevenueChurnRate = churnedMRR.Div(startMRR).Mul(hundred).Round(2)
	}
	return report, nil
}

func (s *Service) ARPU(ctx context.Context, asOf time.Time) (decimal.Decimal, error) {
	subs, err := s.subscriptionRepo.ListAsOf(ctx, asOf)
	if err != nil {
		return decimal.Zero, err
	}
	snap := mrrdomain.BuildSnapshot(subs, asOf, s.cfg.TaxRate)
	if snap.TotalCustomers == 0 {
		return decimal.Zero, nil
	}
	return snap.MRR.Div(decimal.NewFromInt(int64(snap.TotalCustomers))).Round(2), nil
}

func cacheKey(at time.Time, source mrrdomain.SnapshotSource) string {
	return at.UTC().Format("2006-01-02") + "/" + string(source)
}
