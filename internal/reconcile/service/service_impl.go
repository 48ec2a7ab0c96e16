// Package service implements report reconciliation against calculated
// snapshots.
package service

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/norra/internal/config"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	reconciledomain "github.com/smallbiznis/norra/internal/reconcile/domain"
	reportdomain "github.com/smallbiznis/norra/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	pol   reconciledomain.Policy

	snapshotRepo mrrdomain.SnapshotRepository
}

type Params struct {
	fx.In

	DB           *gorm.DB
	Log          *zap.Logger
	GenID        *snowflake.Node
	Config       config.Config
	SnapshotRepo mrrdomain.SnapshotRepository
}

func NewService(p Params) reconciledomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("reconcile.service"),
		genID: p.GenID,
		pol: reconciledomain.Policy{
			Tolerance:           p.Config.ReconcileTolerance,
			TaxRate:             p.Config.TaxRate,
			PopulationThreshold: p.Config.PopulationThreshold,
		},
		snapshotRepo: p.SnapshotRepo,
	}
}

func (s *Service) Run(ctx context.Context, imp *reportdomain.Import, persist bool) (*reconciledomain.RunResult, error) {
	if imp == nil || len(imp.Rows) == 0 {
		return nil, reconciledomain.ErrEmptyImport
	}

	run := &reconciledomain.RunResult{}
	for _, fig := range imp.ReferenceFigures() {
		snap, err := s.calculatedSnapshotFor(ctx, fig.Period)
		if err != nil {
			return nil, err
		}
		if snap == nil {
			run.MissingPeriods = append(run.MissingPeriods, fig.Period)
			continue
		}

		result := reconciledomain.Reconcile(*snap, fig, s.pol)
		run.Results = append(run.Results, result)

		if result.Classification == reconciledomain.ClassificationUnexplained {
			s.log.Warn("unexplained reconciliation gap",
				zap.String("period", result.Period),
				zap.String("calculated_mrr", result.CalculatedMRR.String()),
				zap.String("reference_mrr", result.ReferenceMRR.String()),
				zap.String("absolute_delta", result.AbsoluteDelta.String()),
			)
		}
	}

	if persist {
		if err := s.persistResults(ctx, run.Results); err != nil {
			return nil, err
		}
	}
	return run, nil
}

// calculatedSnapshotFor returns the latest calculated snapshot inside the
// given YYYY-MM period, or nil when the period has never been computed.
func (s *Service) calculatedSnapshotFor(ctx context.Context, period string) (*mrrdomain.Snapshot, error) {
	start, err := time.Parse("2006-01", period)
	if err != nil {
		return nil, mrrdomain.ErrInvalidPeriod
	}
	end := start.AddDate(0, 1, 0).Add(-time.Nanosecond)

	snap, err := s.snapshotRepo.LatestByDate(ctx, end, mrrdomain.SourceCalculated)
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.Month() != period {
		return nil, nil
	}
	return snap, nil
}

func (s *Service) persistResults(ctx context.Context, results []reconciledomain.Result) error {
	if len(results) == 0 {
		return nil
	}
	records := make([]reconciledomain.Record, 0, len(results))
	now := time.Now().UTC()
	for _, result := range results {
		records = append(records, reconciledomain.Record{
			ID:             s.genID.Generate(),
			Period:         result.Period,
			CalculatedMRR:  result.CalculatedMRR,
			ReferenceMRR:   result.ReferenceMRR,
			AbsoluteDelta:  result.AbsoluteDelta,
			Classification: result.Classification,
			CreatedAt:      now,
		})
	}
	return s.db.WithContext(ctx).Create(&records).Error
}
