// Package worker keeps the current calculated snapshot fresh by recomputing
// it on an interval.
package worker

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/norra/internal/clock"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	"github.com/smallbiznis/norra/internal/observability/metrics"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log     *zap.Logger
	Clock   clock.Clock
	Service mrrdomain.Service
	Config  Config                   `optional:"true"`
	Metrics *metrics.SnapshotMetrics `optional:"true"`
}

type Worker struct {
	log     *zap.Logger
	clock   clock.Clock
	service mrrdomain.Service
	cfg     Config
	metrics *metrics.SnapshotMetrics
}

func NewWorker(p Params) *Worker {
	return &Worker{
		log:     p.Log.Named("mrr.worker"),
		clock:   p.Clock,
		service: p.Service,
		cfg:     p.Config.withDefaults(),
		metrics: p.Metrics,
	}
}

func (w *Worker) RunForever(ctx context.Context) {
	ticker := time.NewTicker(w.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if err := w.RunOnce(); err != nil {
			w.log.Warn("snapshot run failed", zap.Error(err))
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) RunOnce() error {
	ctx, cancel := context.WithTimeout(context.Background(), w.cfg.RunTimeout)
	defer cancel()

	if w.service == nil || w.clock == nil {
		return errors.New("snapshot_worker_unavailable")
	}

	start := time.Now()
	snap, err := w.service.ComputeSnapshot(ctx, w.clock.Now())
	if err != nil {
		w.metrics.ObserveSnapshotRun("failed", time.Since(start), 0)
		return err
	}
	w.metrics.ObserveSnapshotRun("success", time.Since(start), snap.SkippedRecords)
	return nil
}
