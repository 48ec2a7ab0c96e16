// Package server exposes the HTTP API over gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smallbiznis/norra/internal/clock"
	"github.com/smallbiznis/norra/internal/config"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	"github.com/smallbiznis/norra/internal/observability/logger"
	"github.com/smallbiznis/norra/internal/observability/metrics"
	reconciledomain "github.com/smallbiznis/norra/internal/reconcile/domain"
	"github.com/smallbiznis/norra/internal/report/importer"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	Config       config.Config
	Log          *zap.Logger
	DB           *gorm.DB
	Clock        clock.Clock
	MRRSvc       mrrdomain.Service
	ReconcileSvc reconciledomain.Service
	Importer     *importer.Importer
	Metrics      *metrics.SnapshotMetrics `optional:"true"`
}

type Server struct {
	cfg          config.Config
	log          *zap.Logger
	db           *gorm.DB
	clock        clock.Clock
	mrrSvc       mrrdomain.Service
	reconcileSvc reconciledomain.Service
	importer     *importer.Importer
	metrics      *metrics.SnapshotMetrics
}

func NewServer(p Params) *Server {
	return &Server{
		cfg:          p.Config,
		log:          p.Log.Named("server"),
		db:           p.DB,
		clock:        p.Clock,
		mrrSvc:       p.MRRSvc,
		reconcileSvc: p.ReconcileSvc,
		importer:     p.Importer,
		metrics:      p.Metrics,
	}
}

func (s *Server) Router() *gin.Engine {
	if s.cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.GinMiddleware())

	r.GET("/healthz", s.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/v1")
	{
		v1.GET("/metrics/mrr", s.GetMRR)
		v1.GET("/metrics/churn", s.GetChurn)
		v1.GET("/snapshots", s.ListSnapshots)
		v1.POST("/snapshots/compute", s.ComputeSnapshot)
		v1.POST("/reports/import", s.ImportReport)
		v1.POST("/reports/movement", s.ComputeMovement)
		v1.POST("/reconciliation/run", s.RunReconciliation)
	}

	return r
}

func (s *Server) Healthz(c *gin.Context) {
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseOptionalTime(value string, endOfDay bool) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func parseOptionalBool(value string) (*bool, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

var Module = fx.Module("server",
	fx.Provide(NewServer),
	fx.Invoke(runServer),
)

func runServer(lc fx.Lifecycle, s *Server, cfg config.Config, log *zap.Logger) {
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("http server stopped", zap.Error(err))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return srv.Shutdown(ctx)
		},
	})
}
