package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/norra/internal/clock"
	"github.com/smallbiznis/norra/internal/config"
	"github.com/smallbiznis/norra/internal/db"
	"github.com/smallbiznis/norra/internal/migration"
	"github.com/smallbiznis/norra/internal/mrr"
	"github.com/smallbiznis/norra/internal/mrr/worker"
	"github.com/smallbiznis/norra/internal/observability/logger"
	"github.com/smallbiznis/norra/internal/observability/metrics"
	"github.com/smallbiznis/norra/internal/observability/tracing"
	"github.com/smallbiznis/norra/internal/reconcile"
	"github.com/smallbiznis/norra/internal/report"
	"github.com/smallbiznis/norra/internal/seed"
	"github.com/smallbiznis/norra/internal/server"
	"github.com/smallbiznis/norra/internal/subscription"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		tracing.Module,
		clock.Module,
		fx.Provide(func() *snowflake.Node {
			node, err := snowflake.NewNode(1)
			if err != nil {
				panic(err)
			}
			return node
		}),
		fx.Provide(func(cfg config.Config) *metrics.SnapshotMetrics {
			return metrics.SnapshotWithConfig(metrics.Config{
				ServiceName: "norra",
				Environment: cfg.Environment,
			})
		}),
		db.Module,
		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if !cfg.IsProduction() {
				return seed.EnsureDemoLedger(conn)
			}
			return nil
		}),
		subscription.Module,
		mrr.Module,
		report.Module,
		reconcile.Module,
		worker.Module,
		server.Module,
	)
	app.Run()
}
