package worker

import (
	"context"

	"github.com/smallbiznis/norra/internal/config"
	"go.uber.org/fx"
)

var Module = fx.Module("mrr.worker",
	fx.Provide(func(cfg config.Config) Config {
		return Config{PollInterval: cfg.SnapshotPollInterval}
	}),
	fx.Provide(NewWorker),
	fx.Invoke(runWorker),
)

func runWorker(lc fx.Lifecycle, worker *Worker) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go worker.RunForever(ctx)
			return nil
		},
	})
}
