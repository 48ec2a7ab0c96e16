// Package logger configures structured logging for the service.
package logger

import (
	"github.com/smallbiznis/norra/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// New builds the root logger. Production gets JSON output, everything else
// the development console encoder.
func New(cfg config.Config) (*zap.Logger, error) {
	var log *zap.Logger
	var err error
	if cfg.IsProduction() {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

var Module = fx.Module("logger",
	fx.Provide(New),
)
