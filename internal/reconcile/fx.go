package reconcile

import (
	"github.com/smallbiznis/norra/internal/reconcile/service"
	"go.uber.org/fx"
)

var Module = fx.Module("reconcile",
	fx.Provide(service.NewService),
)
