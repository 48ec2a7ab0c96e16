package mrr

import (
	"github.com/smallbiznis/norra/internal/cache"
	mrrdomain "github.com/smallbiznis/norra/internal/mrr/domain"
	"github.com/smallbiznis/norra/internal/mrr/repository"
	"github.com/smallbiznis/norra/internal/mrr/service"
	"go.uber.org/fx"
)

var Module = fx.Module("mrr",
	fx.Provide(func() cache.Cache[string, mrrdomain.Snapshot] {
		return cache.NewTTLCache[string, mrrdomain.Snapshot]()
	}),
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
