package report

import (
	"github.com/smallbiznis/norra/internal/report/importer"
	"go.uber.org/fx"
)

var Module = fx.Module("report",
	fx.Provide(importer.NewImporter),
)
