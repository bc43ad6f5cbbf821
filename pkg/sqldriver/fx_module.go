package sqldriver

import (
	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// FXModule provides a database.Factory built from a sqldriver.Config.
// The engine glue packages usually provide the Config; depend on this
// module when wiring a custom driver directly.
var FXModule = fx.Module("sqldriver",
	fx.Provide(
		fx.Annotate(
			ProvideFactory,
			fx.As(new(database.Factory)),
		),
	),
)

// FactoryParams contains the dependencies for creating a Factory.
type FactoryParams struct {
	fx.In

	Config Config
	Logger database.Logger
}

// ProvideFactory creates the Factory for dependency injection.
func ProvideFactory(p FactoryParams) (*Factory, error) {
	return NewFactory(p.Config, p.Logger)
}
