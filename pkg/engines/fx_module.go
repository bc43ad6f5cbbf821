package engines

import (
	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// FXModule provides a database.Factory for whichever engine the
// configuration selects. Applications that fix their engine at build
// time can depend on the engine package's own FXModule instead.
var FXModule = fx.Module("engines",
	fx.Provide(
		fx.Annotate(
			ProvideFactory,
			fx.As(new(database.Factory)),
		),
	),
)

// FactoryParams contains the dependencies for creating the factory.
type FactoryParams struct {
	fx.In

	Config Config
	Logger database.Logger
}

// ProvideFactory creates the configured engine's factory for dependency
// injection.
func ProvideFactory(p FactoryParams) (*sqldriver.Factory, error) {
	return NewFactory(p.Config, p.Logger)
}
