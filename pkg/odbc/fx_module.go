package odbc

import (
	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// FXModule provides a database.Factory backed by an ODBC data source.
var FXModule = fx.Module("odbc",
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

// ProvideFactory creates the ODBC factory for dependency injection.
func ProvideFactory(p FactoryParams) (*sqldriver.Factory, error) {
	return NewFactory(p.Config, p.Logger)
}
