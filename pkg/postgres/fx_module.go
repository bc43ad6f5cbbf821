package postgres

import (
	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// FXModule provides a database.Factory backed by PostgreSQL.
var FXModule = fx.Module("postgres",
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

// ProvideFactory creates the PostgreSQL factory for dependency injection.
func ProvideFactory(p FactoryParams) (*sqldriver.Factory, error) {
	return NewFactory(p.Config, p.Logger)
}
