package mysql

import (
	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// FXModule provides a database.Factory backed by MySQL or MariaDB.
var FXModule = fx.Module("mysql",
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

// ProvideFactory creates the MySQL factory for dependency injection.
func ProvideFactory(p FactoryParams) (*sqldriver.Factory, error) {
	return NewFactory(p.Config, p.Logger)
}
