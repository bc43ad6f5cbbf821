package storage

import (
	"context"
	"io"

	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/logger"
)

// FXModule is an fx module that provides the configured storage Area
// and ties its setup and teardown to the application lifecycle.
var FXModule = fx.Module("storage",
	fx.Provide(
		ProvideLogger,
		ProvideArea,
	),
	fx.Invoke(RegisterAreaLifecycle),
)

// ProvideLogger adapts the shared zap wrapper to this package's Logger
// interface.
func ProvideLogger(l *logger.Logger) Logger {
	return l
}

// AreaParams groups the dependencies needed to create an Area via
// dependency injection. The factory is optional because the object
// store backend does not use the database at all.
type AreaParams struct {
	fx.In

	Config  Config
	Factory database.Factory `optional:"true"`
	Logger  Logger
}

// ProvideArea creates the Area selected by the configuration.
func ProvideArea(params AreaParams) (Area, error) {
	return NewArea(params.Config, params.Factory, params.Logger)
}

// RegisterAreaLifecycle opens the area at startup when it needs setup,
// and closes it at shutdown when it holds resources.
func RegisterAreaLifecycle(lc fx.Lifecycle, area Area) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if openable, ok := area.(Openable); ok {
				return openable.Open(ctx)
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if closer, ok := area.(io.Closer); ok {
				return closer.Close()
			}
			return nil
		},
	})
}
