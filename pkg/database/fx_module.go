package database

import (
	"context"

	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/logger"
)

// FXModule is an fx module that provides a Manager over whichever
// Factory the application wired in (one of the engine packages, possibly
// wrapped in a RetryFactory).
var FXModule = fx.Module("database",
	fx.Provide(
		ProvideLogger,
		ProvideManager,
	),
	fx.Invoke(RegisterManagerLifecycle),
)

// ProvideLogger adapts the shared zap wrapper to this package's Logger
// interface.
func ProvideLogger(l *logger.Logger) Logger {
	return l
}

// ManagerParams groups the dependencies needed to create a Manager via
// dependency injection.
type ManagerParams struct {
	fx.In

	Factory Factory
	Logger  Logger
}

// ProvideManager creates the Manager for the dependency injection
// container.
func ProvideManager(params ManagerParams) *Manager {
	return NewManager(params.Factory, params.Logger)
}

// RegisterManagerLifecycle closes the Manager, along with its cached
// statements and its connection, when the application stops.
func RegisterManagerLifecycle(lc fx.Lifecycle, manager *Manager) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return manager.Close()
		},
	})
}
