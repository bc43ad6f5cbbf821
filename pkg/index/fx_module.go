package index

import (
	"context"

	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/logger"
	"github.com/pacsforge/dicomdb/pkg/tracer"
)

// FXModule is an fx module that provides the index Backend over the
// application's database.Manager and installs the schema at startup.
var FXModule = fx.Module("index",
	fx.Provide(
		ProvideLogger,
		ProvideBackend,
	),
	fx.Invoke(RegisterBackendLifecycle),
)

// ProvideLogger adapts the shared zap wrapper to this package's Logger
// interface.
func ProvideLogger(l *logger.Logger) Logger {
	return l
}

// BackendParams groups the dependencies needed to create a Backend via
// dependency injection. The tracer is optional; without it the backend
// simply emits no spans.
type BackendParams struct {
	fx.In

	Manager *database.Manager
	Logger  Logger
	Tracer  *tracer.Tracer `optional:"true"`
}

// ProvideBackend creates the Backend for the dependency injection
// container.
func ProvideBackend(params BackendParams) (*Backend, error) {
	var opts []BackendOption
	if params.Tracer != nil {
		opts = append(opts, WithTracer(params.Tracer))
	}
	return NewBackend(params.Manager, params.Logger, opts...)
}

// RegisterBackendLifecycle installs the index schema when the
// application starts.
func RegisterBackendLifecycle(lc fx.Lifecycle, backend *Backend) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return backend.Open(ctx)
		},
	})
}
