package tracer

import (
	"context"

	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/logger"
)

// FXModule is an fx module that provides the Tracer and flushes pending
// spans at shutdown.
var FXModule = fx.Module("tracer",
	fx.Provide(
		ProvideLogger,
		NewClient,
	),
	fx.Invoke(RegisterTracerLifecycle),
)

// ProvideLogger adapts the shared zap wrapper to this package's Logger
// interface.
func ProvideLogger(l *logger.Logger) Logger {
	return l
}

// RegisterTracerLifecycle shuts the provider down when the application
// stops, flushing any batched spans to the exporter.
func RegisterTracerLifecycle(lc fx.Lifecycle, tracer *Tracer) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			tracer.logger.Info("shutting down tracer...", nil, nil)
			if tracer.tracer == nil {
				tracer.logger.Warn("tracer was nil during shutdown", nil, nil)
				return nil
			}
			return tracer.tracer.Shutdown(ctx)
		},
	})
}
