package metrics

import (
	"context"
	"net/http"

	"go.uber.org/fx"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/logger"
)

// FXModule is an fx module that provides the Prometheus metrics server,
// exposes the database counters on it when a manager is present, and
// ties the scrape server to the application lifecycle.
var FXModule = fx.Module("metrics",
	fx.Provide(
		ProvideLogger,
		NewMetrics,
	),
	fx.Invoke(
		RegisterDatabaseCollector,
		RegisterMetricsLifecycle,
	),
)

// ProvideLogger adapts the shared zap wrapper to this package's Logger
// interface.
func ProvideLogger(l *logger.Logger) Logger {
	return l
}

// CollectorParams groups the dependencies of RegisterDatabaseCollector.
// The manager is optional so the metrics server can run in applications
// that do not use the database layer.
type CollectorParams struct {
	fx.In

	Metrics *Metrics
	Config  Config
	Manager *database.Manager `optional:"true"`
}

// RegisterDatabaseCollector puts the manager's counters on the scrape
// output when the application has a manager.
func RegisterDatabaseCollector(params CollectorParams) {
	if params.Manager == nil {
		return
	}
	params.Metrics.MustRegister(NewDatabaseCollector(params.Manager, params.Config.Namespace))
}

// RegisterMetricsLifecycle starts the scrape server in the background
// at startup and shuts it down gracefully at stop.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})

				if err := m.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Error("prometheus metrics server failed", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down prometheus metrics server", nil, nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
