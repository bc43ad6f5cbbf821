package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Logger is the logging interface used by the metrics server.
//
//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=metrics
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Metrics owns a private Prometheus registry and the HTTP server that
// exposes it for scraping.
type Metrics struct {
	Server   *http.Server
	Registry *prometheus.Registry

	// registerer wraps Registry so every collector registered through
	// MustRegister carries the "service" label.
	registerer prometheus.Registerer
}

// NewMetrics builds the registry and the scrape server. The server is
// not listening yet; RegisterMetricsLifecycle starts it.
func NewMetrics(cfg Config) *Metrics {
	if cfg.Address == "" {
		cfg.Address = DefaultMetricsAddress
	}

	registry := prometheus.NewRegistry()
	registerer := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName}, registry)

	if cfg.EnableDefaultCollectors {
		registerer.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	server := &http.Server{
		Addr:    cfg.Address,
		Handler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	return &Metrics{
		Server:     server,
		Registry:   registry,
		registerer: registerer,
	}
}

// MustRegister adds collectors to the scrape output, labelled with the
// configured service name. It panics on duplicate registration, like
// the Prometheus registry it wraps.
func (m *Metrics) MustRegister(cs ...prometheus.Collector) {
	m.registerer.MustRegister(cs...)
}
