package metrics

// Default address for the metrics server if none is specified.
const DefaultMetricsAddress = ":9090"

// Config configures the Prometheus metrics server.
type Config struct {
	// Address is the network address the metrics HTTP server listens
	// on, e.g. ":9090" or "127.0.0.1:9100". Empty means
	// DefaultMetricsAddress.
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors also registers the built-in Go runtime
	// and process collectors (goroutines, GC, CPU).
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name, e.g. Namespace "dicomdb"
	// turns "database_reconnects_total" into
	// "dicomdb_database_reconnects_total". Useful when several services
	// share one Prometheus.
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached to every metric as the "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
