package tracer

// Config configures the OpenTelemetry tracer.
type Config struct {
	// ServiceName identifies this process in the emitted traces.
	ServiceName string `yaml:"service_name" envconfig:"TRACER_SERVICE_NAME"`

	// AppEnv tags every span with the deployment environment
	// ("production", "staging", ...).
	AppEnv string `yaml:"app_env" envconfig:"TRACER_APP_ENV"`

	// EnableExport turns on the OTLP HTTP exporter; the collector
	// endpoint comes from the standard OTEL_EXPORTER_OTLP_* environment
	// variables. When false, spans are created but never leave the
	// process, which is the right setting for tests.
	EnableExport bool `yaml:"enable_export" envconfig:"TRACER_ENABLE_EXPORT"`
}
