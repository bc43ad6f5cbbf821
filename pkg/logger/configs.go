package logger

// Level names accepted by Config.Level. Anything else falls back to
// Info.
const (
	Debug   = "debug"
	Info    = "info"
	Warning = "warning"
	Error   = "error"
)

// defaultServiceName tags every log line when the configuration does not
// override it.
const defaultServiceName = "dicomdb"

// Config controls the verbosity and identity of the process-wide logger.
type Config struct {
	// Level is one of the level constants above.
	Level string `yaml:"level" envconfig:"ZAP_LOGGER_LEVEL"`

	// ServiceName is attached to every log line as the "service" field,
	// so one collector can tell the database engine apart from the
	// servers running next to it.
	ServiceName string `yaml:"service_name" envconfig:"ZAP_LOGGER_SERVICE_NAME"`
}
