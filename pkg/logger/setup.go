package logger

import (
	"log"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a thin wrapper around Uber's Zap logger. Consuming packages
// declare their own narrow Logger interface over the wrapper methods and
// receive this type through fx; nothing outside this package touches Zap
// directly.
type Logger struct {
	Zap *zap.Logger
}

// NewLoggerClient builds the process-wide logger: JSON lines on stderr,
// ISO8601 timestamps, pid and service fields on every entry, and the
// caller reported one frame above the wrapper methods.
func NewLoggerClient(cfg Config) *Logger {
	zapCfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(levelFor(cfg.Level)),
		Encoding:         "json",
		EncoderConfig:    encoderConfig(),
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
		InitialFields: map[string]interface{}{
			"pid":     os.Getpid(),
			"service": serviceName(cfg),
		},
	}

	zapLogger, err := zapCfg.Build(zap.AddCaller(), zap.AddCallerSkip(1))
	if err != nil {
		log.Fatal(err)
	}

	return &Logger{Zap: zapLogger}
}

// encoderConfig is the production encoder with the time under a
// "timestamp" key, rendered ISO8601, and capitalized level names.
func encoderConfig() zapcore.EncoderConfig {
	cfg := zap.NewProductionEncoderConfig()
	cfg.TimeKey = "timestamp"
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.EncodeLevel = zapcore.CapitalLevelEncoder
	return cfg
}

// levelFor maps a configured level name onto Zap's scale. Unknown names
// fall back to Info, the production default.
func levelFor(name string) zapcore.Level {
	switch name {
	case Debug:
		return zap.DebugLevel
	case Warning:
		return zap.WarnLevel
	case Error:
		return zap.ErrorLevel
	default:
		return zap.InfoLevel
	}
}

func serviceName(cfg Config) string {
	if cfg.ServiceName == "" {
		return defaultServiceName
	}
	return cfg.ServiceName
}
