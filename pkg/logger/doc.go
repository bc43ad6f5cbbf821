// Package logger provides the structured logger shared by every package
// of this module.
//
// It is a thin wrapper around Uber's Zap: JSON encoding, ISO8601
// timestamps, stderr output, and initial fields carrying the pid and the
// service name. Consuming packages do not import this package from their
// core files; they declare a local Logger interface with the same method
// set and receive this implementation through fx.
//
// Basic Usage:
//
//	log := logger.NewLoggerClient(logger.Config{Level: "info"})
//
//	log.Info("resource created", nil, map[string]interface{}{
//		"publicId": "1.2.840.113619.2.1",
//		"type":     "study",
//	})
//
//	if err := manager.Close(); err != nil {
//		log.Error("failed to close the database manager", err, nil)
//	}
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		fx.Provide(func() logger.Config {
//			return logger.Config{Level: "debug"}
//		}),
//	)
//
// The module registers an OnStop hook that flushes buffered log entries
// during shutdown.
//
// Configuration:
//
// The logger can be configured via environment variables:
//
//	ZAP_LOGGER_LEVEL=debug           # Log level (debug, info, warning, error)
//	ZAP_LOGGER_SERVICE_NAME=dicomdb  # Value of the "service" field
//
// Thread Safety:
//
// All methods on the Logger are safe for concurrent use by multiple
// goroutines.
package logger
