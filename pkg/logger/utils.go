package logger

import "go.uber.org/zap"

// convertToZapFields flattens an optional error plus any number of field
// maps into Zap's structured fields. When several maps carry the same
// key, the later one wins.
func (l *Logger) convertToZapFields(err error, fields ...map[string]interface{}) []zap.Field {
	var zapFields []zap.Field
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	for _, fieldMap := range fields {
		for key, value := range fieldMap {
			zapFields = append(zapFields, zap.Any(key, value))
		}
	}
	return zapFields
}

// Info logs general application progress and successful operations.
//
// Example:
//
//	logger.Info("statement cache warmed", nil, map[string]interface{}{
//		"statements": 42,
//	})
func (l *Logger) Info(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Info(msg, l.convertToZapFields(err, fields...)...)
}

// Debug logs verbose information useful during development and when
// diagnosing issues.
//
// Example:
//
//	logger.Debug("compiled statement", nil, map[string]interface{}{
//		"statement": id.String(),
//		"dialect":   "postgresql",
//	})
func (l *Logger) Debug(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Debug(msg, l.convertToZapFields(err, fields...)...)
}

// Warn logs situations that are not failures but might need attention.
func (l *Logger) Warn(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Warn(msg, l.convertToZapFields(err, fields...)...)
}

// Error logs failures that affect the current operation without
// requiring the application to stop.
//
// Example:
//
//	if err := tx.Commit(); err != nil {
//		logger.Error("commit failed", err, map[string]interface{}{
//			"transaction": "read-write",
//		})
//	}
func (l *Logger) Error(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Error(msg, l.convertToZapFields(err, fields...)...)
}

// Fatal logs an unrecoverable failure and terminates the application
// with os.Exit(1). It does not return.
func (l *Logger) Fatal(msg string, err error, fields ...map[string]interface{}) {
	l.Zap.Fatal(msg, l.convertToZapFields(err, fields...)...)
}
