package sqldriver

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// TranslateFunc classifies a driver error into one of the database
// sentinels. It returns nil when it does not recognize the error, which
// hands classification over to the generic fallback.
type TranslateFunc func(err error) error

var translators = struct {
	mu       sync.RWMutex
	byDriver map[string]TranslateFunc
}{
	byDriver: make(map[string]TranslateFunc),
}

// RegisterTranslator installs the error translator for a driver. Engine
// glue packages call it from init(), next to their database/sql driver
// registration. Registering twice for the same driver panics, like
// sql.Register does.
func RegisterTranslator(driverName string, translate TranslateFunc) {
	translators.mu.Lock()
	defer translators.mu.Unlock()

	if _, dup := translators.byDriver[driverName]; dup {
		panic("sqldriver: RegisterTranslator called twice for driver " + driverName)
	}
	translators.byDriver[driverName] = translate
}

// Translate routes an engine error through the driver's registered
// translator, then through a generic fallback, so that every error
// leaving this package wraps one of the database sentinels. Context
// cancellations pass through untouched.
func Translate(driverName string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	// Already classified errors keep their category.
	if alreadyClassified(err) {
		return err
	}

	translators.mu.RLock()
	translate := translators.byDriver[driverName]
	translators.mu.RUnlock()

	if translate != nil {
		if classified := translate(err); classified != nil {
			return classified
		}
	}
	return genericTranslate(err)
}

func alreadyClassified(err error) bool {
	return errors.Is(err, database.ErrDatabase) ||
		database.GetErrorCategory(err) != database.CategoryGeneric
}

// genericTranslate is the driver-agnostic fallback: wire-level failures
// become unavailable, serialization hints become collisions, the rest is
// a generic engine error. The original error stays in the chain.
func genericTranslate(err error) error {
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	}

	if errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("%w: %w", database.ErrBadSequenceOfCalls, err)
	}

	message := strings.ToLower(err.Error())
	switch {
	case strings.Contains(message, "connection refused"),
		strings.Contains(message, "connection reset"),
		strings.Contains(message, "broken pipe"),
		strings.Contains(message, "bad connection"),
		strings.Contains(message, "database is closed"):
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)

	case strings.Contains(message, "40001"),
		strings.Contains(message, "serialization failure"),
		strings.Contains(message, "could not serialize"),
		strings.Contains(message, "deadlock"):
		return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
	}

	return fmt.Errorf("%w: %w", database.ErrDatabase, err)
}
