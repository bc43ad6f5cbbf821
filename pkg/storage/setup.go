package storage

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/pacsforge/dicomdb/pkg/database"
)

//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=storage

// Logger is the logging interface used by the storage areas.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// NewArea builds the configured storage area.
//
// The SQL area keeps its payloads in the database reached through the
// factory, behind a manager of its own; the factory is ignored when the
// configuration selects MinIO.
func NewArea(cfg Config, factory database.Factory, logger Logger) (Area, error) {
	switch cfg.Type {
	case "sql":
		if factory == nil {
			return nil, fmt.Errorf("%w: the SQL area needs a database factory",
				database.ErrBadParameterType)
		}
		return NewSQLArea(database.NewManager(factory, logger), logger), nil
	case "minio":
		if cfg.Minio == nil {
			return nil, fmt.Errorf("%w: area type %q without its configuration",
				database.ErrBadParameterType, cfg.Type)
		}
		return NewMinioArea(*cfg.Minio, logger)
	default:
		return nil, fmt.Errorf("%w: unknown area type %q",
			database.ErrBadParameterType, cfg.Type)
	}
}

// BufferPool recycles the byte buffers used when draining object reads,
// so repeated downloads do not reallocate.
type BufferPool struct {
	pool sync.Pool
}

// NewBufferPool creates an empty pool; buffers are allocated on demand.
func NewBufferPool() *BufferPool {
	return &BufferPool{
		pool: sync.Pool{
			New: func() interface{} {
				return new(bytes.Buffer)
			},
		},
	}
}

// Get returns a buffer from the pool. Reset it before use; its previous
// contents are unspecified.
func (p *BufferPool) Get() *bytes.Buffer {
	return p.pool.Get().(*bytes.Buffer)
}

// Put returns a buffer to the pool. The buffer must not be used
// afterwards.
func (p *BufferPool) Put(b *bytes.Buffer) {
	p.pool.Put(b)
}
