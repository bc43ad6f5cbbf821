package index

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"

	"github.com/pacsforge/dicomdb/pkg/database"
)

//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=index

// Logger is the logging interface used by the index backend.
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
}

// Tracer creates spans around index transactions. *tracer.Tracer
// satisfies it; a nil Tracer disables tracing.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
}

// Backend stores the DICOM resource hierarchy, its metadata and its
// attachment records in a relational database reached through a
// database.Manager.
//
// Every query the backend uses is declared once and kept compiled in
// the manager's statement cache. All reads and writes live on
// Transaction; obtain one with Begin, or let RunTransaction drive the
// commit/rollback protocol.
//
// A Backend inherits the threading model of its manager: one goroutine
// at a time.
type Backend struct {
	manager *database.Manager
	dialect database.Dialect
	logger  Logger
	tracer  Tracer

	insertResource     *database.CachedStatement
	lastInsertID       *database.CachedStatement
	lookupResource     *database.CachedStatement
	countResource      *database.CachedStatement
	selectPublicID     *database.CachedStatement
	setParent          *database.CachedStatement
	selectChildren     *database.CachedStatement
	selectChildIDs     *database.CachedStatement
	deleteResource     *database.CachedStatement
	deleteMetadata     *database.CachedStatement
	insertMetadata     *database.CachedStatement
	selectMetadata     *database.CachedStatement
	insertAttachment   *database.CachedStatement
	selectAttachment   *database.CachedStatement
	deleteAttachment   *database.CachedStatement
	selectUUIDs        *database.CachedStatement
	insertDeletedFile  *database.CachedStatement
	selectDeletedFiles *database.CachedStatement
	clearDeletedFiles  *database.CachedStatement
}

// BackendOption configures optional backend collaborators.
type BackendOption func(*Backend)

// WithTracer wires a tracer; RunTransaction then wraps every
// transaction in a span.
func WithTracer(tracer Tracer) BackendOption {
	return func(b *Backend) {
		b.tracer = tracer
	}
}

// NewBackend builds the backend and declares its statement set for the
// manager's dialect. The database is not touched until Open or the
// first transaction.
func NewBackend(manager *database.Manager, logger Logger, opts ...BackendOption) (*Backend, error) {
	dialect := manager.Dialect()

	lastID, err := lastInsertIDQuery(dialect)
	if err != nil {
		return nil, err
	}

	backend := &Backend{
		manager: manager,
		dialect: dialect,
		logger:  logger,
	}

	backend.insertResource = database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO resources VALUES(${AUTOINCREMENT} ${resourceType}, ${publicId}, NULL)")
	backend.lastInsertID = database.NewCachedStatement(database.FromHere(), manager, lastID)
	backend.lookupResource = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT internalId, resourceType FROM resources WHERE publicId = ${publicId}").
		SetReadOnly(true)
	backend.countResource = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT COUNT(*) FROM resources WHERE internalId = ${id}").
		SetReadOnly(true)
	backend.selectPublicID = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT publicId FROM resources WHERE internalId = ${id}").
		SetReadOnly(true)
	backend.setParent = database.NewCachedStatement(database.FromHere(), manager,
		"UPDATE resources SET parentId = ${parent} WHERE internalId = ${child}")
	backend.selectChildren = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT publicId FROM resources WHERE parentId = ${id} ORDER BY publicId").
		SetReadOnly(true)
	backend.selectChildIDs = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT internalId FROM resources WHERE parentId = ${id}").
		SetReadOnly(true)
	backend.deleteResource = database.NewCachedStatement(database.FromHere(), manager,
		"DELETE FROM resources WHERE internalId = ${id}")
	backend.deleteMetadata = database.NewCachedStatement(database.FromHere(), manager,
		"DELETE FROM metadata WHERE id = ${id} AND type = ${type}")
	backend.insertMetadata = database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO metadata VALUES(${id}, ${type}, ${value})")
	backend.selectMetadata = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT value FROM metadata WHERE id = ${id} AND type = ${type}").
		SetReadOnly(true)
	backend.insertAttachment = database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO attachedfiles VALUES(${id}, ${fileType}, ${uuid}, "+
			"${compressedSize}, ${uncompressedSize}, ${compressionType})")
	backend.selectAttachment = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT uuid, compressedSize, uncompressedSize, compressionType "+
			"FROM attachedfiles WHERE id = ${id} AND fileType = ${fileType}").
		SetReadOnly(true)
	backend.deleteAttachment = database.NewCachedStatement(database.FromHere(), manager,
		"DELETE FROM attachedfiles WHERE id = ${id} AND fileType = ${fileType}")
	backend.selectUUIDs = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT uuid FROM attachedfiles WHERE id = ${id}").
		SetReadOnly(true)
	backend.insertDeletedFile = database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO deletedfiles VALUES(${uuid})")
	backend.selectDeletedFiles = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT uuid FROM deletedfiles").
		SetReadOnly(true)
	backend.clearDeletedFiles = database.NewCachedStatement(database.FromHere(), manager,
		"DELETE FROM deletedfiles")

	for _, opt := range opts {
		opt(backend)
	}

	return backend, nil
}

// Open connects to the database and installs the index schema unless a
// previous run already did. Open is idempotent and must complete before
// the first transaction.
func (b *Backend) Open(ctx context.Context) error {
	connection, err := b.manager.Connection(ctx)
	if err != nil {
		return err
	}

	exists, err := connection.DoesTableExist(ctx, "resources")
	if err != nil {
		return fmt.Errorf("probing the index schema: %w", err)
	}
	if exists {
		b.logger.Debug("index schema already installed", nil)
		return nil
	}

	ddl, err := schemaDDL(b.dialect)
	if err != nil {
		return err
	}
	if err := connection.ExecuteMultiLines(ctx, ddl); err != nil {
		return fmt.Errorf("installing the index schema: %w", err)
	}

	b.logger.Info("index schema installed", nil, map[string]interface{}{
		"dialect": b.dialect.String(),
	})
	return nil
}

// Begin opens a managed transaction and returns the operation carrier
// bound to it. The caller owns the transaction protocol: Commit or
// Rollback, plus a deferred Close.
func (b *Backend) Begin(ctx context.Context, transactionType database.TransactionType) (*Transaction, error) {
	managed, err := b.manager.StartTransaction(ctx, transactionType)
	if err != nil {
		return nil, err
	}
	return &Transaction{backend: b, managed: managed}, nil
}

// RunTransaction executes fn inside a fresh transaction: commit if fn
// returns nil, roll back otherwise. Collisions surface untouched so the
// caller can retry the whole unit. fn must not call Commit or Rollback
// itself.
func (b *Backend) RunTransaction(ctx context.Context, transactionType database.TransactionType,
	fn func(tx *Transaction) error) error {

	var span trace.Span
	if b.tracer != nil {
		ctx, span = b.tracer.StartSpan(ctx, "index.transaction")
		defer span.End()
	}

	err := b.runTransaction(ctx, transactionType, fn)
	if err != nil && b.tracer != nil {
		b.tracer.RecordErrorOnSpan(span, err)
	}
	return err
}

func (b *Backend) runTransaction(ctx context.Context, transactionType database.TransactionType,
	fn func(tx *Transaction) error) error {

	tx, err := b.Begin(ctx, transactionType)
	if err != nil {
		return err
	}

	// Close rolls back whatever fn left uncommitted, including after a
	// failed Commit.
	defer tx.Close()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
