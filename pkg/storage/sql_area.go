package storage

import (
	"context"
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// storageSchema returns the storagefiles DDL; only the blob column type
// differs per dialect.
func storageSchema(dialect database.Dialect) (string, error) {
	var blob string
	switch dialect {
	case database.DialectSQLite:
		blob = "BLOB"
	case database.DialectPostgreSQL:
		blob = "BYTEA"
	case database.DialectMySQL:
		blob = "LONGBLOB"
	case database.DialectMSSQL:
		blob = "VARBINARY(MAX)"
	default:
		return "", fmt.Errorf("%w: no storage schema for dialect %v",
			database.ErrUnknownDialect, dialect)
	}

	return fmt.Sprintf(`
CREATE TABLE storagefiles(
       uuid VARCHAR(64) NOT NULL PRIMARY KEY,
       content %s NOT NULL)`, blob), nil
}

// SQLArea keeps the stored files as blobs in the database, which gives
// small deployments transactional storage with no second service to
// operate.
//
// The area drives its own transactions, so it must own its manager: do
// not share one with the index backend.
type SQLArea struct {
	manager *database.Manager
	logger  Logger

	create *database.CachedStatement
	read   *database.CachedStatement
	count  *database.CachedStatement
	remove *database.CachedStatement
}

// NewSQLArea declares the area's statements on the given manager. The
// database is not touched until Open.
func NewSQLArea(manager *database.Manager, logger Logger) *SQLArea {
	area := &SQLArea{
		manager: manager,
		logger:  logger,
	}

	area.create = database.NewCachedStatement(database.FromHere(), manager,
		"INSERT INTO storagefiles VALUES(${uuid}, ${content})")
	area.read = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT content FROM storagefiles WHERE uuid = ${uuid}").
		SetReadOnly(true)
	area.count = database.NewCachedStatement(database.FromHere(), manager,
		"SELECT COUNT(*) FROM storagefiles WHERE uuid = ${uuid}").
		SetReadOnly(true)
	area.remove = database.NewCachedStatement(database.FromHere(), manager,
		"DELETE FROM storagefiles WHERE uuid = ${uuid}")

	return area
}

// Open connects to the database and creates the storagefiles table
// unless a previous run already did. Open is idempotent.
func (a *SQLArea) Open(ctx context.Context) error {
	connection, err := a.manager.Connection(ctx)
	if err != nil {
		return err
	}

	exists, err := connection.DoesTableExist(ctx, "storagefiles")
	if err != nil {
		return fmt.Errorf("probing the storage schema: %w", err)
	}
	if exists {
		a.logger.Debug("storage schema already installed", nil)
		return nil
	}

	ddl, err := storageSchema(a.manager.Dialect())
	if err != nil {
		return err
	}
	if err := connection.ExecuteMultiLines(ctx, ddl); err != nil {
		return fmt.Errorf("installing the storage schema: %w", err)
	}

	a.logger.Info("storage schema installed", nil, map[string]interface{}{
		"dialect": a.manager.Dialect().String(),
	})
	return nil
}

// Close releases the area's manager, with its cached statements and its
// connection.
func (a *SQLArea) Close() error {
	return a.manager.Close()
}

// Create implements Area.
func (a *SQLArea) Create(ctx context.Context, uuid string, content []byte) error {
	tx, err := a.manager.StartTransaction(ctx, database.TransactionImplicit)
	if err != nil {
		return err
	}
	defer tx.Close()

	parameters := database.NewDictionary()
	parameters.SetUtf8("uuid", uuid)
	parameters.SetInputFile("content", content)
	if err := a.create.ExecuteWithoutResult(ctx, parameters); err != nil {
		return err
	}
	return tx.Commit()
}

// ReadWhole implements Area.
func (a *SQLArea) ReadWhole(ctx context.Context, uuid string) ([]byte, error) {
	tx, err := a.manager.StartTransaction(ctx, database.TransactionImplicit)
	if err != nil {
		return nil, err
	}
	defer tx.Close()

	content, err := a.readContent(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return content, nil
}

// ReadRange implements Area. The engines disagree on blob slicing
// functions, so the range is cut client-side from a whole read.
func (a *SQLArea) ReadRange(ctx context.Context, uuid string, start, end int64) ([]byte, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	tx, err := a.manager.StartTransaction(ctx, database.TransactionImplicit)
	if err != nil {
		return nil, err
	}
	defer tx.Close()

	content, err := a.readContent(ctx, uuid)
	if err != nil {
		return nil, err
	}
	if end > int64(len(content)) {
		return nil, fmt.Errorf("%w: range [%d, %d) exceeds the stored size %d",
			database.ErrBadParameterType, start, end, len(content))
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return content[start:end], nil
}

// Remove implements Area. The row is counted before the delete, since
// the statement layer does not expose affected-row counts and a
// silently missing file would leak the caller's bookkeeping.
func (a *SQLArea) Remove(ctx context.Context, uuid string) error {
	tx, err := a.manager.StartTransaction(ctx, database.TransactionReadWrite)
	if err != nil {
		return err
	}
	defer tx.Close()

	parameters := database.NewDictionary()
	parameters.SetUtf8("uuid", uuid)
	reader, err := a.count.Execute(ctx, parameters)
	if err != nil {
		return err
	}
	n, err := reader.ReadInteger64(0)
	reader.Close()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: no stored file %q", database.ErrInexistentItem, uuid)
	}

	if err := a.remove.ExecuteWithoutResult(ctx, parameters); err != nil {
		return err
	}
	return tx.Commit()
}

func (a *SQLArea) readContent(ctx context.Context, uuid string) ([]byte, error) {
	parameters := database.NewDictionary()
	parameters.SetUtf8("uuid", uuid)
	reader, err := a.read.Execute(ctx, parameters)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	if reader.IsDone() {
		return nil, fmt.Errorf("%w: no stored file %q", database.ErrInexistentItem, uuid)
	}
	if err := reader.SetExpectedType(0, database.TypeResultFile); err != nil {
		return nil, err
	}
	return reader.ReadLargeObject(0)
}

func validateRange(start, end int64) error {
	if start < 0 || end <= start {
		return fmt.Errorf("%w: invalid range [%d, %d)", database.ErrBadParameterType, start, end)
	}
	return nil
}
