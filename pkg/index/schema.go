package index

import (
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// The index schema is written once per dialect rather than generated:
// identity columns, foreign keys and triggers are exactly the places
// where the engines disagree, and a readable script per engine beats a
// generator nobody can review.
//
// All four scripts create the same four tables:
//
//	resources     the DICOM hierarchy, one row per resource
//	metadata      (resource, type) -> value pairs
//	attachedfiles (resource, file type) -> stored file descriptor
//	deletedfiles  UUIDs of files whose attachment rows were deleted
//
// Deleting a resource cascades into its children, its metadata and its
// attachments. The AttachedFileDeleted trigger records the UUID of
// every removed attachment in deletedfiles so the storage area can be
// cleaned up afterwards; see Transaction.PopDeletedFiles.

const sqliteSchema = `
CREATE TABLE resources(
       internalId INTEGER PRIMARY KEY AUTOINCREMENT,
       resourceType INTEGER NOT NULL,
       publicId TEXT NOT NULL,
       parentId INTEGER REFERENCES resources(internalId) ON DELETE CASCADE);

CREATE UNIQUE INDEX UniquePublicId ON resources(publicId);
CREATE INDEX ChildrenIndex ON resources(parentId);

CREATE TABLE metadata(
       id INTEGER NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       type INTEGER NOT NULL,
       value TEXT,
       PRIMARY KEY(id, type));

CREATE TABLE attachedfiles(
       id INTEGER NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       fileType INTEGER NOT NULL,
       uuid TEXT NOT NULL,
       compressedSize INTEGER NOT NULL,
       uncompressedSize INTEGER NOT NULL,
       compressionType INTEGER NOT NULL,
       PRIMARY KEY(id, fileType));

CREATE TABLE deletedfiles(
       uuid TEXT NOT NULL);

CREATE TRIGGER AttachedFileDeleted AFTER DELETE ON attachedfiles
FOR EACH ROW
BEGIN
   INSERT INTO deletedfiles VALUES(old.uuid);
END;
`

const postgresSchema = `
CREATE TABLE resources(
       internalId BIGSERIAL NOT NULL PRIMARY KEY,
       resourceType INTEGER NOT NULL,
       publicId VARCHAR(64) NOT NULL,
       parentId BIGINT REFERENCES resources(internalId) ON DELETE CASCADE);

CREATE UNIQUE INDEX UniquePublicId ON resources(publicId);
CREATE INDEX ChildrenIndex ON resources(parentId);

CREATE TABLE metadata(
       id BIGINT NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       type INTEGER NOT NULL,
       value TEXT,
       PRIMARY KEY(id, type));

CREATE TABLE attachedfiles(
       id BIGINT NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       fileType INTEGER NOT NULL,
       uuid VARCHAR(64) NOT NULL,
       compressedSize BIGINT NOT NULL,
       uncompressedSize BIGINT NOT NULL,
       compressionType INTEGER NOT NULL,
       PRIMARY KEY(id, fileType));

CREATE TABLE deletedfiles(
       uuid VARCHAR(64) NOT NULL);

CREATE FUNCTION AttachedFileDeletedFunc() RETURNS TRIGGER AS $body$
BEGIN
   INSERT INTO deletedfiles VALUES(old.uuid);
   RETURN NULL;
END;
$body$ LANGUAGE plpgsql;

CREATE TRIGGER AttachedFileDeleted AFTER DELETE ON attachedfiles
FOR EACH ROW EXECUTE PROCEDURE AttachedFileDeletedFunc();
`

// MySQL ignores column-level REFERENCES clauses, so the foreign keys
// are spelled as table-level constraints. Cascaded deletes do not fire
// triggers on MySQL; DeleteResource compensates by collecting the
// attachment UUIDs of the whole subtree before deleting.
const mysqlSchema = `
CREATE TABLE resources(
       internalId BIGINT NOT NULL AUTO_INCREMENT PRIMARY KEY,
       resourceType INTEGER NOT NULL,
       publicId VARCHAR(64) NOT NULL,
       parentId BIGINT,
       CONSTRAINT ResourcesParent FOREIGN KEY (parentId)
              REFERENCES resources(internalId) ON DELETE CASCADE);

CREATE UNIQUE INDEX UniquePublicId ON resources(publicId);
CREATE INDEX ChildrenIndex ON resources(parentId);

CREATE TABLE metadata(
       id BIGINT NOT NULL,
       type INTEGER NOT NULL,
       value TEXT,
       PRIMARY KEY(id, type),
       CONSTRAINT MetadataResource FOREIGN KEY (id)
              REFERENCES resources(internalId) ON DELETE CASCADE);

CREATE TABLE attachedfiles(
       id BIGINT NOT NULL,
       fileType INTEGER NOT NULL,
       uuid VARCHAR(64) NOT NULL,
       compressedSize BIGINT NOT NULL,
       uncompressedSize BIGINT NOT NULL,
       compressionType INTEGER NOT NULL,
       PRIMARY KEY(id, fileType),
       CONSTRAINT AttachedFilesResource FOREIGN KEY (id)
              REFERENCES resources(internalId) ON DELETE CASCADE);

CREATE TABLE deletedfiles(
       uuid VARCHAR(64) NOT NULL);

CREATE TRIGGER AttachedFileDeleted AFTER DELETE ON attachedfiles
FOR EACH ROW
BEGIN
   INSERT INTO deletedfiles VALUES(old.uuid);
END;
`

// SQL Server rejects a self-referencing ON DELETE CASCADE, so the
// resource tree is cascaded by an INSTEAD OF trigger that expands the
// subtree with a recursive CTE. The inner DELETE does not re-enter the
// trigger because recursive triggers are off by default.
const mssqlSchema = `
CREATE TABLE resources(
       internalId BIGINT NOT NULL IDENTITY(1,1) PRIMARY KEY,
       resourceType INTEGER NOT NULL,
       publicId VARCHAR(64) NOT NULL,
       parentId BIGINT REFERENCES resources(internalId));

CREATE UNIQUE INDEX UniquePublicId ON resources(publicId);
CREATE INDEX ChildrenIndex ON resources(parentId);

CREATE TABLE metadata(
       id BIGINT NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       type INTEGER NOT NULL,
       value VARCHAR(MAX),
       PRIMARY KEY(id, type));

CREATE TABLE attachedfiles(
       id BIGINT NOT NULL REFERENCES resources(internalId) ON DELETE CASCADE,
       fileType INTEGER NOT NULL,
       uuid VARCHAR(64) NOT NULL,
       compressedSize BIGINT NOT NULL,
       uncompressedSize BIGINT NOT NULL,
       compressionType INTEGER NOT NULL,
       PRIMARY KEY(id, fileType));

CREATE TABLE deletedfiles(
       uuid VARCHAR(64) NOT NULL);

CREATE TRIGGER ResourceDeleted ON resources INSTEAD OF DELETE AS
BEGIN
   WITH subtree(internalId) AS (
      SELECT internalId FROM deleted
      UNION ALL
      SELECT r.internalId FROM resources r
             INNER JOIN subtree s ON r.parentId = s.internalId)
   DELETE FROM resources WHERE internalId IN (SELECT internalId FROM subtree);
END;

CREATE TRIGGER AttachedFileDeleted ON attachedfiles AFTER DELETE AS
BEGIN
   INSERT INTO deletedfiles(uuid) SELECT uuid FROM deleted;
END;
`

func schemaDDL(dialect database.Dialect) (string, error) {
	switch dialect {
	case database.DialectSQLite:
		return sqliteSchema, nil
	case database.DialectPostgreSQL:
		return postgresSchema, nil
	case database.DialectMySQL:
		return mysqlSchema, nil
	case database.DialectMSSQL:
		return mssqlSchema, nil
	default:
		return "", fmt.Errorf("%w: no index schema for dialect %v",
			database.ErrUnknownDialect, dialect)
	}
}

// lastInsertIDQuery returns the dialect's statement for reading the
// identity value generated by the immediately preceding INSERT on the
// same connection.
func lastInsertIDQuery(dialect database.Dialect) (string, error) {
	switch dialect {
	case database.DialectSQLite:
		return "SELECT last_insert_rowid()", nil
	case database.DialectPostgreSQL:
		return "SELECT lastval()", nil
	case database.DialectMySQL:
		return "SELECT LAST_INSERT_ID()", nil
	case database.DialectMSSQL:
		return "SELECT CAST(SCOPE_IDENTITY() AS BIGINT)", nil
	default:
		return "", fmt.Errorf("%w: no last-insert-id query for dialect %v",
			database.ErrUnknownDialect, dialect)
	}
}
