package index

import (
	"context"
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Transaction carries the index operations of one database transaction.
// It wraps the managed transaction owned by the backend's manager; the
// usual shape is
//
//	tx, err := backend.Begin(ctx, database.TransactionReadWrite)
//	if err != nil { ... }
//	defer tx.Close()
//	...
//	return tx.Commit()
//
// or RunTransaction, which drives that protocol for you.
//
// Operations that execute more than one statement say so in their
// documentation; those need an explicit transaction, since an implicit
// one allows a single execution only.
type Transaction struct {
	backend *Backend
	managed *database.ManagedTransaction
}

// guard rejects operations on a carrier whose transaction already
// completed, before they could silently run inside a newer one.
func (t *Transaction) guard() error {
	if t.backend.manager.ActiveTransaction() != t.managed || !t.managed.IsOpen() {
		return fmt.Errorf("%w: the transaction is not active", database.ErrBadSequenceOfCalls)
	}
	return nil
}

// Commit completes the transaction.
func (t *Transaction) Commit() error {
	return t.managed.Commit()
}

// Rollback aborts the transaction.
func (t *Transaction) Rollback() error {
	return t.managed.Rollback()
}

// Close rolls back the transaction unless it was committed or rolled
// back already. It never fails; defer it right after Begin.
func (t *Transaction) Close() {
	t.managed.Close()
}

// CreateResource inserts a resource at the root of the hierarchy and
// returns its generated internal identifier. Use AttachChild to place
// it under a parent. The public identifier must be unique across all
// resources; a duplicate fails with the engine's constraint error.
//
// Two statements: the insert and the identity read. Requires an
// explicit read-write transaction.
func (t *Transaction) CreateResource(ctx context.Context, publicID string,
	resourceType ResourceType) (int64, error) {

	if err := t.guard(); err != nil {
		return 0, err
	}
	if !resourceType.Valid() {
		return 0, fmt.Errorf("%w: invalid resource type %d",
			database.ErrBadParameterType, int32(resourceType))
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("resourceType", int64(resourceType))
	parameters.SetUtf8("publicId", publicID)
	if err := t.backend.insertResource.ExecuteWithoutResult(ctx, parameters); err != nil {
		return 0, err
	}

	reader, err := t.backend.lastInsertID.Execute(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer reader.Close()

	if reader.IsDone() {
		return 0, fmt.Errorf("%w: the engine did not report the generated identifier",
			database.ErrDatabase)
	}
	return reader.ReadInteger64(0)
}

// LookupResource finds a resource by its public identifier and returns
// its internal identifier and type. A missing resource fails with
// ErrInexistentItem.
func (t *Transaction) LookupResource(ctx context.Context, publicID string) (int64, ResourceType, error) {
	if err := t.guard(); err != nil {
		return 0, 0, err
	}

	parameters := database.NewDictionary()
	parameters.SetUtf8("publicId", publicID)
	reader, err := t.backend.lookupResource.Execute(ctx, parameters)
	if err != nil {
		return 0, 0, err
	}
	defer reader.Close()

	if reader.IsDone() {
		return 0, 0, fmt.Errorf("%w: no resource with public identifier %q",
			database.ErrInexistentItem, publicID)
	}

	internalID, err := reader.ReadInteger64(0)
	if err != nil {
		return 0, 0, err
	}
	rawType, err := reader.ReadInteger32(1)
	if err != nil {
		return 0, 0, err
	}
	return internalID, ResourceType(rawType), nil
}

// IsExistingResource reports whether the internal identifier denotes a
// resource.
func (t *Transaction) IsExistingResource(ctx context.Context, internalID int64) (bool, error) {
	if err := t.guard(); err != nil {
		return false, err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	reader, err := t.backend.countResource.Execute(ctx, parameters)
	if err != nil {
		return false, err
	}
	defer reader.Close()

	count, err := reader.ReadInteger64(0)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetPublicID returns the public identifier of a resource. A missing
// resource fails with ErrInexistentItem.
func (t *Transaction) GetPublicID(ctx context.Context, internalID int64) (string, error) {
	if err := t.guard(); err != nil {
		return "", err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	reader, err := t.backend.selectPublicID.Execute(ctx, parameters)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	if reader.IsDone() {
		return "", fmt.Errorf("%w: no resource %d", database.ErrInexistentItem, internalID)
	}
	return reader.ReadString(0)
}

// AttachChild places the child resource under the parent. Attaching to
// an inexistent parent violates the schema's foreign key and fails with
// the engine's constraint error; an inexistent child leaves the
// hierarchy unchanged.
func (t *Transaction) AttachChild(ctx context.Context, parentID, childID int64) error {
	if err := t.guard(); err != nil {
		return err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("parent", parentID)
	parameters.SetInteger64("child", childID)
	return t.backend.setParent.ExecuteWithoutResult(ctx, parameters)
}

// GetChildrenPublicIDs returns the public identifiers of the direct
// children of a resource, sorted. A childless or inexistent resource
// yields an empty slice.
func (t *Transaction) GetChildrenPublicIDs(ctx context.Context, internalID int64) ([]string, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	return t.readStrings(ctx, t.backend.selectChildren, parameters)
}

// DeleteResource removes a resource together with its whole subtree,
// its metadata and its attachments. The UUIDs of attachment rows
// removed by the cascade are recorded for PopDeletedFiles. A missing
// resource fails with ErrInexistentItem.
//
// Several statements. Requires an explicit read-write transaction.
func (t *Transaction) DeleteResource(ctx context.Context, internalID int64) error {
	if err := t.guard(); err != nil {
		return err
	}

	exists, err := t.IsExistingResource(ctx, internalID)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: no resource %d", database.ErrInexistentItem, internalID)
	}

	if t.backend.dialect == database.DialectMySQL {
		if err := t.recordSubtreeAttachments(ctx, internalID); err != nil {
			return err
		}
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	return t.backend.deleteResource.ExecuteWithoutResult(ctx, parameters)
}

// recordSubtreeAttachments compensates for MySQL, where cascaded
// deletes do not fire the AttachedFileDeleted trigger: the attachment
// UUIDs of the whole subtree are recorded in deletedfiles before the
// cascade removes the rows silently.
func (t *Transaction) recordSubtreeAttachments(ctx context.Context, rootID int64) error {
	pending := []int64{rootID}
	for len(pending) > 0 {
		id := pending[0]
		pending = pending[1:]

		parameters := database.NewDictionary()
		parameters.SetInteger64("id", id)
		uuids, err := t.readStrings(ctx, t.backend.selectUUIDs, parameters)
		if err != nil {
			return err
		}
		for _, uuid := range uuids {
			record := database.NewDictionary()
			record.SetUtf8("uuid", uuid)
			if err := t.backend.insertDeletedFile.ExecuteWithoutResult(ctx, record); err != nil {
				return err
			}
		}

		parameters = database.NewDictionary()
		parameters.SetInteger64("id", id)
		children, err := t.readIdentifiers(ctx, t.backend.selectChildIDs, parameters)
		if err != nil {
			return err
		}
		pending = append(pending, children...)
	}
	return nil
}

// SetMetadata stores a metadata value on a resource, replacing any
// previous value of the same metadata type.
//
// Two statements: the clearing delete and the insert. Requires an
// explicit read-write transaction.
func (t *Transaction) SetMetadata(ctx context.Context, internalID int64,
	metadataType int32, value string) error {

	if err := t.guard(); err != nil {
		return err
	}

	clearing := database.NewDictionary()
	clearing.SetInteger64("id", internalID)
	clearing.SetInteger64("type", int64(metadataType))
	if err := t.backend.deleteMetadata.ExecuteWithoutResult(ctx, clearing); err != nil {
		return err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("type", int64(metadataType))
	parameters.SetUtf8("value", value)
	return t.backend.insertMetadata.ExecuteWithoutResult(ctx, parameters)
}

// LookupMetadata returns the value stored on a resource under the given
// metadata type. A missing entry fails with ErrInexistentItem.
func (t *Transaction) LookupMetadata(ctx context.Context, internalID int64,
	metadataType int32) (string, error) {

	if err := t.guard(); err != nil {
		return "", err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("type", int64(metadataType))
	reader, err := t.backend.selectMetadata.Execute(ctx, parameters)
	if err != nil {
		return "", err
	}
	defer reader.Close()

	if reader.IsDone() {
		return "", fmt.Errorf("%w: resource %d has no metadata of type %d",
			database.ErrInexistentItem, internalID, metadataType)
	}
	return reader.ReadString(0)
}

// DeleteMetadata removes a metadata entry. Deleting an entry that does
// not exist is a no-op.
func (t *Transaction) DeleteMetadata(ctx context.Context, internalID int64, metadataType int32) error {
	if err := t.guard(); err != nil {
		return err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("type", int64(metadataType))
	return t.backend.deleteMetadata.ExecuteWithoutResult(ctx, parameters)
}

// AddAttachment records a stored file on a resource. A resource holds
// at most one attachment per file type; a duplicate fails with the
// engine's constraint error.
func (t *Transaction) AddAttachment(ctx context.Context, internalID int64, attachment Attachment) error {
	if err := t.guard(); err != nil {
		return err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("fileType", int64(attachment.FileType))
	parameters.SetUtf8("uuid", attachment.UUID)
	parameters.SetInteger64("compressedSize", attachment.CompressedSize)
	parameters.SetInteger64("uncompressedSize", attachment.UncompressedSize)
	parameters.SetInteger64("compressionType", int64(attachment.CompressionType))
	return t.backend.insertAttachment.ExecuteWithoutResult(ctx, parameters)
}

// LookupAttachment returns the attachment of a resource for the given
// file type. A missing attachment fails with ErrInexistentItem.
func (t *Transaction) LookupAttachment(ctx context.Context, internalID int64,
	fileType int32) (Attachment, error) {

	if err := t.guard(); err != nil {
		return Attachment{}, err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("fileType", int64(fileType))
	reader, err := t.backend.selectAttachment.Execute(ctx, parameters)
	if err != nil {
		return Attachment{}, err
	}
	defer reader.Close()

	if reader.IsDone() {
		return Attachment{}, fmt.Errorf("%w: resource %d has no attachment of file type %d",
			database.ErrInexistentItem, internalID, fileType)
	}

	attachment := Attachment{FileType: fileType}
	if attachment.UUID, err = reader.ReadString(0); err != nil {
		return Attachment{}, err
	}
	if attachment.CompressedSize, err = reader.ReadInteger64(1); err != nil {
		return Attachment{}, err
	}
	if attachment.UncompressedSize, err = reader.ReadInteger64(2); err != nil {
		return Attachment{}, err
	}
	if attachment.CompressionType, err = reader.ReadInteger32(3); err != nil {
		return Attachment{}, err
	}
	return attachment, nil
}

// DeleteAttachment removes an attachment row; the AttachedFileDeleted
// trigger records its UUID for PopDeletedFiles. Deleting an attachment
// that does not exist is a no-op.
func (t *Transaction) DeleteAttachment(ctx context.Context, internalID int64, fileType int32) error {
	if err := t.guard(); err != nil {
		return err
	}

	parameters := database.NewDictionary()
	parameters.SetInteger64("id", internalID)
	parameters.SetInteger64("fileType", int64(fileType))
	return t.backend.deleteAttachment.ExecuteWithoutResult(ctx, parameters)
}

// PopDeletedFiles drains the list of files whose attachment rows were
// removed since the last call, so the caller can delete the payloads
// from the storage area. The read and the drain commit or roll back
// together with the rest of the transaction.
//
// Two statements when the list is not empty. Requires an explicit
// read-write transaction.
func (t *Transaction) PopDeletedFiles(ctx context.Context) ([]string, error) {
	if err := t.guard(); err != nil {
		return nil, err
	}

	uuids, err := t.readStrings(ctx, t.backend.selectDeletedFiles, nil)
	if err != nil {
		return nil, err
	}
	if len(uuids) == 0 {
		return nil, nil
	}

	if err := t.backend.clearDeletedFiles.ExecuteWithoutResult(ctx, nil); err != nil {
		return nil, err
	}
	return uuids, nil
}

// readStrings drains the single string column produced by a statement.
func (t *Transaction) readStrings(ctx context.Context, statement *database.CachedStatement,
	parameters *database.Dictionary) ([]string, error) {

	reader, err := statement.Execute(ctx, parameters)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var values []string
	for !reader.IsDone() {
		value, err := reader.ReadString(0)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if err := reader.Next(ctx); err != nil {
			return nil, err
		}
	}
	return values, nil
}

// readIdentifiers drains the single integer column produced by a
// statement.
func (t *Transaction) readIdentifiers(ctx context.Context, statement *database.CachedStatement,
	parameters *database.Dictionary) ([]int64, error) {

	reader, err := statement.Execute(ctx, parameters)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	var values []int64
	for !reader.IsDone() {
		value, err := reader.ReadInteger64(0)
		if err != nil {
			return nil, err
		}
		values = append(values, value)
		if err := reader.Next(ctx); err != nil {
			return nil, err
		}
	}
	return values, nil
}
