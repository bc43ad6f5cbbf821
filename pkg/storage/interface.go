package storage

import "context"

// Area stores the attachment payloads the index refers to by UUID. An
// area is a flat namespace: the UUID is the whole key, there is no
// directory structure.
//
// Reading or removing a UUID that was never created (or was removed
// already) fails with database.ErrInexistentItem, whatever the backing
// store.
type Area interface {
	// Create stores content under the given UUID. The caller generates
	// UUIDs fresh and never reuses them.
	Create(ctx context.Context, uuid string, content []byte) error

	// ReadWhole returns the complete content stored under the UUID.
	ReadWhole(ctx context.Context, uuid string) ([]byte, error)

	// ReadRange returns the half-open byte range [start, end) of the
	// stored content. The range must satisfy 0 <= start < end <= size;
	// anything else fails with database.ErrBadParameterType.
	ReadRange(ctx context.Context, uuid string, start, end int64) ([]byte, error)

	// Remove deletes the content stored under the UUID.
	Remove(ctx context.Context, uuid string) error
}

// Openable is implemented by areas that bootstrap their storage (a
// table, a bucket) before first use.
type Openable interface {
	Open(ctx context.Context) error
}
