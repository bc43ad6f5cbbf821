package database

import (
	"fmt"
	"hash/fnv"
	"path/filepath"
	"runtime"
)

// StatementID identifies the call site that owns a cached statement. It
// is comparable and serves as the statement-cache key: two distinct call
// sites always cache separately, and one call site that builds its SQL
// dynamically caches one entry per SQL shape.
type StatementID struct {
	file    string
	line    int
	dynamic bool
	hash    uint64
}

// FromHere captures the caller's file and line as a statement identity.
// Use it for statements whose SQL text is a compile-time constant.
func FromHere() StatementID {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	return StatementID{file: file, line: line}
}

// FromHereDynamic captures the caller's file and line plus a hash of the
// dynamically-built SQL, so one call site emitting several SQL shapes
// caches each shape separately.
func FromHereDynamic(sql string) StatementID {
	_, file, line, ok := runtime.Caller(1)
	if !ok {
		file, line = "unknown", 0
	}
	h := fnv.New64a()
	h.Write([]byte(sql))
	return StatementID{file: file, line: line, dynamic: true, hash: h.Sum64()}
}

// IsDynamic reports whether the identity includes a SQL hash.
func (id StatementID) IsDynamic() bool {
	return id.dynamic
}

// String renders the identity for logs, with the file shortened to its
// base name.
func (id StatementID) String() string {
	if id.dynamic {
		return fmt.Sprintf("%s:%d#%016x", filepath.Base(id.file), id.line, id.hash)
	}
	return fmt.Sprintf("%s:%d", filepath.Base(id.file), id.line)
}
