package memorydb

import "errors"

var (
	// ErrDuplicateKey is returned when a write would store two records with
	// the same id.
	ErrDuplicateKey = errors.New("memorydb: duplicate key")

	// ErrSchemaMismatch is returned when a table is reopened with a descriptor
	// other than the one it was created with.
	ErrSchemaMismatch = errors.New("memorydb: table schema mismatch")

	// ErrClosed is returned by operations on a closed database.
	ErrClosed = errors.New("memorydb: database closed")

	// ErrSnapshotNotFound is returned by a SnapshotStore that holds no
	// snapshot for a table.
	ErrSnapshotNotFound = errors.New("memorydb: snapshot not found")
)
