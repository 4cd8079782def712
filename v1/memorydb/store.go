package memorydb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=memorydb

// SnapshotStore persists whole-table snapshots. A snapshot is a UTF-8 JSON
// array of records, each encoded through the table's descriptor.
type SnapshotStore interface {
	// Save replaces the snapshot of table. Implementations must never leave a
	// partially written snapshot visible to Load.
	Save(ctx context.Context, table string, data []byte) error

	// Load returns the latest snapshot of table, or ErrSnapshotNotFound.
	Load(ctx context.Context, table string) ([]byte, error)

	// Delete removes the snapshot of table. Deleting a missing snapshot is
	// not an error.
	Delete(ctx context.Context, table string) error
}

// FileStore keeps one <table>.json file per table in Dir.
type FileStore struct {
	Dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("memorydb: create snapshot dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(table string) (string, error) {
	if table == "" || strings.ContainsAny(table, `/\`) || table == "." || table == ".." {
		return "", fmt.Errorf("memorydb: invalid table name %q", table)
	}
	return filepath.Join(f.Dir, table+".json"), nil
}

// Save writes data to a temporary file in Dir, syncs it and renames it over
// the table's file.
func (f *FileStore) Save(_ context.Context, table string, data []byte) error {
	path, err := f.path(table)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(f.Dir, "."+table+"-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	success := false
	defer func() {
		if !success {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close snapshot: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("rename snapshot: %w", err)
	}
	success = true

	if d, err := os.Open(f.Dir); err == nil {
		_ = d.Sync()
		_ = d.Close()
	}
	return nil
}

// Load reads the table's file.
func (f *FileStore) Load(_ context.Context, table string) ([]byte, error) {
	path, err := f.path(table)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrSnapshotNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	return data, nil
}

// Delete removes the table's file.
func (f *FileStore) Delete(_ context.Context, table string) error {
	path, err := f.path(table)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete snapshot: %w", err)
	}
	return nil
}
