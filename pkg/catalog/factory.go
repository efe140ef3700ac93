package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Render catalog backends
const (
	BackendMemory = "memory" // Lives as long as the process
	BackendSQLite = "sqlite" // Needs the sqlite build tag
)

// NewStore returns an uninitialized render catalog for the named backend.
// An empty kind selects the in-memory catalog; sqlitePath is only read by the SQLite backend.
func NewStore(kind, sqlitePath string) (Store, error) {
	switch kind {
	case "", BackendMemory:
		return NewMemoryStore(), nil
	case BackendSQLite:
		return newSQLiteStore(sqlitePath)
	default:
		return nil, fmt.Errorf("unsupported render catalog backend: %s", kind)
	}
}

// OpenStore creates the named render catalog and initializes it. A catalog
// that fails to initialize is closed before the error is returned.
func OpenStore(ctx context.Context, kind, sqlitePath string) (Store, error) {
	store, err := NewStore(kind, sqlitePath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, errors.Join(fmt.Errorf("failed to open %s render catalog: %w", kind, err), CloseIfSupported(store))
	}
	return store, nil
}

// CloseIfSupported releases catalogs that hold resources, such as the SQLite
// connection. The in-memory catalog has nothing to close.
func CloseIfSupported(store Store) error {
	closer, ok := store.(interface{ Close() error })
	if !ok {
		return nil
	}
	return closer.Close()
}
