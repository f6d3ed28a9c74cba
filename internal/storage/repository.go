// Package storage loads the star schema into a relational mart behind a
// backend registry. The pipeline talks to the Repository interface only;
// concrete backends register themselves from init() and are selected by
// the configured kind.
package storage

import (
	"context"
	"fmt"
	"sync"
)

// Config selects and connects a mart backend.
//
// Edge cases:
//   - Kind must be non-empty and must match a registered backend kind.
//   - DSN is passed through to the backend factory; validation is
//     backend-specific.
type Config struct {
	Kind string
	DSN  string
}

// Repository is a backend-agnostic interface for loading the mart.
//
// IMPORTANT: the interface is intentionally minimal. The mart load is a
// full refresh: EnsureSchema once, ClearRows over every table with the
// fact table first, then InsertRows with the dimensions first. Splitting
// the clear from the insert keeps the refresh legal under enforced
// foreign keys: a dimension is never emptied while fact rows from a
// previous run still reference it. Each backend implements the
// statements its own idiomatic way (pgx CopyFrom, SQLite multi-row
// inserts, etc).
type Repository interface {
	// Close releases backend resources. Treat as "call once".
	Close()

	// EnsureSchema creates the mart tables if they do not exist.
	EnsureSchema(ctx context.Context, tables []TableSpec) error

	// ClearRows deletes every row in a table. Callers clear referencing
	// tables before the tables they reference.
	ClearRows(ctx context.Context, table string) error

	// InsertRows bulk-inserts rows into a cleared table, atomically where
	// the backend supports it. Returns the number of rows written.
	InsertRows(ctx context.Context, table string, columns []string, rows [][]any) (int64, error)
}

type factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind (e.g. "postgres", "sqlite").
//
// Call from an init() function in a backend package. Registering the same
// kind twice panics: fail fast beats ambiguous backend selection.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}

	factories[kind] = f
}

// New constructs a Repository using the registered backend factory.
//
// Errors: an empty or unregistered cfg.Kind, or whatever the factory
// returns. Safe for concurrent use with Register.
func New(ctx context.Context, cfg Config) (Repository, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing Kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return f(ctx, cfg)
}
