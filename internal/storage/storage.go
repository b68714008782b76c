// Package storage contains the storage-agnostic contracts of the mapping
// engine and the backend factory.
//
// Concrete backends (sqlite, postgres, mysql) register themselves at init
// time; callers pick one by kind through Config and never import a backend
// directly. Import ormlite/internal/storage/all to enable every built-in
// backend.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"sync"

	"ormlite/internal/errs"
	"ormlite/internal/sqlgen"
)

// Config selects and parameterizes a backend.
type Config struct {
	// Kind is the registered backend name, e.g. "sqlite".
	Kind string
	// Path is the database file for file-based backends.
	Path string
	// DSN is the connection string for server backends.
	DSN string
	// Create lets file-based backends create a missing database file
	// instead of rejecting it.
	Create bool
}

// Handle is one scoped database handle. It is opened for a single engine
// operation and closed when that operation ends.
type Handle interface {
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Close() error
}

// Opener produces scoped handles for one configured database.
type Opener interface {
	Open(ctx context.Context) (Handle, error)
	Dialect() sqlgen.Dialect
}

// Backend is the contract every storage kind implements.
type Backend interface {
	// Dialect returns the SQL dialect of the backend.
	Dialect() sqlgen.Dialect
	// Validate checks cfg without touching the database.
	Validate(cfg Config) error
	// Open connects using cfg. The caller closes the returned pool.
	Open(ctx context.Context, cfg Config) (*sql.DB, error)
}

// Preparer is implemented by backends that need a setup step before
// validation, such as creating a database file.
type Preparer interface {
	Prepare(cfg Config) error
}

var (
	mu       sync.RWMutex
	backends = map[string]Backend{}
)

// Register registers (or replaces) the backend for kind. It is typically
// called from backend packages' init functions.
func Register(kind string, b Backend) {
	mu.Lock()
	defer mu.Unlock()
	backends[normalizeKind(kind)] = b
}

// Lookup returns the backend registered for kind.
func Lookup(kind string) (Backend, bool) {
	mu.RLock()
	defer mu.RUnlock()
	b, ok := backends[normalizeKind(kind)]
	return b, ok
}

// ListKinds returns the registered kinds in sorted order.
func ListKinds() []string {
	mu.RLock()
	defer mu.RUnlock()
	kinds := make([]string, 0, len(backends))
	for k := range backends {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Validate checks cfg against its backend. An unregistered kind yields
// ErrUnknownStorage.
func Validate(cfg Config) error {
	b, err := backendFor(cfg)
	if err != nil {
		return err
	}
	return b.Validate(cfg)
}

// New validates cfg and returns an opener for it. No connection is made
// until Open is called.
func New(cfg Config) (Opener, error) {
	b, err := backendFor(cfg)
	if err != nil {
		return nil, err
	}
	if p, ok := b.(Preparer); ok {
		if err := p.Prepare(cfg); err != nil {
			return nil, err
		}
	}
	if err := b.Validate(cfg); err != nil {
		return nil, err
	}
	return &source{backend: b, cfg: cfg}, nil
}

func backendFor(cfg Config) (Backend, error) {
	kind := normalizeKind(cfg.Kind)
	if kind == "" {
		kind = "sqlite"
	}
	b, ok := Lookup(kind)
	if !ok {
		return nil, errs.Newf(errs.ErrUnknownStorage, "storage", kind,
			"registered kinds: %s", strings.Join(ListKinds(), ", "))
	}
	return b, nil
}

func normalizeKind(kind string) string {
	return strings.ToLower(strings.TrimSpace(kind))
}

// source opens a fresh pool per handle, so nothing outlives an operation.
type source struct {
	backend Backend
	cfg     Config
}

func (s *source) Open(ctx context.Context) (Handle, error) {
	db, err := s.backend.Open(ctx, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", normalizeKind(s.cfg.Kind), err)
	}
	return db, nil
}

func (s *source) Dialect() sqlgen.Dialect { return s.backend.Dialect() }

// Shared returns an opener over an existing pool owned by the caller.
// Handles it returns do not close the pool.
func Shared(db *sql.DB, d sqlgen.Dialect) Opener {
	if d == nil {
		d = sqlgen.SQLite
	}
	return &shared{db: db, dialect: d}
}

type shared struct {
	db      *sql.DB
	dialect sqlgen.Dialect
}

func (s *shared) Open(context.Context) (Handle, error) {
	return sharedHandle{s.db}, nil
}

func (s *shared) Dialect() sqlgen.Dialect { return s.dialect }

type sharedHandle struct{ *sql.DB }

func (sharedHandle) Close() error { return nil }
