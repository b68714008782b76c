// Package sqlite implements the SQLite storage backend on top of the pure-Go
// modernc.org/sqlite driver. Registration happens in init; callers select it
// with storage.Config{Kind: "sqlite", Path: ...}.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"time"

	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"ormlite/internal/errs"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"
)

// DriverName is the database/sql driver the backend opens.
const DriverName = "sqlite"

// pingTimeout bounds the connectivity check made on open.
const pingTimeout = 5 * time.Second

// sqlOpen is a test hook that points to sql.Open by default.
var sqlOpen = sql.Open

// Backend is the SQLite storage.Backend.
type Backend struct{}

var _ storage.Backend = Backend{}
var _ storage.Preparer = Backend{}

func init() {
	storage.Register("sqlite", Backend{})
}

// Dialect returns the SQLite dialect.
func (Backend) Dialect() sqlgen.Dialect { return sqlgen.SQLite }

// Validate requires a non-empty path naming an existing file.
func (Backend) Validate(cfg storage.Config) error {
	path := strings.TrimSpace(cfg.Path)
	if path == "" {
		return errs.New(errs.ErrMissingDatabasePath, "validate", "sqlite", nil)
	}
	st, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return errs.Newf(errs.ErrDatabaseFileNotFound, "validate", "sqlite", "%s", path)
		}
		return errs.New(errs.ErrDatabaseFileNotFound, "validate", "sqlite", err)
	}
	if st.IsDir() {
		return errs.Newf(errs.ErrDatabaseFileNotFound, "validate", "sqlite", "%s is a directory", path)
	}
	return nil
}

// Prepare creates an empty database file when cfg.Create is set and the
// file is missing. SQLite initializes an empty file on first write.
func (Backend) Prepare(cfg storage.Config) error {
	path := strings.TrimSpace(cfg.Path)
	if !cfg.Create || path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("sqlite: create %s: %w", path, err)
	}
	return f.Close()
}

// DSN returns the connection string for a database file. The driver opens
// "file:" names as URIs, so the path is percent-encoded: a '?' or '#' in a
// file name must not start a query or fragment.
func DSN(path string) string {
	u := url.URL{Scheme: "file", OmitHost: true, Path: strings.TrimSpace(path)}
	return u.String()
}

// Open opens the database file and checks connectivity. Foreign keys are
// enabled on a best-effort basis.
func (b Backend) Open(ctx context.Context, cfg storage.Config) (*sql.DB, error) {
	if err := b.Validate(cfg); err != nil {
		return nil, err
	}
	db, err := sqlOpen(DriverName, DSN(cfg.Path))
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}
	// One handle serves one operation; a single connection keeps it simple.
	db.SetMaxOpenConns(1)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}

	_, _ = db.ExecContext(ctx, "PRAGMA foreign_keys = ON;")
	return db, nil
}
