// Package postgres implements the Postgres storage backend using pgx v5
// through its database/sql adapter. Registration happens in init; callers
// select it with storage.Config{Kind: "postgres", DSN: ...}.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"ormlite/internal/errs"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"
)

const pingTimeout = 5 * time.Second

// openDB is a test hook that points to stdlib.OpenDB by default.
var openDB = func(cc pgx.ConnConfig) *sql.DB { return stdlib.OpenDB(cc) }

// Backend is the Postgres storage.Backend.
type Backend struct{}

var _ storage.Backend = Backend{}

func init() {
	storage.Register("postgres", Backend{})
	storage.Register("postgresql", Backend{})
}

// Dialect returns the Postgres dialect.
func (Backend) Dialect() sqlgen.Dialect { return sqlgen.Postgres }

// Validate requires a DSN that pgx can parse.
func (Backend) Validate(cfg storage.Config) error {
	_, err := parse(cfg)
	return err
}

func parse(cfg storage.Config) (*pgx.ConnConfig, error) {
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, errs.Newf(errs.ErrInvalidDSN, "validate", "postgres", "DSN must not be empty")
	}
	cc, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, errs.New(errs.ErrInvalidDSN, "validate", "postgres", err)
	}
	return cc, nil
}

// Open connects and checks connectivity.
func (Backend) Open(ctx context.Context, cfg storage.Config) (*sql.DB, error) {
	cc, err := parse(cfg)
	if err != nil {
		return nil, err
	}
	db := openDB(*cc)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}
	return db, nil
}
