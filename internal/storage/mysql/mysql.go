// Package mysql implements the MySQL storage backend using
// github.com/go-sql-driver/mysql. Registration happens in init; callers
// select it with storage.Config{Kind: "mysql", DSN: ...}.
package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	driver "github.com/go-sql-driver/mysql"

	"ormlite/internal/errs"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"
)

const pingTimeout = 5 * time.Second

// sqlOpen is a test hook that points to sql.Open by default.
var sqlOpen = sql.Open

// Backend is the MySQL storage.Backend.
type Backend struct{}

var _ storage.Backend = Backend{}

func init() {
	storage.Register("mysql", Backend{})
}

// Dialect returns the MySQL dialect.
func (Backend) Dialect() sqlgen.Dialect { return sqlgen.MySQL }

// Validate requires a DSN the driver can parse.
func (Backend) Validate(cfg storage.Config) error {
	_, err := FormatDSN(cfg.DSN)
	return err
}

// FormatDSN parses dsn and returns its canonical form. ANSI_QUOTES is not
// assumed; generated SQL quotes identifiers with backticks.
func FormatDSN(dsn string) (string, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return "", errs.Newf(errs.ErrInvalidDSN, "validate", "mysql", "DSN must not be empty")
	}
	mc, err := driver.ParseDSN(dsn)
	if err != nil {
		return "", errs.New(errs.ErrInvalidDSN, "validate", "mysql", err)
	}
	return mc.FormatDSN(), nil
}

// Open connects and checks connectivity.
func (Backend) Open(ctx context.Context, cfg storage.Config) (*sql.DB, error) {
	dsn, err := FormatDSN(cfg.DSN)
	if err != nil {
		return nil, err
	}
	db, err := sqlOpen("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("mysql: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql: ping: %w", err)
	}
	return db, nil
}
