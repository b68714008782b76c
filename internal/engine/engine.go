// Package engine is the orchestrator of the mapping pipeline. It turns a
// mapped Go type into SQL, runs it against a scoped database handle and
// hydrates the result rows back into values of that type.
//
// Two API flavors share one implementation. The strict functions (Query,
// QueryOne, Exec, EnsureSchema) return explicit errors. The lenient ones
// (SelectAll, SelectWhere, SelectOne, Execute) log failures and return empty
// or partial results, so a caller iterating many types is never interrupted.
package engine

import (
	"context"
	"io"
	"log/slog"
	"reflect"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"
)

// Config configures an Engine.
type Config struct {
	Storage storage.Config
	// InitTables runs EnsureSchema while the engine is constructed.
	InitTables bool
}

// Option customizes an Engine.
type Option func(*Engine)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

// WithRegistry sets the mapped types EnsureSchema creates tables for.
func WithRegistry(r *schema.Registry) Option {
	return func(e *Engine) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithOpener replaces the configured storage backend with o. Config.Storage
// is then ignored.
func WithOpener(o storage.Opener) Option {
	return func(e *Engine) { e.opener = o }
}

// WithCache shares a schema cache between engines.
func WithCache(c *schema.Cache) Option {
	return func(e *Engine) {
		if c != nil {
			e.cache = c
		}
	}
}

// WithDialect overrides the dialect reported by the storage backend.
func WithDialect(d sqlgen.Dialect) Option {
	return func(e *Engine) { e.dialect = d }
}

// Engine maps Go types onto tables of one database.
type Engine struct {
	log      *slog.Logger
	registry *schema.Registry
	cache    *schema.Cache
	opener   storage.Opener
	dialect  sqlgen.Dialect

	// err is set when the storage configuration was rejected; the engine is
	// disabled for its whole life.
	err error
}

// New builds an engine. It never fails: a storage configuration that does
// not validate (missing path, missing file, unknown kind) is logged and
// leaves the engine disabled. Err reports the cause and every operation
// afterwards fails with ErrDisabled.
func New(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		log:      slog.Default(),
		registry: schema.NewRegistry(),
		cache:    schema.NewCache(),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.opener == nil {
		o, err := storage.New(cfg.Storage)
		if err != nil {
			e.err = err
			e.log.Error("storage rejected; engine disabled",
				"kind", cfg.Storage.Kind, "path", cfg.Storage.Path, "err", err)
			return e
		}
		e.opener = o
	}
	if e.dialect == nil {
		e.dialect = e.opener.Dialect()
	}

	if cfg.InitTables {
		if err := e.EnsureSchema(context.Background()); err != nil {
			e.log.Error("init tables", "err", err)
		}
	}
	return e
}

// Err returns the reason the engine is disabled, or nil.
func (e *Engine) Err() error { return e.err }

// Dialect returns the SQL dialect statements are rendered in.
func (e *Engine) Dialect() sqlgen.Dialect {
	if e.dialect == nil {
		return sqlgen.SQLite
	}
	return e.dialect
}

// Registry returns the registry EnsureSchema walks.
func (e *Engine) Registry() *schema.Registry { return e.registry }

func (e *Engine) disabled(op string) error {
	if e.err == nil {
		return nil
	}
	return errs.New(errs.ErrDisabled, op, "", e.err)
}

func (e *Engine) table(rt reflect.Type) (*schema.Table, error) {
	return e.cache.Lookup(rt)
}

// closeQuietly closes c and logs a failure at debug level.
func (e *Engine) closeQuietly(what string, c io.Closer) {
	if err := c.Close(); err != nil {
		e.log.Debug("close", "what", what, "err", err)
	}
}
