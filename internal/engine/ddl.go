package engine

import (
	"context"
	"errors"
	"reflect"
	"time"

	"ormlite/internal/metrics"
	"ormlite/internal/schema"
	"ormlite/internal/sqlgen"
)

// EnsureSchema creates the table of every registered type, in registration
// order, with CREATE TABLE IF NOT EXISTS. A type that fails extraction,
// rendering or execution does not stop the others; all failures are joined
// into the returned error.
func (e *Engine) EnsureSchema(ctx context.Context) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOp("ensure_schema", "", err, time.Since(start))
	}()

	if err := e.disabled("ensure_schema"); err != nil {
		return err
	}

	tables, err := e.registry.Tables(e.cache)
	var errl []error
	if err != nil {
		errl = append(errl, err)
	}
	for _, t := range tables {
		ddl, err := sqlgen.CreateTable(e.Dialect(), t)
		if err != nil {
			errl = append(errl, err)
			continue
		}
		if _, err := e.Exec(ctx, ddl); err != nil {
			errl = append(errl, err)
			continue
		}
		e.log.Debug("table ensured", "table", t.Name)
	}
	return errors.Join(errl...)
}

// Schema returns the table metadata of T. The descriptor may lack a row
// constructor; only Query needs one.
func Schema[T any](e *Engine) (*schema.Table, error) {
	return e.table(reflect.TypeOf((*T)(nil)).Elem())
}

// SelectSQL renders the SELECT statement Query would run for T and conds.
func SelectSQL[T any](e *Engine, conds ...schema.Condition) (string, error) {
	t, err := Schema[T](e)
	if err != nil {
		return "", err
	}
	return sqlgen.Select(e.Dialect(), t, conds)
}

// CreateSQL renders the CREATE TABLE statement EnsureSchema would run for T.
func CreateSQL[T any](e *Engine) (string, error) {
	t, err := Schema[T](e)
	if err != nil {
		return "", err
	}
	return sqlgen.CreateTable(e.Dialect(), t)
}

// CreateStatements renders the DDL of every registered type. Failures are
// joined; the statements that rendered are still returned.
func (e *Engine) CreateStatements() ([]string, error) {
	tables, err := e.registry.Tables(e.cache)
	var errl []error
	if err != nil {
		errl = append(errl, err)
	}
	out := make([]string, 0, len(tables))
	for _, t := range tables {
		ddl, err := sqlgen.CreateTable(e.Dialect(), t)
		if err != nil {
			errl = append(errl, err)
			continue
		}
		out = append(out, ddl)
	}
	return out, errors.Join(errl...)
}
