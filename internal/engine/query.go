package engine

import (
	"context"
	"reflect"
	"time"

	"ormlite/internal/bind"
	"ormlite/internal/errs"
	"ormlite/internal/hydrate"
	"ormlite/internal/logging"
	"ormlite/internal/metrics"
	"ormlite/internal/schema"
	"ormlite/internal/sqlgen"
)

// Query selects the rows of T's table matching every condition (all rows
// when there are none) and hydrates them through T's row constructor.
//
// Zero rows is an empty result, not an error. When hydration fails on a
// row, the loop stops and the rows built before it are returned together
// with the error.
func Query[T any](ctx context.Context, e *Engine, conds ...schema.Condition) (out []T, err error) {
	start := time.Now()
	tableName := ""
	defer func() {
		metrics.RecordOp("select", tableName, err, time.Since(start))
	}()

	if err := e.disabled("select"); err != nil {
		return nil, err
	}
	t, err := e.table(reflect.TypeOf((*T)(nil)).Elem())
	if err != nil {
		return nil, err
	}
	tableName = t.Name
	tgt, err := t.HydrationTarget()
	if err != nil {
		return nil, err
	}

	q, err := sqlgen.Select(e.Dialect(), t, conds)
	if err != nil {
		return nil, err
	}
	logging.Trace(ctx, e.log, "select", "table", t.Name, "sql", q, "conditions", len(conds))

	out, err = fetch[T](ctx, e, t, tgt, q, conds)
	metrics.RecordRows(t.Name, metrics.RowsHydrated, int64(len(out)))
	logging.Trace(ctx, e.log, "select done", "table", t.Name, "rows", len(out), "err", err)
	return out, err
}

// QueryOne returns the first row matching every condition. ok is false when
// nothing matched. More than one match is not an error: the first row is
// returned and a warning is logged, since the conditions were expected to
// name a unique key.
func QueryOne[T any](ctx context.Context, e *Engine, conds ...schema.Condition) (v T, ok bool, err error) {
	rows, err := Query[T](ctx, e, conds...)
	if err != nil {
		return v, false, err
	}
	if len(rows) == 0 {
		return v, false, nil
	}
	if len(rows) > 1 {
		e.log.Warn("select one matched multiple rows; returning the first",
			"type", reflect.TypeOf((*T)(nil)).Elem().String(), "rows", len(rows), "conditions", len(conds))
	}
	return rows[0], true, nil
}

// fetch runs q on a fresh handle. The statement, the rows and the handle are
// released on every path.
func fetch[T any](ctx context.Context, e *Engine, t *schema.Table, tgt *schema.Target, q string, conds []schema.Condition) ([]T, error) {
	h, err := e.opener.Open(ctx)
	if err != nil {
		return nil, errs.New(errs.ErrSQLExecution, "open", t.Name, err)
	}
	defer e.closeQuietly("handle", h)

	stmt, err := h.PrepareContext(ctx, q)
	if err != nil {
		return nil, errs.New(errs.ErrSQLExecution, "prepare", t.Name, err)
	}
	defer e.closeQuietly("statement", stmt)

	args, err := bind.Args(conds)
	if err != nil {
		return nil, err
	}

	rows, err := stmt.QueryContext(ctx, args...)
	if err != nil {
		return nil, errs.New(errs.ErrSQLExecution, "query", t.Name, err)
	}
	defer e.closeQuietly("rows", rows)

	cur, err := hydrate.NewRowsCursor(rows)
	if err != nil {
		return nil, err
	}
	if err := hydrate.CheckColumns(cur.Columns(), t); err != nil {
		return nil, err
	}

	return hydrate.All[T](cur, tgt)
}
