package engine

import (
	"context"
	"errors"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// SelectAll returns every row of T's table. Failures are logged; the rows
// hydrated before a failure are returned.
func SelectAll[T any](ctx context.Context, e *Engine) []T {
	return SelectWhere[T](ctx, e)
}

// SelectWhere returns the rows of T's table matching every condition.
// Failures are logged; the rows hydrated before a failure are returned.
func SelectWhere[T any](ctx context.Context, e *Engine, conds ...schema.Condition) []T {
	rows, err := Query[T](ctx, e, conds...)
	if err != nil {
		e.logFailure("select", err)
	}
	return rows
}

// SelectOne returns the first row matching every condition, or false.
// Failures are logged and treated as no match.
func SelectOne[T any](ctx context.Context, e *Engine, conds ...schema.Condition) (T, bool) {
	v, ok, err := QueryOne[T](ctx, e, conds...)
	if err != nil {
		e.logFailure("select one", err)
		var zero T
		return zero, false
	}
	return v, ok
}

// SelectStatement renders the SELECT statement for T, or "" after logging
// why it cannot be rendered.
func SelectStatement[T any](e *Engine, conds ...schema.Condition) string {
	q, err := SelectSQL[T](e, conds...)
	if err != nil {
		e.logFailure("select statement", err)
		return ""
	}
	return q
}

// CreateStatement renders the CREATE TABLE statement for T, or "" after
// logging why it cannot be rendered.
func CreateStatement[T any](e *Engine) string {
	ddl, err := CreateSQL[T](e)
	if err != nil {
		e.logFailure("create statement", err)
		return ""
	}
	return ddl
}

// logFailure logs err at error level, except for a disabled engine, whose
// cause was already logged by New.
func (e *Engine) logFailure(op string, err error) {
	kind := "execution"
	switch {
	case errors.Is(err, errs.ErrDisabled):
		e.log.Debug(op+" skipped; engine disabled", "err", err)
		return
	case errs.IsMetadata(err):
		kind = "metadata"
	case errors.Is(err, errs.ErrParameterBind):
		kind = "bind"
	case errors.Is(err, errs.ErrRowHydration):
		kind = "hydration"
	case errors.Is(err, errs.ErrInvalidDefault):
		kind = "generation"
	}
	e.log.Error(op+" failed", "kind", kind, "err", err)
}
