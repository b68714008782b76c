package engine

import (
	"context"
	"time"

	"ormlite/internal/errs"
	"ormlite/internal/logging"
	"ormlite/internal/metrics"
)

// Outcome classifies the affected-row count of a statement.
type Outcome uint8

const (
	// Unknown means the driver reported a negative count or none at all.
	Unknown Outcome = iota
	// NoRowsAffected means the statement succeeded and touched no rows.
	NoRowsAffected
	// Affected means at least one row was touched.
	Affected
)

// String returns the outcome name.
func (o Outcome) String() string {
	switch o {
	case NoRowsAffected:
		return "no_rows_affected"
	case Affected:
		return "affected"
	default:
		return "unknown"
	}
}

// ExecResult is the result of a passthrough statement.
type ExecResult struct {
	Outcome Outcome
	// Rows is the affected-row count; -1 when Outcome is Unknown.
	Rows int64
}

func classify(n int64) ExecResult {
	switch {
	case n > 0:
		return ExecResult{Outcome: Affected, Rows: n}
	case n == 0:
		return ExecResult{Outcome: NoRowsAffected}
	default:
		return ExecResult{Outcome: Unknown, Rows: -1}
	}
}

// Exec runs a statement that returns no rows (DDL, INSERT, UPDATE, DELETE)
// verbatim on a fresh handle. Parameters are not supported.
//
// A driver that cannot report the affected-row count yields Unknown, not an
// error.
func (e *Engine) Exec(ctx context.Context, query string) (res ExecResult, err error) {
	start := time.Now()
	defer func() {
		metrics.RecordOp("exec", "", err, time.Since(start))
	}()

	if err := e.disabled("exec"); err != nil {
		return ExecResult{Outcome: Unknown, Rows: -1}, err
	}
	logging.Trace(ctx, e.log, "exec", "sql", query)

	h, err := e.opener.Open(ctx)
	if err != nil {
		return ExecResult{Outcome: Unknown, Rows: -1}, errs.New(errs.ErrSQLExecution, "open", "", err)
	}
	defer e.closeQuietly("handle", h)

	r, err := h.ExecContext(ctx, query)
	if err != nil {
		return ExecResult{Outcome: Unknown, Rows: -1}, errs.New(errs.ErrSQLExecution, "exec", "", err)
	}
	n, err := r.RowsAffected()
	if err != nil {
		e.log.Debug("rows affected unavailable", "err", err)
		return ExecResult{Outcome: Unknown, Rows: -1}, nil
	}
	res = classify(n)
	if res.Rows > 0 {
		metrics.RecordRows("", metrics.RowsAffected, res.Rows)
	}
	return res, nil
}

// Execute is the lenient form of Exec: the outcome is logged and returned,
// and a failure is logged and reported as Unknown.
func (e *Engine) Execute(ctx context.Context, query string) ExecResult {
	res, err := e.Exec(ctx, query)
	if err != nil {
		e.logFailure("execute", err)
		return res
	}
	switch res.Outcome {
	case Affected:
		e.log.Info("statement executed", "rows_affected", res.Rows)
	case NoRowsAffected:
		e.log.Info("statement executed; no rows affected")
	default:
		e.log.Warn("statement executed; affected rows unknown")
	}
	return res
}
