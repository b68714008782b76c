// Package hydrate turns result rows into typed values by feeding each row,
// column by column, into a mapped type's row constructor.
package hydrate

import (
	"database/sql"
	"fmt"
	"math"
	"strconv"
	"time"

	"ormlite/internal/errs"
)

// Cursor is a forward-only view over a result set. Ordinals are 1-based.
// A NULL column reads as the zero value of the requested type.
type Cursor interface {
	Next() bool
	Err() error
	Width() int
	ReadInt(ord int) (int32, error)
	ReadLong(ord int) (int64, error)
	ReadString(ord int) (string, error)
	ReadAny(ord int) (any, error)
}

// row implements the typed reads over the current row's raw values.
type row struct {
	vals []any
}

func (r *row) Width() int { return len(r.vals) }

func (r *row) at(ord int) (any, error) {
	if ord < 1 || ord > len(r.vals) {
		return nil, errs.Newf(errs.ErrRowHydration, "read", "", "ordinal %d out of range 1..%d", ord, len(r.vals))
	}
	return r.vals[ord-1], nil
}

func (r *row) ReadInt(ord int) (int32, error) {
	n, err := r.ReadLong(ord)
	if err != nil {
		return 0, err
	}
	if n < math.MinInt32 || n > math.MaxInt32 {
		return 0, errs.Newf(errs.ErrRowHydration, "read", "", "column %d: %d overflows int32", ord, n)
	}
	return int32(n), nil
}

func (r *row) ReadLong(ord int) (int64, error) {
	v, err := r.at(ord)
	if err != nil {
		return 0, err
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, errs.Newf(errs.ErrRowHydration, "read", "", "column %d: %w", ord, err)
	}
	return n, nil
}

func (r *row) ReadString(ord int) (string, error) {
	v, err := r.at(ord)
	if err != nil {
		return "", err
	}
	return toString(v), nil
}

func (r *row) ReadAny(ord int) (any, error) {
	v, err := r.at(ord)
	if err != nil {
		return nil, err
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

// RowsCursor adapts *sql.Rows. Each row is scanned once into raw values;
// typed reads convert from those.
type RowsCursor struct {
	row
	rows *sql.Rows
	cols []string
	ptrs []any
	err  error
}

// NewRowsCursor wraps rows. The caller keeps ownership of rows and must
// close it.
func NewRowsCursor(rows *sql.Rows) (*RowsCursor, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, errs.New(errs.ErrSQLExecution, "columns", "", err)
	}
	c := &RowsCursor{
		rows: rows,
		cols: cols,
		row:  row{vals: make([]any, len(cols))},
		ptrs: make([]any, len(cols)),
	}
	for i := range c.ptrs {
		c.ptrs[i] = &c.vals[i]
	}
	return c, nil
}

// Columns returns the result column names.
func (c *RowsCursor) Columns() []string { return c.cols }

// Next advances to the next row and scans it.
func (c *RowsCursor) Next() bool {
	if c.err != nil || !c.rows.Next() {
		return false
	}
	for i := range c.vals {
		c.vals[i] = nil
	}
	if err := c.rows.Scan(c.ptrs...); err != nil {
		c.err = errs.New(errs.ErrRowHydration, "scan", "", err)
		return false
	}
	// Drivers may reuse []byte buffers between rows.
	for i, v := range c.vals {
		if b, ok := v.([]byte); ok {
			c.vals[i] = append([]byte(nil), b...)
		}
	}
	return true
}

// Err returns the scan or iteration error, if any.
func (c *RowsCursor) Err() error {
	if c.err != nil {
		return c.err
	}
	if err := c.rows.Err(); err != nil {
		return errs.New(errs.ErrSQLExecution, "next", "", err)
	}
	return nil
}

// SliceCursor iterates over in-memory rows.
type SliceCursor struct {
	row
	data [][]any
	pos  int
}

// NewSliceCursor returns a cursor over the given rows.
func NewSliceCursor(rows ...[]any) *SliceCursor {
	return &SliceCursor{data: rows}
}

// Next advances to the next row.
func (c *SliceCursor) Next() bool {
	if c.pos >= len(c.data) {
		return false
	}
	c.vals = c.data[c.pos]
	c.pos++
	return true
}

// Err always returns nil.
func (c *SliceCursor) Err() error { return nil }

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case float32:
		return toInt64(float64(x))
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return parseInt(string(x))
	case string:
		return parseInt(x)
	default:
		return 0, fmt.Errorf("cannot read %T as integer", v)
	}
}

func parseInt(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not an integer", s)
	}
	return n, nil
}

func toString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(x)
	}
}
