package hydrate

import (
	"sync"

	"github.com/zeebo/xxh3"
	"golang.org/x/text/cases"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// ColumnChecker verifies that a result set lines up with a table's columns.
// Column sets that passed once are remembered by fingerprint, so steady-state
// checks cost one hash.
type ColumnChecker struct {
	verified sync.Map // uint64 -> struct{}
}

var defaultChecker ColumnChecker

// CheckColumns verifies result against t using the package checker.
func CheckColumns(result []string, t *schema.Table) error {
	return defaultChecker.Check(result, t)
}

// Check reports ErrRowHydration when result does not name t's columns, in
// order. Names compare case-insensitively (Unicode case folding), since some
// drivers report column labels in a normalized case.
func (c *ColumnChecker) Check(result []string, t *schema.Table) error {
	if t == nil {
		return errs.Newf(errs.ErrRowHydration, "columns", "", "no table descriptor")
	}
	key := fingerprint(t.Name, result)
	if _, ok := c.verified.Load(key); ok {
		return nil
	}

	if len(result) != len(t.Columns) {
		return errs.Newf(errs.ErrRowHydration, "columns", t.Name,
			"result has %d columns, table maps %d", len(result), len(t.Columns))
	}
	fold := cases.Fold()
	for i, col := range t.Columns {
		if fold.String(result[i]) != fold.String(col.Name) {
			return errs.Newf(errs.ErrRowHydration, "columns", t.Name,
				"result column %d is %q, want %q", i+1, result[i], col.Name)
		}
	}
	c.verified.Store(key, struct{}{})
	return nil
}

func fingerprint(table string, cols []string) uint64 {
	n := len(table)
	for _, c := range cols {
		n += len(c) + 1
	}
	buf := make([]byte, 0, n)
	buf = append(buf, table...)
	for _, c := range cols {
		buf = append(buf, 0)
		buf = append(buf, c...)
	}
	return xxh3.Hash(buf)
}
