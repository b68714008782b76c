package sqlgen

import (
	"strings"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// Select returns a SELECT statement over every column of t. With
// conditions, a WHERE 1=1 anchor is followed by one AND clause per
// condition, in order, each ending in the dialect's placeholder:
//
//	SELECT "ID", "NAME"
//	  FROM "USER"
//	 WHERE 1=1
//	   AND "ID" = ?
//
// Placeholders are numbered 1..len(conds) in condition order, matching the
// positions the binder uses.
func Select(d Dialect, t *schema.Table, conds []schema.Condition) (string, error) {
	if d == nil {
		d = SQLite
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	var sb strings.Builder
	sb.WriteString("SELECT ")
	for i, c := range t.Columns {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return "", errs.Newf(errs.ErrMissingTableMetadata, "select", t.Name, "column %d has an empty name", i+1)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(d.QuoteIdent(name))
	}
	sb.WriteString("\n  FROM ")
	sb.WriteString(d.QuoteIdent(t.Name))

	if len(conds) == 0 {
		return sb.String(), nil
	}

	sb.WriteString("\n WHERE 1=1")
	for i, c := range conds {
		name := strings.TrimSpace(c.Column.Name)
		if name == "" {
			return "", errs.Newf(errs.ErrMissingTableMetadata, "select", t.Name, "condition %d has no column", i+1)
		}
		sb.WriteString("\n   AND ")
		sb.WriteString(d.QuoteIdent(name))
		sb.WriteString(" = ")
		sb.WriteString(d.Placeholder(i + 1))
	}
	return sb.String(), nil
}
