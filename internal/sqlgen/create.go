package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

// CreateTable returns an idempotent CREATE TABLE statement for t:
//
//	CREATE TABLE IF NOT EXISTS "USER" (
//	  "ID" INTEGER NOT NULL PRIMARY KEY,
//	  "ROLE_ID" INTEGER NOT NULL DEFAULT 0,
//	  "NAME" TEXT NOT NULL DEFAULT 'x'
//	);
//
// Rules:
//
//   - columns appear in declaration order;
//   - each definition is: <name> <type> [NOT NULL] [PRIMARY KEY] [DEFAULT v];
//   - an integer default must parse as a base-10 int64 and is emitted bare;
//   - a text default is emitted as a single-quoted literal;
//   - an empty default is treated as no default;
//   - the advisory column length is not emitted (except where the dialect
//     needs a sized text type).
//
// A table without a name fails with ErrMissingTableMetadata, one without
// columns with ErrNoColumns and a bad integer default with ErrInvalidDefault.
// Dialects implementing TableCreator wrap the definitions in their own
// idempotent form. On error the returned statement is empty.
func CreateTable(d Dialect, t *schema.Table) (string, error) {
	if d == nil {
		d = SQLite
	}
	if err := t.Validate(); err != nil {
		return "", err
	}

	cols := make([]string, 0, len(t.Columns))
	for _, c := range t.Columns {
		def, err := columnDef(d, t.Name, c)
		if err != nil {
			return "", err
		}
		cols = append(cols, def)
	}

	if tc, ok := d.(TableCreator); ok {
		return tc.CreateTableStmt(d.QuoteIdent(t.Name), cols), nil
	}
	stmt := fmt.Sprintf(
		"CREATE TABLE IF NOT EXISTS %s (\n  %s\n);",
		d.QuoteIdent(t.Name),
		strings.Join(cols, ",\n  "),
	)
	return stmt, nil
}

func columnDef(d Dialect, table string, c schema.Column) (string, error) {
	name := strings.TrimSpace(c.Name)
	if name == "" {
		return "", errs.Newf(errs.ErrMissingTableMetadata, "create", table, "column with empty name")
	}

	var sb strings.Builder
	sb.WriteString(d.QuoteIdent(name))
	sb.WriteByte(' ')
	sb.WriteString(d.ColumnType(c))

	if c.NotNull {
		sb.WriteString(" NOT NULL")
	}
	if c.PrimaryKey {
		sb.WriteString(" PRIMARY KEY")
	}
	if c.HasDefault() {
		lit, err := defaultLiteral(c)
		if err != nil {
			return "", errs.New(errs.ErrInvalidDefault, "create", table, err)
		}
		sb.WriteString(" DEFAULT ")
		sb.WriteString(lit)
	}
	return sb.String(), nil
}

// defaultLiteral renders the column default as a SQL literal.
func defaultLiteral(c schema.Column) (string, error) {
	v := *c.Default
	if c.Type == schema.TypeInteger {
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return "", fmt.Errorf("column %s: default %q is not an integer", c.Name, v)
		}
		return strconv.FormatInt(n, 10), nil
	}
	return QuoteLiteral(v), nil
}

// QuoteLiteral returns s as a single-quoted SQL string literal.
func QuoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
