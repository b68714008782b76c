// Package sqlgen renders the SQL text of the mapping pipeline: CREATE TABLE
// statements for schema bootstrapping and single-table SELECT statements
// with an AND-chain of equality predicates.
//
// Rendering is pure. Nothing here touches a database; dialect differences
// (identifier quoting, placeholders, column types) are captured by Dialect.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"

	"ormlite/internal/schema"
)

// Dialect captures the per-database details of the generated SQL.
type Dialect interface {
	// Name returns the dialect name, e.g. "sqlite".
	Name() string
	// QuoteIdent quotes a single identifier, doubling embedded quote
	// characters.
	QuoteIdent(id string) string
	// Placeholder returns the bind marker for the 1-based parameter n.
	Placeholder(n int) string
	// ColumnType returns the SQL type used for a column in CREATE TABLE.
	ColumnType(c schema.Column) string
}

var (
	// SQLite uses "ident" and ? markers.
	SQLite Dialect = sqliteDialect{}
	// Postgres uses "ident" and $n markers.
	Postgres Dialect = postgresDialect{}
	// MySQL uses `ident` and ? markers.
	MySQL Dialect = mysqlDialect{}
	// SQLServer uses [ident] and @pN markers.
	SQLServer Dialect = sqlserverDialect{}
)

// TableCreator is implemented by dialects without CREATE TABLE IF NOT EXISTS.
// CreateTableStmt returns an idempotent statement creating the table named
// by the quoted identifier from the rendered column definitions.
type TableCreator interface {
	CreateTableStmt(quotedName string, cols []string) string
}

var dialects = map[string]Dialect{
	"sqlite":     SQLite,
	"sqlite3":    SQLite,
	"postgres":   Postgres,
	"postgresql": Postgres,
	"pgx":        Postgres,
	"mysql":      MySQL,
	"sqlserver":  SQLServer,
	"mssql":      SQLServer,
}

// DialectFor returns the dialect registered under name (case-insensitive).
func DialectFor(name string) (Dialect, bool) {
	d, ok := dialects[strings.ToLower(strings.TrimSpace(name))]
	return d, ok
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string                { return "sqlite" }
func (sqliteDialect) QuoteIdent(id string) string { return quoteWith(id, '"') }
func (sqliteDialect) Placeholder(int) string      { return "?" }

func (sqliteDialect) ColumnType(c schema.Column) string {
	if c.Type == schema.TypeInteger {
		return "INTEGER"
	}
	return "TEXT"
}

type postgresDialect struct{}

func (postgresDialect) Name() string                { return "postgres" }
func (postgresDialect) QuoteIdent(id string) string { return quoteWith(id, '"') }
func (postgresDialect) Placeholder(n int) string    { return "$" + strconv.Itoa(n) }

func (postgresDialect) ColumnType(c schema.Column) string {
	if c.Type == schema.TypeInteger {
		return "BIGINT"
	}
	return "TEXT"
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                { return "mysql" }
func (mysqlDialect) QuoteIdent(id string) string { return quoteWith(id, '`') }
func (mysqlDialect) Placeholder(int) string      { return "?" }

// ColumnType maps text onto VARCHAR: MySQL cannot index or default a TEXT
// column. The advisory length sizes it, 255 when unset.
func (mysqlDialect) ColumnType(c schema.Column) string {
	if c.Type == schema.TypeInteger {
		return "BIGINT"
	}
	n := c.Length
	if n <= 0 {
		n = 255
	}
	return "VARCHAR(" + strconv.Itoa(n) + ")"
}

type sqlserverDialect struct{}

func (sqlserverDialect) Name() string                { return "sqlserver" }
func (sqlserverDialect) Placeholder(n int) string    { return "@p" + strconv.Itoa(n) }
func (sqlserverDialect) QuoteIdent(id string) string { return "[" + strings.ReplaceAll(id, "]", "]]") + "]" }

// ColumnType sizes text as NVARCHAR: NVARCHAR(MAX) cannot be a key. The
// advisory length is used, 255 when unset.
func (sqlserverDialect) ColumnType(c schema.Column) string {
	if c.Type == schema.TypeInteger {
		return "BIGINT"
	}
	n := c.Length
	if n <= 0 {
		n = 255
	}
	return "NVARCHAR(" + strconv.Itoa(n) + ")"
}

// CreateTableStmt guards the CREATE with an OBJECT_ID lookup:
//
//	IF OBJECT_ID(N'[USER]', N'U') IS NULL
//	BEGIN
//	  CREATE TABLE [USER] (
//	    [ID] BIGINT NOT NULL PRIMARY KEY
//	  );
//	END;
func (sqlserverDialect) CreateTableStmt(quotedName string, cols []string) string {
	return fmt.Sprintf(
		"IF OBJECT_ID(N%s, N'U') IS NULL\nBEGIN\n  CREATE TABLE %s (\n    %s\n  );\nEND;",
		QuoteLiteral(quotedName),
		quotedName,
		strings.Join(cols, ",\n    "),
	)
}

func quoteWith(id string, q byte) string {
	s := string(q)
	return s + strings.ReplaceAll(id, s, s+s) + s
}
