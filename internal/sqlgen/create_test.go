package sqlgen

import (
	"errors"
	"strings"
	"testing"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
)

/*
Unit tests for CreateTable and the dialects.

These tests use table-driven cases to validate:
  - error handling for missing table names, empty column lists and bad defaults
  - the definition order: type, NOT NULL, PRIMARY KEY, DEFAULT
  - identifier and literal quoting with escaping
  - stable whitespace, one clause per column in declaration order
*/

func userTable() *schema.Table {
	return schema.NewTable("USER").
		Int("ID", schema.PrimaryKey()).
		Text("EMAIL").
		Int("ROLE_ID", schema.Default("0")).
		Text("NAME", schema.Default("x")).
		Table()
}

// TestCreateTable validates SQL generation for happy paths and error paths.
func TestCreateTable(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		d       Dialect
		in      *schema.Table
		wantSQL string
		wantErr error
	}{
		{
			name:    "error_nil_table",
			in:      nil,
			wantErr: errs.ErrMissingTableMetadata,
		},
		{
			name:    "error_missing_table_name",
			in:      schema.NewTable("").Int("ID").Table(),
			wantErr: errs.ErrMissingTableMetadata,
		},
		{
			name:    "error_no_columns",
			in:      schema.NewTable("T").Table(),
			wantErr: errs.ErrNoColumns,
		},
		{
			name:    "error_non_numeric_integer_default",
			in:      schema.NewTable("T").Int("N", schema.Default("abc")).Table(),
			wantErr: errs.ErrInvalidDefault,
		},
		{
			name: "primary_key_column",
			in:   schema.NewTable("T").Int("ID", schema.PrimaryKey()).Table(),
			wantSQL: "CREATE TABLE IF NOT EXISTS \"T\" (\n" +
				"  \"ID\" INTEGER NOT NULL PRIMARY KEY\n" +
				");",
		},
		{
			name: "sqlite_user",
			d:    SQLite,
			in:   userTable(),
			wantSQL: "CREATE TABLE IF NOT EXISTS \"USER\" (\n" +
				"  \"ID\" INTEGER NOT NULL PRIMARY KEY,\n" +
				"  \"EMAIL\" TEXT NOT NULL,\n" +
				"  \"ROLE_ID\" INTEGER NOT NULL DEFAULT 0,\n" +
				"  \"NAME\" TEXT NOT NULL DEFAULT 'x'\n" +
				");",
		},
		{
			name: "nullable_and_escaped",
			in: schema.NewTable(`we"ird`).
				Text("NOTE", schema.Nullable(), schema.Default("it's")).
				Int("N", schema.Default(" -7 ")).
				Table(),
			wantSQL: "CREATE TABLE IF NOT EXISTS \"we\"\"ird\" (\n" +
				"  \"NOTE\" TEXT DEFAULT 'it''s',\n" +
				"  \"N\" INTEGER NOT NULL DEFAULT -7\n" +
				");",
		},
		{
			name: "empty_default_is_no_default",
			in:   schema.NewTable("T").Text("A", schema.Default("")).Table(),
			wantSQL: "CREATE TABLE IF NOT EXISTS \"T\" (\n" +
				"  \"A\" TEXT NOT NULL\n" +
				");",
		},
		{
			name: "postgres_types",
			d:    Postgres,
			in:   schema.NewTable("T").Int("ID", schema.PrimaryKey()).Text("A").Table(),
			wantSQL: "CREATE TABLE IF NOT EXISTS \"T\" (\n" +
				"  \"ID\" BIGINT NOT NULL PRIMARY KEY,\n" +
				"  \"A\" TEXT NOT NULL\n" +
				");",
		},
		{
			name: "mysql_types",
			d:    MySQL,
			in:   schema.NewTable("T").Int("ID", schema.PrimaryKey()).Text("A", schema.Length(64)).Text("B").Table(),
			wantSQL: "CREATE TABLE IF NOT EXISTS `T` (\n" +
				"  `ID` BIGINT NOT NULL PRIMARY KEY,\n" +
				"  `A` VARCHAR(64) NOT NULL,\n" +
				"  `B` VARCHAR(255) NOT NULL\n" +
				");",
		},
		{
			name: "sqlserver_guarded",
			d:    SQLServer,
			in:   schema.NewTable("T").Int("ID", schema.PrimaryKey()).Text("A", schema.Length(64)).Text("B", schema.Default("x")).Table(),
			wantSQL: "IF OBJECT_ID(N'[T]', N'U') IS NULL\n" +
				"BEGIN\n" +
				"  CREATE TABLE [T] (\n" +
				"    [ID] BIGINT NOT NULL PRIMARY KEY,\n" +
				"    [A] NVARCHAR(64) NOT NULL,\n" +
				"    [B] NVARCHAR(255) NOT NULL DEFAULT 'x'\n" +
				"  );\n" +
				"END;",
		},
		{
			name: "sqlserver_quote_in_name",
			d:    SQLServer,
			in:   schema.NewTable("O'B]R").Int("ID").Table(),
			wantSQL: "IF OBJECT_ID(N'[O''B]]R]', N'U') IS NULL\n" +
				"BEGIN\n" +
				"  CREATE TABLE [O'B]]R] (\n" +
				"    [ID] BIGINT NOT NULL\n" +
				"  );\n" +
				"END;",
		},
		{
			name:    "sqlserver_bad_default",
			d:       SQLServer,
			in:      schema.NewTable("T").Int("N", schema.Default("zero")).Table(),
			wantErr: errs.ErrInvalidDefault,
		},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CreateTable(tc.d, tc.in)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("CreateTable() error = %v, want %v", err, tc.wantErr)
				}
				if got != "" {
					t.Fatalf("CreateTable() = %q on error, want empty", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateTable() unexpected error: %v", err)
			}
			if got != tc.wantSQL {
				t.Fatalf("CreateTable() SQL mismatch\n got:\n%s\nwant:\n%s", got, tc.wantSQL)
			}
		})
	}
}

// TestCreateTableOneClausePerColumn checks that every column yields exactly
// one quoted clause, in order, and the statement ends with a single ");".
func TestCreateTableOneClausePerColumn(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 12; n++ {
		b := schema.NewTable("WIDE")
		want := make([]string, n)
		for i := 0; i < n; i++ {
			name := "C" + string(rune('A'+i))
			want[i] = `"` + name + `"`
			if i%2 == 0 {
				b.Int(name)
			} else {
				b.Text(name)
			}
		}
		sql, err := CreateTable(SQLite, b.Table())
		if err != nil {
			t.Fatalf("n=%d: CreateTable() error = %v", n, err)
		}
		if !strings.HasSuffix(sql, "\n);") || strings.Count(sql, ");") != 1 {
			t.Fatalf("n=%d: bad terminator:\n%s", n, sql)
		}

		lines := strings.Split(sql, "\n")
		body := lines[1 : len(lines)-1]
		if len(body) != n {
			t.Fatalf("n=%d: %d column clauses, want %d", n, len(body), n)
		}
		for i, line := range body {
			if !strings.HasPrefix(strings.TrimSpace(line), want[i]+" ") {
				t.Fatalf("n=%d: clause %d = %q, want column %s", n, i, line, want[i])
			}
		}
	}
}

// TestQuoteIdent verifies per-dialect identifier quoting and escaping.
func TestQuoteIdent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		d    Dialect
		in   string
		want string
	}{
		{d: SQLite, in: "name", want: `"name"`},
		{d: SQLite, in: "", want: `""`},
		{d: SQLite, in: `a"b`, want: `"a""b"`},
		{d: Postgres, in: `a"b`, want: `"a""b"`},
		{d: MySQL, in: "a`b", want: "`a``b`"},
		{d: SQLServer, in: "name", want: "[name]"},
		{d: SQLServer, in: "weird]id", want: "[weird]]id]"},
	}
	for _, tt := range tests {
		if got := tt.d.QuoteIdent(tt.in); got != tt.want {
			t.Fatalf("%s.QuoteIdent(%q) = %q, want %q", tt.d.Name(), tt.in, got, tt.want)
		}
	}
	if QuoteLiteral("o'k") != "'o''k'" {
		t.Fatalf("QuoteLiteral mismatch")
	}
}

// TestDialectFor verifies dialect lookup by name and alias.
func TestDialectFor(t *testing.T) {
	t.Parallel()

	for name, want := range map[string]string{"SQLite": "sqlite", "pgx": "postgres", " mysql ": "mysql", "mssql": "sqlserver", "SQLServer": "sqlserver"} {
		d, ok := DialectFor(name)
		if !ok || d.Name() != want {
			t.Fatalf("DialectFor(%q) = %v, %v; want %s", name, d, ok, want)
		}
	}
	if _, ok := DialectFor("oracle"); ok {
		t.Fatalf("DialectFor(oracle) ok = true")
	}
}
