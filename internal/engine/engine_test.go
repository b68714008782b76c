package engine

// -----------------------------------------------------------------------------
// Engine tests
// -----------------------------------------------------------------------------
//
// These tests drive the engine against a mocked database/sql driver. The
// mock pool is wrapped with storage.Shared so the per-call handle Close does
// not close it. SQL is matched exactly after whitespace normalization.

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"ormlite/internal/errs"
	"ormlite/internal/schema"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"
	_ "ormlite/internal/storage/sqlite"
)

type person struct {
	ID   int    `orm:"ID,pk"`
	Name string `orm:"NAME"`
}

func (person) TableName() string { return "PERSON" }
func (person) RowConstructor() any {
	return func(id int, name string) person { return person{ID: id, Name: name} }
}

// untabled has columns and a constructor but no table marker.
type untabled struct {
	ID int `orm:"ID"`
}

func (untabled) RowConstructor() any { return func(id int) untabled { return untabled{ID: id} } }

type badDefault struct {
	N int `orm:"N,default=zero"`
}

func (badDefault) TableName() string   { return "BAD_DEFAULT" }
func (badDefault) RowConstructor() any { return func(n int) badDefault { return badDefault{N: n} } }

// auditLog is a write-only table: it has no row constructor.
type auditLog struct {
	ID  int    `orm:"ID,pk"`
	Msg string `orm:"MSG"`
}

func (auditLog) TableName() string { return "AUDIT_LOG" }

const (
	selectPeople = `SELECT "ID", "NAME" FROM "PERSON"`
	selectByID   = `SELECT "ID", "NAME" FROM "PERSON" WHERE 1=1 AND "ID" = ?`
)

// newMockEngine returns an engine over a sqlmock pool and a buffer holding
// its log output.
func newMockEngine(t *testing.T, opts ...Option) (*Engine, sqlmock.Sqlmock, *bytes.Buffer) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	opts = append([]Option{
		WithOpener(storage.Shared(db, sqlgen.SQLite)),
		WithLogger(logger),
	}, opts...)
	return New(Config{}, opts...), mock, &buf
}

// TestQueryAll hydrates every row and closes the statement and rows.
func TestQueryAll(t *testing.T) {
	t.Parallel()

	e, mock, _ := newMockEngine(t)
	mock.ExpectPrepare(selectPeople).WillBeClosed().
		ExpectQuery().WithoutArgs().RowsWillBeClosed().
		WillReturnRows(sqlmock.NewRows([]string{"ID", "NAME"}).
			AddRow(int64(1), "Alice").
			AddRow(int64(2), "Bob"))

	got, err := Query[person](context.Background(), e)
	require.NoError(t, err)
	require.Equal(t, []person{{1, "Alice"}, {2, "Bob"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryEmpty verifies that zero rows is an empty result, not an error.
func TestQueryEmpty(t *testing.T) {
	t.Parallel()

	e, mock, _ := newMockEngine(t)
	mock.ExpectPrepare(selectPeople).ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"ID", "NAME"}))

	got := SelectAll[person](context.Background(), e)
	require.Empty(t, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryWhereBindsInOrder verifies that condition values reach the driver
// in condition order.
func TestQueryWhereBindsInOrder(t *testing.T) {
	t.Parallel()

	e, mock, _ := newMockEngine(t)
	mock.ExpectPrepare(`SELECT "ID", "NAME" FROM "PERSON" WHERE 1=1 AND "ID" = ? AND "NAME" = ?`).
		ExpectQuery().WithArgs(int64(7), "Alice").
		WillReturnRows(sqlmock.NewRows([]string{"ID", "NAME"}).AddRow(int64(7), "Alice"))

	got := SelectWhere[person](context.Background(), e, schema.EqInt("ID", 7), schema.EqText("NAME", "Alice"))
	require.Equal(t, []person{{7, "Alice"}}, got)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryOne covers the none, one and many cases.
func TestQueryOne(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		rows     [][]any
		wantOK   bool
		want     person
		wantWarn bool
	}{
		{name: "none", rows: nil},
		{name: "one", rows: [][]any{{int64(1), "Alice"}}, wantOK: true, want: person{1, "Alice"}},
		{
			name:     "two returns the first",
			rows:     [][]any{{int64(1), "Alice"}, {int64(1), "Alicia"}},
			wantOK:   true,
			want:     person{1, "Alice"},
			wantWarn: true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, mock, logs := newMockEngine(t)
			rows := sqlmock.NewRows([]string{"ID", "NAME"})
			for _, r := range tt.rows {
				rows.AddRow(r[0], r[1])
			}
			mock.ExpectPrepare(selectByID).ExpectQuery().WithArgs(int64(1)).WillReturnRows(rows)

			got, ok := SelectOne[person](context.Background(), e, schema.EqInt("ID", 1))
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.want, got)
			require.Equal(t, tt.wantWarn, bytes.Contains(logs.Bytes(), []byte("level=WARN")), logs.String())
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestQueryHydrationFailureKeepsPartialRows verifies the abort-on-first
// failure policy in both API flavors.
func TestQueryHydrationFailureKeepsPartialRows(t *testing.T) {
	t.Parallel()

	e, mock, logs := newMockEngine(t)
	for i := 0; i < 2; i++ {
		mock.ExpectPrepare(selectPeople).ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"ID", "NAME"}).
				AddRow(int64(1), "Alice").
				AddRow("not a number", "Bob").
				AddRow(int64(3), "Carol"))
	}

	got, err := Query[person](context.Background(), e)
	require.ErrorIs(t, err, errs.ErrRowHydration)
	require.Equal(t, []person{{1, "Alice"}}, got)

	lenient := SelectAll[person](context.Background(), e)
	require.Equal(t, []person{{1, "Alice"}}, lenient)
	require.Contains(t, logs.String(), "kind=hydration")
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryExecutionErrors verifies that driver failures surface as
// ErrSQLExecution and that the lenient API returns nothing.
func TestQueryExecutionErrors(t *testing.T) {
	t.Parallel()

	e, mock, logs := newMockEngine(t)
	mock.ExpectPrepare(selectPeople).WillReturnError(errors.New("no such table: PERSON"))
	mock.ExpectPrepare(selectPeople).ExpectQuery().WillReturnError(errors.New("disk I/O error"))

	_, err := Query[person](context.Background(), e)
	require.ErrorIs(t, err, errs.ErrSQLExecution)

	require.Nil(t, SelectAll[person](context.Background(), e))
	require.Contains(t, logs.String(), "disk I/O error")
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryColumnMismatch verifies the result column check.
func TestQueryColumnMismatch(t *testing.T) {
	t.Parallel()

	e, mock, _ := newMockEngine(t)
	mock.ExpectPrepare(selectPeople).ExpectQuery().
		WillReturnRows(sqlmock.NewRows([]string{"ID"}).AddRow(int64(1)))

	_, err := Query[person](context.Background(), e)
	require.ErrorIs(t, err, errs.ErrRowHydration)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestQueryBindError verifies that an unset condition value fails before
// the query runs.
func TestQueryBindError(t *testing.T) {
	t.Parallel()

	e, mock, _ := newMockEngine(t)
	mock.ExpectPrepare(selectByID)

	_, err := Query[person](context.Background(), e, schema.On(schema.IntColumn("ID"), schema.Value{}))
	require.ErrorIs(t, err, errs.ErrParameterBind)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestMissingTableMetadata verifies that a type without a table marker
// fails only the call: strict calls report it, lenient calls log it and
// return empty results or statements.
func TestMissingTableMetadata(t *testing.T) {
	t.Parallel()

	e, mock, logs := newMockEngine(t)

	_, err := Query[untabled](context.Background(), e)
	require.ErrorIs(t, err, errs.ErrMissingTableMetadata)

	require.Empty(t, SelectAll[untabled](context.Background(), e))
	require.Empty(t, SelectStatement[untabled](e))
	require.Empty(t, CreateStatement[untabled](e))
	require.Contains(t, logs.String(), "kind=metadata")
	require.Contains(t, logs.String(), errs.ErrMissingTableMetadata.Error())
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestStatements verifies rendering without execution.
func TestStatements(t *testing.T) {
	t.Parallel()

	e, _, _ := newMockEngine(t)

	q, err := SelectSQL[person](e, schema.EqInt("ID", 1))
	require.NoError(t, err)
	require.Equal(t, "SELECT \"ID\", \"NAME\"\n  FROM \"PERSON\"\n WHERE 1=1\n   AND \"ID\" = ?", q)

	ddl := CreateStatement[*person](e)
	require.Equal(t, "CREATE TABLE IF NOT EXISTS \"PERSON\" (\n  \"ID\" INTEGER NOT NULL PRIMARY KEY,\n  \"NAME\" TEXT NOT NULL\n);", ddl)

	_, err = CreateSQL[badDefault](e)
	require.ErrorIs(t, err, errs.ErrInvalidDefault)

	tbl, err := Schema[person](e)
	require.NoError(t, err)
	require.Equal(t, "PERSON", tbl.Name)
}

// TestWriteOnlyTable verifies that a type without a row constructor still
// gets its table created, and fails only when it is selected.
func TestWriteOnlyTable(t *testing.T) {
	t.Parallel()

	const createAudit = `CREATE TABLE IF NOT EXISTS "AUDIT_LOG" ( "ID" INTEGER NOT NULL PRIMARY KEY, "MSG" TEXT NOT NULL );`

	e, mock, _ := newMockEngine(t, WithRegistry(schema.NewRegistry(auditLog{}, person{})))

	ddl, err := CreateSQL[auditLog](e)
	require.NoError(t, err)
	require.Equal(t, "CREATE TABLE IF NOT EXISTS \"AUDIT_LOG\" (\n  \"ID\" INTEGER NOT NULL PRIMARY KEY,\n  \"MSG\" TEXT NOT NULL\n);", ddl)

	stmts, err := e.CreateStatements()
	require.NoError(t, err)
	require.Len(t, stmts, 2)

	mock.ExpectExec(createAudit).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "PERSON" ( "ID" INTEGER NOT NULL PRIMARY KEY, "NAME" TEXT NOT NULL );`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	require.NoError(t, e.EnsureSchema(context.Background()))

	_, err = Query[auditLog](context.Background(), e)
	require.ErrorIs(t, err, errs.ErrMissingConstructorMetadata)
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestExecOutcomes verifies the affected-row classification.
func TestExecOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result func(sqlmock.Sqlmock)
		want   ExecResult
	}{
		{
			name: "affected",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec("DELETE FROM PERSON").WillReturnResult(sqlmock.NewResult(0, 2))
			},
			want: ExecResult{Outcome: Affected, Rows: 2},
		},
		{
			name: "none affected",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec("DELETE FROM PERSON").WillReturnResult(sqlmock.NewResult(0, 0))
			},
			want: ExecResult{Outcome: NoRowsAffected},
		},
		{
			name: "count unavailable",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec("DELETE FROM PERSON").WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))
			},
			want: ExecResult{Outcome: Unknown, Rows: -1},
		},
		{
			name: "negative count",
			result: func(m sqlmock.Sqlmock) {
				m.ExpectExec("DELETE FROM PERSON").WillReturnResult(sqlmock.NewResult(0, -1))
			},
			want: ExecResult{Outcome: Unknown, Rows: -1},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			e, mock, _ := newMockEngine(t)
			tt.result(mock)
			got, err := e.Exec(context.Background(), "DELETE FROM PERSON")
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

// TestExecuteNeverFails verifies that the lenient form logs a failed
// statement and reports Unknown.
func TestExecuteNeverFails(t *testing.T) {
	t.Parallel()

	e, mock, logs := newMockEngine(t)
	mock.ExpectExec("DROP TABLE NOPE").WillReturnError(errors.New("no such table: NOPE"))

	_, err := e.Exec(context.Background(), "DROP TABLE NOPE")
	require.Error(t, err)

	mock.ExpectExec("DROP TABLE NOPE").WillReturnError(errors.New("no such table: NOPE"))
	got := e.Execute(context.Background(), "DROP TABLE NOPE")
	require.Equal(t, Unknown, got.Outcome)
	require.Contains(t, logs.String(), "execute failed")
	require.Equal(t, "unknown", got.Outcome.String())
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestEnsureSchemaContinuesPastFailures verifies that one bad type does not
// stop the others.
func TestEnsureSchemaContinuesPastFailures(t *testing.T) {
	t.Parallel()

	reg := schema.NewRegistry(untabled{}, badDefault{}, person{})
	e, mock, _ := newMockEngine(t, WithRegistry(reg))
	mock.ExpectExec(`CREATE TABLE IF NOT EXISTS "PERSON" ( "ID" INTEGER NOT NULL PRIMARY KEY, "NAME" TEXT NOT NULL );`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := e.EnsureSchema(context.Background())
	require.ErrorIs(t, err, errs.ErrMissingTableMetadata)
	require.ErrorIs(t, err, errs.ErrInvalidDefault)
	require.NoError(t, mock.ExpectationsWereMet())

	stmts, err := e.CreateStatements()
	require.Error(t, err)
	require.Len(t, stmts, 1)
}

// TestDisabledEngine verifies that construction never fails and that every
// operation on a disabled engine is refused.
func TestDisabledEngine(t *testing.T) {
	t.Parallel()

	missing := filepath.Join(t.TempDir(), "missing.db")
	tests := []struct {
		name  string
		cfg   storage.Config
		cause error
	}{
		{name: "empty path", cfg: storage.Config{Kind: "sqlite"}, cause: errs.ErrMissingDatabasePath},
		{name: "missing file", cfg: storage.Config{Kind: "sqlite", Path: missing}, cause: errs.ErrDatabaseFileNotFound},
		{name: "unknown kind", cfg: storage.Config{Kind: "oracle"}, cause: errs.ErrUnknownStorage},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			e := New(Config{Storage: tt.cfg, InitTables: true},
				WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))
			require.ErrorIs(t, e.Err(), tt.cause)
			require.Contains(t, buf.String(), "engine disabled")

			_, err := Query[person](context.Background(), e)
			require.ErrorIs(t, err, errs.ErrDisabled)
			require.ErrorIs(t, err, tt.cause)

			_, err = e.Exec(context.Background(), "SELECT 1")
			require.ErrorIs(t, err, errs.ErrDisabled)
			require.ErrorIs(t, e.EnsureSchema(context.Background()), errs.ErrDisabled)

			require.Nil(t, SelectAll[person](context.Background(), e))
			_, ok := SelectOne[person](context.Background(), e)
			require.False(t, ok)
			require.Equal(t, Unknown, e.Execute(context.Background(), "SELECT 1").Outcome)

			_, statErr := os.Stat(missing)
			require.True(t, os.IsNotExist(statErr))
		})
	}
}
