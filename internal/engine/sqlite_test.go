package engine

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"ormlite/internal/demo"
	"ormlite/internal/logging"
	"ormlite/internal/schema"
	"ormlite/internal/storage"
)

// TestSQLiteRoundTrip runs the whole pipeline against a real SQLite file:
// schema bootstrap, inserts through Exec and typed reads back.
func TestSQLiteRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "app.db")
	e := New(Config{
		Storage:    storage.Config{Kind: "sqlite", Path: path, Create: true},
		InitTables: true,
	}, WithRegistry(demo.Registry()), WithLogger(logging.Discard()))
	require.NoError(t, e.Err())
	require.Equal(t, "sqlite", e.Dialect().Name())

	// Bootstrapping twice is harmless.
	require.NoError(t, e.EnsureSchema(ctx))

	res, err := e.Exec(ctx, `INSERT INTO "ROLE" ("ID", "NAME") VALUES (1, 'admin'), (2, 'user')`)
	require.NoError(t, err)
	require.Equal(t, ExecResult{Outcome: Affected, Rows: 2}, res)

	res = e.Execute(ctx, `INSERT INTO "USER" ("ID", "EMAIL", "PASS", "NAME") VALUES (1, 'alice@example.com', 'x', 'Alice')`)
	require.Equal(t, Affected, res.Outcome)
	res = e.Execute(ctx, `INSERT INTO "USER" ("ID", "EMAIL", "PASS", "NAME", "ROLE_ID", "EXPIRES") VALUES (2, 'bob@example.com', 'y', 'Bob', 2, 1767225600)`)
	require.Equal(t, Affected, res.Outcome)

	users, err := Query[demo.User](ctx, e)
	require.NoError(t, err)
	require.Equal(t, []demo.User{
		{ID: 1, Email: "alice@example.com", Password: "x", Name: "Alice"},
		{ID: 2, Email: "bob@example.com", Password: "y", Name: "Bob", RoleID: 2, Expires: 1767225600},
	}, users)

	bob, ok, err := QueryOne[*demo.User](ctx, e, schema.EqText("EMAIL", "bob@example.com"))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Bob", bob.Name)

	_, ok = SelectOne[demo.User](ctx, e, schema.EqInt("ID", 42))
	require.False(t, ok)

	roles := SelectWhere[demo.Role](ctx, e, schema.EqInt("ID", 2))
	require.Equal(t, []demo.Role{{ID: 2, Name: "user"}}, roles)

	res, err = e.Exec(ctx, `DELETE FROM "ROLE" WHERE "ID" = 99`)
	require.NoError(t, err)
	require.Equal(t, NoRowsAffected, res.Outcome)
}
