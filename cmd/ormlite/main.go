package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"ormlite/internal/bind"
	"ormlite/internal/config"
	"ormlite/internal/demo"
	"ormlite/internal/engine"
	"ormlite/internal/logging"
	"ormlite/internal/schema"
	"ormlite/internal/sqlgen"
	"ormlite/internal/storage"

	// register all backends with the storage factory.
	// config specifies which to use but we need to build in support for all of them.
	_ "ormlite/internal/storage/all"
)

const usage = `usage: ormlite [flags] <command> [args]

commands:
  init                       create the demo tables if they do not exist
  users [-id N] [-where c=v] list users, or the user with the given ID
  roles [-where c=v]         list roles
  exec <sql>                 run one statement that returns no rows
  ddl                        print the CREATE TABLE statements
  validate                   lint the configuration, check the storage and exit

-where may be repeated; every condition must hold.

flags:
`

// main loads a .env file when present and hands over to run.
func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("dotenv: %v", err)
	}
	os.Exit(run(context.Background(), os.Args[1:], os.Stdout, os.Stderr))
}

// run executes one CLI invocation and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("ormlite", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	var (
		cfgPath     = fs.String("config", "", "config file (.json, .yaml or .yml)")
		kind        = fs.String("kind", "", "storage kind: sqlite, postgres, mysql or sqlserver (overrides config)")
		dbPath      = fs.String("db", "", "sqlite database path (overrides config)")
		dsn         = fs.String("dsn", "", "connection string for server backends (overrides config)")
		create      = fs.Bool("create", false, "create the sqlite database file if it is missing")
		verbose     = fs.Bool("v", false, "log SQL and per-call tracing")
		quiet       = fs.Bool("q", false, "discard all log output")
		metricsName = fs.String("metrics-backend", "", "metrics backend: none, prometheus or datadog (overrides config)")
		gatewayURL  = fs.String("pushgateway-url", "", "Pushgateway base URL (overrides config)")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg := config.Default()
	if *cfgPath != "" {
		c, err := config.Load(*cfgPath)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return 1
		}
		cfg = c
	}
	cfg, err := config.FromEnv(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return 1
	}

	// Flags win over environment and file.
	setIf(&cfg.Storage.Kind, *kind)
	setIf(&cfg.Storage.Path, *dbPath)
	setIf(&cfg.Storage.DSN, *dsn)
	setIf(&cfg.Metrics.Backend, *metricsName)
	setIf(&cfg.Metrics.PushgatewayURL, *gatewayURL)
	if *create {
		cfg.Storage.Create = true
	}
	if *verbose {
		cfg.Log.Level = "trace"
	}

	logger := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format}, stderr)
	if *quiet {
		logger = logging.Discard()
	}

	cmd, rest := fs.Arg(0), fs.Args()[1:]
	if cmd == "validate" {
		return validate(cfg, *cfgPath, stdout, stderr)
	}

	flush := setupMetrics(cfg.Metrics, logger)
	defer flush()

	opts := []engine.Option{
		engine.WithRegistry(demo.Registry()),
		engine.WithLogger(logger),
	}
	if d, ok := sqlgen.DialectFor(cfg.Storage.Kind); ok {
		opts = append(opts, engine.WithDialect(d))
	}
	e := engine.New(engine.Config{
		Storage:    cfg.Storage.StorageConfig(),
		InitTables: cfg.InitTables,
	}, opts...)

	switch cmd {
	case "ddl":
		return printDDL(e, stdout, stderr)
	case "init":
		if err := e.EnsureSchema(ctx); err != nil {
			fmt.Fprintf(stderr, "init: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "schema ready (%d tables)\n", e.Registry().Len())
		return 0
	case "users":
		return listUsers(ctx, e, rest, stdout, stderr)
	case "roles":
		return listRoles(ctx, e, rest, stdout, stderr)
	case "exec":
		if len(rest) == 0 {
			fmt.Fprintln(stderr, "exec: missing SQL statement")
			return 2
		}
		res, err := e.Exec(ctx, strings.Join(rest, " "))
		if err != nil {
			fmt.Fprintf(stderr, "exec: %v\n", err)
			return 1
		}
		fmt.Fprintf(stdout, "%s (%d)\n", res.Outcome, res.Rows)
		return 0
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}
}

func setIf(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

// validate prints every config issue and fails on errors. A clean
// configuration is then checked against its storage backend: the database
// file must exist (unless it will be created) and the DSN must parse.
func validate(cfg config.Config, path string, stdout, stderr io.Writer) int {
	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if path == "" {
		path = "(defaults)"
	}
	if config.HasErrors(issues) {
		fmt.Fprintf(stderr, "configuration is invalid: %s\n", path)
		return 1
	}
	if !cfg.Storage.Create {
		if err := storage.Validate(cfg.Storage.StorageConfig()); err != nil {
			fmt.Fprintf(stderr, "error: storage: %v\n", err)
			fmt.Fprintf(stderr, "configuration is invalid: %s\n", path)
			return 1
		}
	}
	fmt.Fprintf(stdout, "configuration is valid: %s\n", path)
	return 0
}

func printDDL(e *engine.Engine, stdout, stderr io.Writer) int {
	stmts, err := e.CreateStatements()
	for i, s := range stmts {
		if i > 0 {
			fmt.Fprintln(stdout)
		}
		fmt.Fprintln(stdout, s)
	}
	if err != nil {
		fmt.Fprintf(stderr, "ddl: %v\n", err)
		return 1
	}
	return 0
}

func listUsers(ctx context.Context, e *engine.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("users", flag.ContinueOnError)
	fs.SetOutput(stderr)
	id := fs.String("id", "", "only the user with this ID")
	var where whereFlag
	fs.Var(&where, "where", "column=value condition (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	conds, err := whereConds[demo.User](e, where)
	if err != nil {
		fmt.Fprintf(stderr, "users: %v\n", err)
		return 2
	}

	if *id == "" {
		users, err := engine.Query[demo.User](ctx, e, conds...)
		if err != nil {
			fmt.Fprintf(stderr, "users: %v\n", err)
			return 1
		}
		for _, u := range users {
			fmt.Fprintln(stdout, u)
		}
		return 0
	}

	n, err := strconv.ParseInt(*id, 10, 64)
	if err != nil {
		fmt.Fprintf(stderr, "users: -id %q is not an integer\n", *id)
		return 2
	}
	conds = append([]schema.Condition{schema.EqInt("ID", n)}, conds...)
	u, ok, err := engine.QueryOne[demo.User](ctx, e, conds...)
	if err != nil {
		fmt.Fprintf(stderr, "users: %v\n", err)
		return 1
	}
	if !ok {
		fmt.Fprintf(stderr, "users: no user with ID %d\n", n)
		return 1
	}
	fmt.Fprintln(stdout, u)
	return 0
}

func listRoles(ctx context.Context, e *engine.Engine, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("roles", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var where whereFlag
	fs.Var(&where, "where", "column=value condition (repeatable)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	conds, err := whereConds[demo.Role](e, where)
	if err != nil {
		fmt.Fprintf(stderr, "roles: %v\n", err)
		return 2
	}

	roles, err := engine.Query[demo.Role](ctx, e, conds...)
	if err != nil {
		fmt.Fprintf(stderr, "roles: %v\n", err)
		return 1
	}
	for _, r := range roles {
		fmt.Fprintln(stdout, r)
	}
	return 0
}

// whereFlag collects repeated -where column=value arguments.
type whereFlag []string

func (w *whereFlag) String() string { return strings.Join(*w, ",") }

func (w *whereFlag) Set(v string) error {
	*w = append(*w, v)
	return nil
}

// whereConds resolves column=value pairs against the columns of T. A value
// for an integer column must parse as a base-10 integer; anything else binds
// as text.
func whereConds[T any](e *engine.Engine, pairs []string) ([]schema.Condition, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	t, err := engine.Schema[T](e)
	if err != nil {
		return nil, err
	}

	cols := make([]schema.Column, len(pairs))
	raw := make([]any, len(pairs))
	for i, p := range pairs {
		name, val, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("-where %q: want column=value", p)
		}
		col, ok := t.Column(strings.TrimSpace(name))
		if !ok {
			return nil, fmt.Errorf("-where %q: table %s has no column %q", p, t.Name, strings.TrimSpace(name))
		}
		raw[i] = val
		if col.Type == schema.TypeInteger {
			n, err := strconv.ParseInt(strings.TrimSpace(val), 10, 64)
			if err != nil {
				return nil, fmt.Errorf("-where %q: column %s needs an integer", p, col.Name)
			}
			raw[i] = n
		}
		cols[i] = col
	}

	vals, err := bind.Values(raw...)
	if err != nil {
		return nil, err
	}
	conds := make([]schema.Condition, len(vals))
	for i, v := range vals {
		conds[i] = schema.On(cols[i], v)
	}
	return conds, nil
}

// loggerOrDefault is used by helpers that may run before the logger exists.
func loggerOrDefault(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.Default()
	}
	return l
}
