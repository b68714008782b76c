// Package all wires all built-in storage backends into the storage factory.
//
// This package exists purely for side effects: importing it (even as a blank
// import) causes the init functions of each concrete storage backend to run,
// which in turn register them with the storage package.
//
// Importing it makes the following storage kinds available at runtime:
//
//   - "sqlite"    (ormlite/internal/storage/sqlite)
//   - "postgres"  (ormlite/internal/storage/postgres)
//   - "mysql"     (ormlite/internal/storage/mysql)
//   - "sqlserver" (ormlite/internal/storage/mssql)
//
// Typical usage (in cmd/ormlite/main.go or a similar wiring layer):
//
//	import (
//	    _ "ormlite/internal/storage/all" // enable all built-in backends
//
//	    "ormlite/internal/engine"
//	    "ormlite/internal/storage"
//	)
//
//	e := engine.New(engine.Config{
//	    Storage: storage.Config{Kind: "sqlite", Path: "app.db"},
//	})
//	if err := e.Err(); err != nil {
//	    // storage could not be validated; every operation is disabled
//	}
//
// A binary that supports only a subset of backends can blank-import the
// backend packages it needs instead of this one.
package all

import (
	_ "ormlite/internal/storage/mssql"
	_ "ormlite/internal/storage/mysql"
	_ "ormlite/internal/storage/postgres"
	_ "ormlite/internal/storage/sqlite"
)
