package testutil

import (
	"context"
	"database/sql"
	devenv "sustechcourse-backend/dev/env"
	"sustechcourse-backend/lib/export"
	"testing"
)

type StoreParams struct {
	// if unspecified, it will use `:memory:`
	DbPath string
}

type StoreResult struct {
	DB    *sql.DB
	Store export.Store
}

// SetupStore opens a sqlite database for a test, the database is closed when
// the test ends.
func SetupStore(t testing.TB, params StoreParams) StoreResult {
	dbpath := ":memory:"
	if params.DbPath != "" && params.DbPath != ":memory:" {
		var err error
		dbpath, err = devenv.ResolvePath(params.DbPath)
		if err != nil {
			t.Fatal(err)
		}
	}
	db, err := export.OpenDB(export.DriverSqlite, dbpath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	store, err := export.NewStore(context.Background(), db)
	if err != nil {
		t.Fatal(err)
	}
	return StoreResult{DB: db, Store: store}
}
