// Package storage opens the local client state file and exposes the stores
// built on top of it.
//
// The state file plays the role a browser tab's sessionStorage and cookie
// store play for a web front end: it keeps the pending username of a
// half-finished two-step login and the backend session cookies, so a
// restarted client can resync its session instead of logging in again.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/libraryclient/internal/client/migrations"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite"
)

const cookiePrefix = "cookie:"

// RunMigrations applies the embedded schema migrations. It is idempotent.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Open opens (creating if needed) the SQLite state file at dsn and migrates it.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// SQLite allows a single writer at a time.
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}
