package cache

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

// openForMigration opens the sqlite file at path and points goose at
// the embedded migration set without applying anything, for use by the
// standalone migration runner CLI (cmd/ormc-migrate) which drives goose
// operations directly rather than through Open's "always migrate to
// latest" behavior.
func openForMigration(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cache: opening sqlite database: %w", err)
	}
	db.SetMaxOpenConns(1)

	goose.SetBaseFS(embedMigrations)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("cache: setting goose dialect: %w", err)
	}
	return db, nil
}

// MigrateUp applies every pending migration.
func MigrateUp(path string) error {
	db, err := openForMigration(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Up(db, "migrations")
}

// MigrateDown rolls back the most recently applied migration.
func MigrateDown(path string) error {
	db, err := openForMigration(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Down(db, "migrations")
}

// MigrateStatus prints the applied/pending status of every migration
// to goose's configured log output.
func MigrateStatus(path string) error {
	db, err := openForMigration(path)
	if err != nil {
		return err
	}
	defer db.Close()
	return goose.Status(db, "migrations")
}
