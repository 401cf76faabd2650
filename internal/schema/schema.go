// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package schema creates and upgrades the post table.
package schema

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrations embed.FS

// target returns the migrate driver for a database opened with the given
// database/sql driver name.
func target(db *sql.DB, driver string) (database.Driver, error) {
	switch driver {
	case "sqlite3", "dqlite":
		return migratesqlite3.WithInstance(db, &migratesqlite3.Config{})
	case "sqlite":
		return migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case "pgx":
		return migratepgx.WithInstance(db, &migratepgx.Config{})
	}
	return nil, fmt.Errorf("no migrations for driver %q", driver)
}

// Migrate applies every pending migration to db. A database that is already
// up to date is not an error. db is left open.
func Migrate(db *sql.DB, driver string) (err error) {
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot migrate schema: %w", err)
		}
	}()

	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return err
	}
	defer src.Close()

	dbDriver, err := target(db, driver)
	if err != nil {
		return err
	}
	// m.Close is not called as it would close db.
	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// Version returns the schema version of db, 0 when no migration has been
// applied.
func Version(db *sql.DB, driver string) (uint, error) {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return 0, err
	}
	defer src.Close()
	dbDriver, err := target(db, driver)
	if err != nil {
		return 0, err
	}
	m, err := migrate.NewWithInstance("iofs", src, driver, dbDriver)
	if err != nil {
		return 0, err
	}
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}
	return version, nil
}
