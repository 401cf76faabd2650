// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package database opens the configured SQL database and wraps it in a
// sqlproj.DB using the placeholder style of its driver.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/canonical/sqlproj"
	"github.com/canonical/sqlproj/internal/config"
)

// driver describes how to open one kind of database.
type driver struct {
	placeholder sqlproj.Placeholder
	// memoryDSN returns the DSN of a fresh in-memory database. It is nil for
	// drivers that need an explicit DSN.
	memoryDSN func() string
	// open returns the database and a function releasing anything besides
	// the sql.DB itself, or nil.
	open func(ctx context.Context, dsn string) (*sql.DB, func() error, error)
}

func sqlOpener(name string) func(context.Context, string) (*sql.DB, func() error, error) {
	return func(_ context.Context, dsn string) (*sql.DB, func() error, error) {
		sqldb, err := sql.Open(name, dsn)
		return sqldb, nil, err
	}
}

var drivers = map[string]driver{
	"sqlite3": {
		placeholder: sqlproj.Question,
		memoryDSN:   MemoryDSN,
		open:        sqlOpener("sqlite3"),
	},
	"sqlite": {
		placeholder: sqlproj.Question,
		// Write timestamps in a layout SQLite's date functions understand.
		memoryDSN: func() string { return MemoryDSN() + "&_time_format=sqlite" },
		open:      sqlOpener("sqlite"),
	},
	"pgx": {
		placeholder: sqlproj.Dollar,
		open:        sqlOpener("pgx"),
	},
}

// Drivers returns the supported driver names, sorted.
func Drivers() []string {
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// MemoryDSN returns the DSN of a new, uniquely named, in-memory SQLite
// database. Every connection of a pool opened with it shares the same data,
// which lives until the last connection is closed.
func MemoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

// DB is an open database.
type DB struct {
	*sqlproj.DB
	// Driver is the name the database was opened with.
	Driver string
	closer func() error
}

// Open opens and pings the database described by cfg.
func Open(ctx context.Context, cfg config.Config) (*DB, error) {
	d, ok := drivers[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported driver %q, need one of: %s", cfg.Driver, strings.Join(Drivers(), ", "))
	}
	dsn := cfg.DSN
	if dsn == "" {
		if d.memoryDSN == nil {
			return nil, fmt.Errorf("driver %q needs a DSN", cfg.Driver)
		}
		dsn = d.memoryDSN()
	}

	sqldb, closer, err := d.open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", cfg.Driver, err)
	}
	db := &DB{
		DB:     sqlproj.NewDB(sqldb, sqlproj.WithPlaceholders(d.placeholder)),
		Driver: cfg.Driver,
		closer: closer,
	}
	if err := sqldb.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", cfg.Driver, err)
	}
	return db, nil
}

// Close closes the database.
func (db *DB) Close() error {
	err := db.PlainDB().Close()
	if db.closer != nil {
		if cerr := db.closer(); err == nil {
			err = cerr
		}
	}
	return err
}
