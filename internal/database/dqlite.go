// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

//go:build dqlite

package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/canonical/go-dqlite/app"

	"github.com/canonical/sqlproj"
)

// dqliteDatabase is the name of the database opened on the node.
const dqliteDatabase = "sqlproj"

func init() {
	// The DSN of a dqlite database is the data directory of a single local
	// node.
	drivers["dqlite"] = driver{
		placeholder: sqlproj.Question,
		open:        openDqlite,
	}
}

func openDqlite(ctx context.Context, dir string) (*sql.DB, func() error, error) {
	node, err := app.New(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot start dqlite node: %w", err)
	}
	if err := node.Ready(ctx); err != nil {
		node.Close()
		return nil, nil, fmt.Errorf("dqlite node not ready: %w", err)
	}
	sqldb, err := node.Open(ctx, dqliteDatabase)
	if err != nil {
		node.Close()
		return nil, nil, err
	}
	closer := func() error {
		node.Handover(context.Background())
		return node.Close()
	}
	return sqldb, closer, nil
}
