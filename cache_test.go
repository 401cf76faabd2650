// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlproj_test

import (
	"runtime"
	"time"

	. "gopkg.in/check.v1"

	"github.com/canonical/sqlproj"
)

type CacheSuite struct{}

var _ = Suite(&CacheSuite{})

// triggerFinalizers runs the garbage collector until finalizers of values
// that went out of scope have run.
func triggerFinalizers() {
	for i := 0; i < 3; i++ {
		runtime.GC()
		time.Sleep(10 * time.Millisecond)
	}
}

func (s *CacheSuite) TestPreparedStatementReuse(c *C) {
	sqldb := openDB(c)
	defer sqldb.Close()
	db := sqlproj.NewDB(sqldb)

	var stmtID uint64
	// A function scope is used to "forget" the statement.
	func() {
		stmt := sqlproj.MustPrepare(`SELECT 'test'`)
		stmtID = stmt.CacheID()

		c.Assert(db.Query(nil, stmt).Run(), IsNil)
		perStmt, perDB, _, _ := sqlproj.CachedStmts(stmtID, db.CacheID())
		c.Assert(perStmt, Equals, 1)
		c.Assert(perDB, Equals, 1)

		// Running again reuses the prepared statement.
		c.Assert(db.Query(nil, stmt).Run(), IsNil)
		perStmt, perDB, _, _ = sqlproj.CachedStmts(stmtID, db.CacheID())
		c.Assert(perStmt, Equals, 1)
		c.Assert(perDB, Equals, 1)
	}()

	triggerFinalizers()
	_, perDB, stmtKnown, _ := sqlproj.CachedStmts(stmtID, db.CacheID())
	c.Assert(stmtKnown, Equals, false)
	c.Assert(perDB, Equals, 0)
}

func (s *CacheSuite) TestStatementOnSeveralDBs(c *C) {
	stmt := sqlproj.MustPrepare(`SELECT $M.x`, sqlproj.M{})

	var dbID uint64
	func() {
		sqldb1, sqldb2 := openDB(c), openDB(c)
		defer sqldb1.Close()
		defer sqldb2.Close()
		db1 := sqlproj.NewDB(sqldb1)
		db2 := sqlproj.NewDB(sqldb2, sqlproj.WithPlaceholders(sqlproj.Dollar))
		dbID = db2.CacheID()

		c.Assert(db1.Query(nil, stmt, sqlproj.M{"x": 1}).Run(), IsNil)
		c.Assert(db2.Query(nil, stmt, sqlproj.M{"x": 1}).Run(), IsNil)
		perStmt, _, _, _ := sqlproj.CachedStmts(stmt.CacheID(), dbID)
		c.Assert(perStmt, Equals, 2)
	}()

	triggerFinalizers()
	perStmt, _, _, dbKnown := sqlproj.CachedStmts(stmt.CacheID(), dbID)
	c.Assert(perStmt, Equals, 0)
	c.Assert(dbKnown, Equals, false)
}
