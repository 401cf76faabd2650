// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlproj

import (
	"context"
	"database/sql"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/canonical/sqlproj/internal/expr"
)

// stmtIDCount and dbIDCount generate unique cache IDs.
var stmtIDCount uint64
var dbIDCount uint64

type dbID = uint64
type stmtID = uint64

// statementCache holds the driver prepared statements of every Statement, per
// DB. One Statement may be prepared on several databases, each with its own
// placeholder style.
//
// A finalizer on each Statement closes and forgets its prepared statements. A
// finalizer on each DB closes and forgets every statement prepared on it. The
// underlying sql.DB belongs to the caller and is left open.
//
// mutex guards both maps.
type statementCache struct {
	stmtDBCache map[stmtID]map[dbID]*sql.Stmt
	dbStmtCache map[dbID]map[stmtID]bool
	mutex       sync.RWMutex
}

func newStatementCache() *statementCache {
	return &statementCache{
		stmtDBCache: map[stmtID]map[dbID]*sql.Stmt{},
		dbStmtCache: map[dbID]map[stmtID]bool{},
	}
}

// newStatement registers a new Statement in the cache.
func (sc *statementCache) newStatement(te *expr.TypeBoundExpr) *Statement {
	cacheID := atomic.AddUint64(&stmtIDCount, 1)
	s := &Statement{te: te, cacheID: cacheID}
	sc.mutex.Lock()
	sc.stmtDBCache[cacheID] = map[dbID]*sql.Stmt{}
	sc.mutex.Unlock()
	runtime.SetFinalizer(s, sc.removeStmt)
	return s
}

// newDB registers a new DB in the cache.
func (sc *statementCache) newDB(sqldb *sql.DB) *DB {
	cacheID := atomic.AddUint64(&dbIDCount, 1)
	sc.mutex.Lock()
	sc.dbStmtCache[cacheID] = map[stmtID]bool{}
	sc.mutex.Unlock()
	db := &DB{sqldb: sqldb, cacheID: cacheID}
	runtime.SetFinalizer(db, sc.removeDB)
	return db
}

// prepareStmt returns the driver prepared statement of s on db, preparing it
// with the placeholder style of db on first use.
func (sc *statementCache) prepareStmt(ctx context.Context, db *DB, s *Statement) (*sql.Stmt, error) {
	sc.mutex.RLock()
	// A statement ID only leaves stmtDBCache in its finalizer, so it is
	// always present here.
	sqlstmt, ok := sc.stmtDBCache[s.cacheID][db.cacheID]
	sc.mutex.RUnlock()
	if ok {
		return sqlstmt, nil
	}

	sqlstmt, err := db.sqldb.PrepareContext(ctx, s.te.SQL(db.placeholder))
	if err != nil {
		return nil, err
	}
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	// Another goroutine may have prepared it in the meantime.
	if existing, ok := sc.stmtDBCache[s.cacheID][db.cacheID]; ok {
		sqlstmt.Close()
		return existing, nil
	}
	sc.stmtDBCache[s.cacheID][db.cacheID] = sqlstmt
	sc.dbStmtCache[db.cacheID][s.cacheID] = true
	return sqlstmt, nil
}

// removeStmt closes the prepared statements of s and removes it from the
// cache.
func (sc *statementCache) removeStmt(s *Statement) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	for dbCacheID, sqlstmt := range sc.stmtDBCache[s.cacheID] {
		sqlstmt.Close()
		delete(sc.dbStmtCache[dbCacheID], s.cacheID)
	}
	delete(sc.stmtDBCache, s.cacheID)
}

// removeDB closes every statement prepared on db and removes it from the
// cache.
func (sc *statementCache) removeDB(db *DB) {
	sc.mutex.Lock()
	defer sc.mutex.Unlock()
	for stmtCacheID := range sc.dbStmtCache[db.cacheID] {
		dbCache := sc.stmtDBCache[stmtCacheID]
		dbCache[db.cacheID].Close()
		delete(dbCache, db.cacheID)
	}
	delete(sc.dbStmtCache, db.cacheID)
}
