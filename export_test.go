// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlproj

func (s *Statement) CacheID() uint64 {
	return s.cacheID
}

func (db *DB) CacheID() uint64 {
	return db.cacheID
}

// CachedStmts reports the number of driver statements prepared for a
// Statement and the number prepared on a DB.
func CachedStmts(stmtID, dbID uint64) (perStmt int, perDB int, stmtKnown bool, dbKnown bool) {
	stmtCache.mutex.RLock()
	defer stmtCache.mutex.RUnlock()
	dbs, stmtKnown := stmtCache.stmtDBCache[stmtID]
	stmts, dbKnown := stmtCache.dbStmtCache[dbID]
	return len(dbs), len(stmts), stmtKnown, dbKnown
}
