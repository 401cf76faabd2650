// Copyright 2023 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

package sqlproj

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/canonical/sqlproj/internal/expr"
	"github.com/canonical/sqlproj/projection"
)

// M is a convenience type that can be used in input expressions to pass
// values referenced by their key. M is not a special type, any named map type
// with string keys can be used.
//
// Example:
//
//	stmt := sqlproj.MustPrepare("UPDATE post SET title = $M.title WHERE id = $M.id", sqlproj.M{})
//	err := db.Query(ctx, stmt, sqlproj.M{"id": 1, "title": "Hello"}).Run()
type M map[string]any

var ErrNoRows = sql.ErrNoRows
var ErrTXDone = sql.ErrTxDone

// tracerName identifies the spans recorded by this package.
const tracerName = "github.com/canonical/sqlproj"

// Placeholder is the query parameter syntax of a database.
type Placeholder = expr.Placeholder

const (
	// Question is the "?" placeholder used by SQLite and dqlite.
	Question = expr.Question
	// Dollar is the "$1", "$2", ... placeholder used by PostgreSQL.
	Dollar = expr.Dollar
)

// stmtCache stores the driver prepared statements associated to the
// Statement objects.
var stmtCache = newStatementCache()

// Statement represents a parsed statement ready to be run on a database.
// A statement can be used with any [DB].
type Statement struct {
	// cacheID is used to look up the driver prepared statements associated with
	// this Statement.
	cacheID uint64
	// te is the type bound query. It generates the SQL for each placeholder
	// style and the query parameters from the input arguments.
	te *expr.TypeBoundExpr
}

// Prepare validates the input expressions in the query and generates a
// [Statement].
// The type samples must contain an instance of every type mentioned in the
// input expressions of the query. These are used only for type information.
func Prepare(query string, typeSamples ...any) (*Statement, error) {
	parser := expr.NewParser()
	parsedExpr, err := parser.Parse(query)
	if err != nil {
		return nil, err
	}
	typedExpr, err := parsedExpr.BindTypes(typeSamples...)
	if err != nil {
		return nil, err
	}

	return stmtCache.newStatement(typedExpr), nil
}

// MustPrepare is the same as [Prepare] except that it panics on error.
func MustPrepare(query string, typeSamples ...any) *Statement {
	s, err := Prepare(query, typeSamples...)
	if err != nil {
		panic(err)
	}
	return s
}

// Option configures a [DB].
type Option func(*DB)

// WithPlaceholders sets the placeholder syntax used when generating SQL for
// the database. The default is [Question].
func WithPlaceholders(ph Placeholder) Option {
	return func(db *DB) {
		db.placeholder = ph
	}
}

// WithTracer sets the tracer used to record query spans. The default is the
// tracer of the global OpenTelemetry provider.
func WithTracer(tracer trace.Tracer) Option {
	return func(db *DB) {
		db.tracer = tracer
	}
}

type DB struct {
	// cacheID is used to look up the cached driver prepared statements prepared
	// on this database.
	cacheID uint64
	// sqldb is the underlying database/sql DB object.
	sqldb       *sql.DB
	placeholder Placeholder
	tracer      trace.Tracer
}

// NewDB creates a new [DB] from a [sql.DB].
func NewDB(sqldb *sql.DB, opts ...Option) *DB {
	if sqldb == nil {
		return nil
	}
	db := stmtCache.newDB(sqldb)
	db.tracer = otel.Tracer(tracerName)
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// PlainDB returns the underlying database object.
func (db *DB) PlainDB() *sql.DB {
	return db.sqldb
}

// Query represents a query on a database. It is designed to be run once.
type Query struct {
	// stmt returns the driver prepared statement to run the query with.
	stmt   func(context.Context) (*sql.Stmt, error)
	ctx    context.Context
	err    error
	pq     *expr.PrimedQuery
	sql    string
	tracer trace.Tracer
}

// Query builds a new query from a context, a [Statement] and the input
// arguments. The query is run on the database when one of [Query.Iter],
// [Query.Run], [Query.Exec], [GetAll] or [GetOne] is executed.
func (db *DB) Query(ctx context.Context, s *Statement, inputArgs ...any) *Query {
	if ctx == nil {
		ctx = context.Background()
	}

	pq, err := s.te.BindInputs(inputArgs...)
	if err != nil {
		return &Query{ctx: ctx, err: err}
	}

	stmt := func(innerCtx context.Context) (*sql.Stmt, error) {
		return stmtCache.prepareStmt(innerCtx, db, s)
	}
	return &Query{stmt: stmt, ctx: ctx, pq: pq, sql: pq.SQL(db.placeholder), tracer: db.tracer}
}

// start opens the span covering one execution of the query.
func (q *Query) start(op string) (context.Context, trace.Span) {
	return q.tracer.Start(q.ctx, "sqlproj."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attribute.String("db.query.text", q.sql)),
	)
}

// endSpan records err, if any, and ends the span.
func endSpan(span trace.Span, err error) {
	if err != nil && !errors.Is(err, ErrNoRows) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Run is used to run a query on a database and disregard any results.
func (q *Query) Run() error {
	_, err := q.Exec()
	return err
}

// Exec runs a query that returns no rows, such as an INSERT, and returns the
// [Outcome] of its execution.
func (q *Query) Exec() (outcome *Outcome, err error) {
	if q.err != nil {
		return nil, q.err
	}
	ctx, span := q.start("exec")
	defer func() { endSpan(span, err) }()

	stmt, err := q.stmt(ctx)
	if err != nil {
		return nil, err
	}
	result, err := stmt.ExecContext(ctx, q.pq.Params()...)
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err == nil {
		span.SetAttributes(attribute.Int64("db.rows_affected", n))
	}
	return &Outcome{result: result}, nil
}

// Iter returns an [Iterator] to iterate through the results row by row.
// [Iterator.Close] must be run once iteration is finished.
func (q *Query) Iter() *Iterator {
	if q.err != nil {
		return &Iterator{err: q.err}
	}

	ctx, span := q.start("query")
	stmt, err := q.stmt(ctx)
	var rows *sql.Rows
	if err == nil {
		rows, err = stmt.QueryContext(ctx, q.pq.Params()...)
	}
	var cols []string
	if err == nil {
		cols, err = rows.Columns()
		if err != nil {
			rows.Close()
		}
	}
	if err != nil {
		endSpan(span, err)
		return &Iterator{err: err}
	}
	return &Iterator{rows: rows, cols: cols, span: span}
}

// Iterator is used to iterate over the results of the query.
type Iterator struct {
	rows    *sql.Rows
	cols    []string
	err     error
	span    trace.Span
	count   int64
	started bool
}

// Next prepares the next row for [Iterator.Row]. If an error occurs during
// iteration it will be returned with [Iterator.Close].
func (iter *Iterator) Next() bool {
	iter.started = true
	if iter.err != nil || iter.rows == nil {
		return false
	}
	if !iter.rows.Next() {
		return false
	}
	iter.count++
	return true
}

// Columns returns the column names of the result, in row order.
func (iter *Iterator) Columns() []string {
	cols := make([]string, len(iter.cols))
	copy(cols, iter.cols)
	return cols
}

// Row reads the values of the row prepared by the previous [Iterator.Next]
// call. Byte slices are copied so the row remains valid after the next call
// to Next.
func (iter *Iterator) Row() (row projection.Row, err error) {
	if iter.err != nil {
		return nil, iter.err
	}
	defer func() {
		if err != nil {
			err = fmt.Errorf("cannot get result: %s", err)
		}
	}()
	if !iter.started {
		return nil, fmt.Errorf("cannot call Row before Next")
	}
	if iter.rows == nil {
		return nil, fmt.Errorf("iteration ended")
	}

	row = make(projection.Row, len(iter.cols))
	ptrs := make([]any, len(iter.cols))
	for i := range row {
		ptrs[i] = &row[i]
	}
	if err := iter.rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return row, nil
}

// Close finishes the iteration and returns any errors encountered. Close can
// be called multiple times on the [Iterator] and the same error will be
// returned.
func (iter *Iterator) Close() error {
	iter.started = true
	if iter.rows == nil {
		return iter.err
	}
	err := iter.rows.Err()
	if cerr := iter.rows.Close(); err == nil {
		err = cerr
	}
	iter.rows = nil
	if iter.span != nil {
		iter.span.SetAttributes(attribute.Int64("db.rows_returned", iter.count))
		endSpan(iter.span, err)
		iter.span = nil
	}
	if err != nil {
		iter.err = err
	}
	return err
}

// Outcome holds metadata about executed queries.
type Outcome struct {
	result sql.Result
}

// Result returns a [sql.Result] containing information about the query
// execution. If no result is set then Result returns nil.
func (o *Outcome) Result() sql.Result {
	return o.result
}

// TX represents a transaction on the database.
type TX struct {
	sqltx *sql.Tx
	db    *DB
	done  int32
}

func (tx *TX) isDone() bool {
	return atomic.LoadInt32(&tx.done) == 1
}

func (tx *TX) setDone() error {
	if !atomic.CompareAndSwapInt32(&tx.done, 0, 1) {
		return ErrTXDone
	}
	return nil
}

// Begin starts a transaction. A transaction must be ended
// with a [TX.Commit] or [TX.Rollback].
func (db *DB) Begin(ctx context.Context, opts *TXOptions) (*TX, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	sqltx, err := db.sqldb.BeginTx(ctx, opts.plainTXOptions())
	if err != nil {
		return nil, err
	}
	return &TX{sqltx: sqltx, db: db}, nil
}

// Transaction runs fn inside a new transaction. The transaction is committed
// if fn returns nil and rolled back if fn returns an error or panics; a panic
// is re-raised after the rollback. fn must not commit or roll back tx itself.
func (db *DB) Transaction(ctx context.Context, fn func(context.Context, *TX) error) (err error) {
	tx, err := db.Begin(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w (rollback failed: %s)", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit transaction: %w", err)
	}
	return nil
}

// Commit commits the transaction.
func (tx *TX) Commit() error {
	err := tx.setDone()
	if err == nil {
		err = tx.sqltx.Commit()
	}
	return err
}

// Rollback aborts the transaction.
func (tx *TX) Rollback() error {
	err := tx.setDone()
	if err == nil {
		err = tx.sqltx.Rollback()
	}
	return err
}

// TXOptions holds the transaction options to be used in [DB.Begin].
type TXOptions struct {
	// Isolation is the transaction isolation level.
	// If zero, the driver or database's default level is used.
	Isolation sql.IsolationLevel
	ReadOnly  bool
}

func (txopts *TXOptions) plainTXOptions() *sql.TxOptions {
	if txopts == nil {
		return nil
	}
	return &sql.TxOptions{Isolation: txopts.Isolation, ReadOnly: txopts.ReadOnly}
}

// Query builds a new query from a context, a [Statement] and the input
// arguments. The query is run on the database when one of [Query.Iter],
// [Query.Run], [Query.Exec], [GetAll] or [GetOne] is executed.
func (tx *TX) Query(ctx context.Context, s *Statement, inputArgs ...any) *Query {
	if ctx == nil {
		ctx = context.Background()
	}
	if tx.isDone() {
		return &Query{ctx: ctx, err: ErrTXDone}
	}

	pq, err := s.te.BindInputs(inputArgs...)
	if err != nil {
		return &Query{ctx: ctx, err: err}
	}

	stmt := func(innerCtx context.Context) (*sql.Stmt, error) {
		if tx.isDone() {
			return nil, ErrTXDone
		}
		sqlstmt, err := stmtCache.prepareStmt(innerCtx, tx.db, s)
		if err != nil {
			return nil, err
		}
		// Register the prepared statement on the transaction. The txstmt is
		// closed by database/sql when the transaction is committed or rolled
		// back.
		return tx.sqltx.StmtContext(innerCtx, sqlstmt), nil
	}
	return &Query{stmt: stmt, ctx: ctx, pq: pq, sql: pq.SQL(tx.db.placeholder), tracer: tx.db.tracer}
}
