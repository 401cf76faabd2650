/*
Package sqlproj runs queries on SQL databases and projects the resulting rows
into Go values.

Queries are plain SQL extended with input expressions, which pass the tagged
fields of Go structs (or the keys of maps) as query parameters:

	type Post struct {
		ID    int64  `db:"id"`
		Title string `db:"title"`
	}

	insert := sqlproj.MustPrepare(`
		INSERT INTO post (id, title)
		VALUES ($Post.id, $Post.title)`,
		Post{},
	)
	err := db.Query(ctx, insert, Post{ID: 1, Title: "Hello"}).Run()

Input expressions are replaced with the placeholder syntax of the database,
"?" by default or "$1", "$2", ... when the DB is created with
WithPlaceholders(Dollar).

# Results

Result rows are never scanned into structs by reflection. Each row is read as
a [projection.Row] and handed, together with the column names, to a
[Transformer]. A [projection.Projector] is a Transformer, and so is any
function wrapped in [TransformerFunc]:

	dtos, err := sqlproj.GetAll(db.Query(ctx, selectPosts), postProjector)

	titles, err := sqlproj.GetAll(db.Query(ctx, selectPosts),
		sqlproj.TransformerFunc[string](func(columns []string, row projection.Row) (string, error) {
			return row[1].(string), nil
		}),
	)

GetAll returns an empty slice, not an error, when the query has no results.
GetOne returns [ErrNoRows].

# Transactions

[DB.Transaction] runs a function inside a transaction, committing when it
returns nil and rolling back when it returns an error or panics.

Every query execution is recorded as an OpenTelemetry span using the global
tracer provider unless another tracer is given with WithTracer.
*/
package sqlproj
