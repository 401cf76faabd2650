// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package projection converts query result rows into strongly typed values.

A [Row] holds one loosely typed value per selected column. A [Schema] lists the
fields a row is expected to carry, in select-list order, together with the
[Kind] each value is coerced to. Decoding a row against a schema validates its
shape before any value is read and yields a [Tuple] whose fields are accessed
by name:

	schema := projection.MustSchema(projection.Int("id"), projection.Str("title"))
	t, err := schema.Decode(projection.Row{int64(1), "Hello"})
	// t.Int64("id") == 1, t.Text("title") == "Hello"

A [Projector] pairs a schema with a plain constructor call, so values are
built with ordinary, compile time checked Go code:

	p := projection.Positional(schema, func(t projection.Tuple) Post {
		return NewPost(t.Int64("id"), t.Text("title"))
	})
	posts, err := p.ProjectAll(rows)

Positional projectors follow column order. Alias projectors match the column
names reported by the database against the schema field names.
*/
package projection
