/*
Package expr processes the query string, generates the SQL, and maps the input
arguments to the generated query's parameters. It covers all functionality
relating to input expressions; it does not interact with databases.

The package is split into three stages: the Parse stage, the Type Binding
stage, and the Input Binding stage.

# Parsing stage

The parsing stage takes a query string and splits it into bypass parts, passed
to the database verbatim, and input expressions of the form $Type.member.
String literals, quoted identifiers and comments are never searched for
expressions.

# Type Binding stage

The Type Binding stage binds concrete Go types to the type names in the input
expressions. Type samples are provided by the user. These are used to validate
the expressions and to locate the tagged struct fields or map keys they
reference.

# Input Binding stage

The Input Binding stage takes the input arguments of a single query and
generates the query parameters in placeholder order. The SQL text itself only
depends on the placeholder style of the database and is generated from the
type bound expression.
*/
package expr
