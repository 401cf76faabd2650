// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

/*
Package typeinfo contains the reflection code used to bind Go values to query
parameters. As much as possible, reflection is limited to this package. It
extracts the `db` tags of struct types, caches them per type, validates the
input arguments passed by the user and locates the values they reference.
*/
package typeinfo
