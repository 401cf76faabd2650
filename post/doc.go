// Copyright 2024 Canonical Ltd.
// Licensed under Apache 2.0, see LICENCE file for details.

// Package post stores blog posts and reads them back through three query
// shapes: a two column DTO matched by alias, the same DTO behind quoted
// native aliases, and a six column record decoded by position into a post
// with a nested audit value.
package post
