package storage

import (
	_ "embed"
)

// schemaSQL creates the snippets table. The statement is portable across
// every supported dialect.
//
//go:embed schema.sql
var schemaSQL string
