// Package migrations embeds the goose SQL migrations that define the
// database schema.
package migrations

import "embed"

// Files holds the embedded migration scripts, applied in lexical order.
//
//go:embed *.sql
var Files embed.FS
