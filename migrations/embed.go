// Package migrations embeds the SQL schema for the identity and team directory.
package migrations

import "embed"

// FS holds the ordered *.sql migration files.
//
//go:embed *.sql
var FS embed.FS
