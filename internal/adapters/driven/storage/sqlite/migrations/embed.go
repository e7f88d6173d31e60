// Package migrations holds the versioned schema of the session database:
// the items table behind the vector index and the destinations table.
package migrations

import "embed"

// FS holds the NNN_name.up.sql and NNN_name.down.sql files, applied in order.
//
//go:embed *.sql
var FS embed.FS
