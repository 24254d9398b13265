// Package migrations carries the vector store schema. Opening a store applies
// the NNN_name.up.sql files above the recorded version, in name order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
