// Package migrations holds the SQL schema applied at startup.
package migrations

import "embed"

//go:embed postgres/*.up.sql
var Postgres embed.FS
