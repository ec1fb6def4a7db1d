// Package migrations embeds the SQL schema files so the server binary
// can bootstrap its own database on startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
