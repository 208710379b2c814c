// Package migrations embeds the schema of the local client state file.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS
