// Package migrations embeds the FindSync schema files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
