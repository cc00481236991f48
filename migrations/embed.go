// Package migrations expone los scripts SQL para que cmd/seed los aplique en orden.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS
