// Package migrations embeds the device registry schema into the binary.
//
// The scripts are idempotent and are applied on every startup by
// database.EnsureSchema, so the SQL files need not ship alongside the executable.
package migrations

import (
	"embed"

	"github.com/nerrad567/device-registry/internal/infrastructure/database"
)

//go:embed *.sql
var schemaFS embed.FS

func init() {
	database.SchemaFS = schemaFS
	database.SchemaDir = "."
}
