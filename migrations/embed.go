// Package migrations embeds the SQL schema migrations for Nimbus Core.
//
// Files follow the naming convention {version}_{name}.{up|down}.sql where
// version is YYYYMMDD_HHMMSS. The embedded filesystem is registered with
// the database package at init time and applied via DB.Migrate.
package migrations

import (
	"embed"

	"github.com/nimbushome/nimbus-core/internal/infrastructure/database"
)

//go:embed *.sql
var migrationsFS embed.FS

func init() {
	database.MigrationsFS = migrationsFS
	database.MigrationsDir = "."
}
