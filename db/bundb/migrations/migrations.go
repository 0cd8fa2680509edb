package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry the migrator runs.
var Migrations = migrate.NewMigrations()
