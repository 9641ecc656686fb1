package migrations

import "github.com/uptrace/bun/migrate"

// Migrations holds every schema migration of the quiz store, in registration order.
var Migrations = migrate.NewMigrations()
