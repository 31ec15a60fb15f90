package pointsmigrations

import "github.com/uptrace/bun/migrate"

// Migrations holds the points module's schema migrations.
var Migrations = migrate.NewMigrations()
