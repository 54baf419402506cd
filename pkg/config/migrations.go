package config

import (
	"database/sql"
	"embed"

	"github.com/chrissnell/hsegment/pkg/migrate"
)

// Migrations holds the SQL schema of the job configuration database.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationTable tracks the applied schema version.
const MigrationTable = "config_migrations"

// NewMigrator returns a migrator for the job configuration schema.
func NewMigrator(db *sql.DB) *migrate.Migrator {
	return migrate.NewMigrator(db, migrate.NewFSProvider(Migrations, "migrations", MigrationTable))
}
