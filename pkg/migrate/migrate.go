// Package migrate applies versioned SQL schema migrations to the SQLite
// job-configuration database.
package migrate

import (
	"database/sql"
	"fmt"
	"slices"
	"sort"

	"github.com/chrissnell/hsegment/internal/log"
)

// Migration represents a single database migration
type Migration struct {
	Version int
	Name    string
	Up      string
	Down    string
}

// DB represents either a database connection or transaction
type DB interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// MigrationProvider defines how migrations are loaded and how the applied
// version is tracked
type MigrationProvider interface {
	GetMigrations() ([]Migration, error)
	GetCurrentVersion(db *sql.DB) (int, error)
	SetVersion(db DB, version int) error
	CreateMigrationTable(db *sql.DB) error
}

// Migrator handles the execution of migrations
type Migrator struct {
	db       *sql.DB
	provider MigrationProvider
}

// NewMigrator creates a new migrator instance
func NewMigrator(db *sql.DB, provider MigrationProvider) *Migrator {
	return &Migrator{
		db:       db,
		provider: provider,
	}
}

// MigrateUp applies every pending migration.
func (m *Migrator) MigrateUp() error {
	return m.MigrateTo(-1)
}

// MigrateDown reverts applied migrations until the schema is at
// targetVersion, which must be below the current version.
func (m *Migrator) MigrateDown(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}
	if targetVersion < 0 || targetVersion >= current {
		return fmt.Errorf("target version %d must be between 0 and current version %d", targetVersion, current)
	}
	return m.migrate(current, targetVersion)
}

// MigrateTo moves the schema up or down to targetVersion. -1 selects the
// newest migration.
func (m *Migrator) MigrateTo(targetVersion int) error {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return err
	}
	return m.migrate(current, targetVersion)
}

// migrate runs the steps between the current and target versions, newest
// first when going down.
func (m *Migrator) migrate(current, target int) error {
	migrations, err := m.sortedMigrations()
	if err != nil {
		return err
	}

	latest := 0
	if len(migrations) > 0 {
		latest = migrations[len(migrations)-1].Version
	}
	if target == -1 {
		target = latest
	}
	if target < 0 || target > latest {
		return fmt.Errorf("target version %d is outside 0..%d", target, latest)
	}

	up := target >= current
	if !up {
		slices.Reverse(migrations)
	}

	for _, mg := range migrations {
		if up && (mg.Version <= current || mg.Version > target) {
			continue
		}
		if !up && (mg.Version > current || mg.Version <= target) {
			continue
		}
		if err := m.execute(mg, up); err != nil {
			verb := "apply"
			if !up {
				verb = "rollback"
			}
			return fmt.Errorf("failed to %s migration %d: %w", verb, mg.Version, err)
		}
	}
	return nil
}

// GetCurrentVersion returns the applied schema version, creating the
// version table on first use.
func (m *Migrator) GetCurrentVersion() (int, error) {
	if err := m.provider.CreateMigrationTable(m.db); err != nil {
		return 0, fmt.Errorf("failed to create migration table: %w", err)
	}
	version, err := m.provider.GetCurrentVersion(m.db)
	if err != nil {
		return 0, fmt.Errorf("failed to get current version: %w", err)
	}
	return version, nil
}

// GetPendingMigrations lists the migrations above the current version.
func (m *Migrator) GetPendingMigrations() ([]Migration, error) {
	current, err := m.GetCurrentVersion()
	if err != nil {
		return nil, err
	}
	migrations, err := m.sortedMigrations()
	if err != nil {
		return nil, err
	}

	i := sort.Search(len(migrations), func(i int) bool {
		return migrations[i].Version > current
	})
	return migrations[i:], nil
}

func (m *Migrator) sortedMigrations() ([]Migration, error) {
	migrations, err := m.provider.GetMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to get migrations: %w", err)
	}
	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// execute runs one step and records the resulting version in the same
// transaction.
func (m *Migrator) execute(mg Migration, up bool) error {
	direction, stmt, version := "up", mg.Up, mg.Version
	if !up {
		direction, stmt, version = "down", mg.Down, mg.Version-1
	}
	if stmt == "" {
		return fmt.Errorf("migration %d has no %s SQL", mg.Version, direction)
	}

	tx, err := m.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}
	if err := m.provider.SetVersion(tx, version); err != nil {
		return fmt.Errorf("failed to update migration version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration transaction: %w", err)
	}

	log.Debugw("applied migration", "version", mg.Version, "name", mg.Name, "direction", direction)
	return nil
}
