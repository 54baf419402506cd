package main

import (
	"database/sql"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/chrissnell/hsegment/internal/log"
	"github.com/chrissnell/hsegment/pkg/config"
	"github.com/chrissnell/hsegment/pkg/migrate"
	_ "modernc.org/sqlite" // SQLite driver
)

func main() {
	var (
		dbDSN          = flag.String("dsn", "", "SQLite database path")
		migrationDir   = flag.String("dir", "", "Migration directory (default: the built-in job configuration schema)")
		migrationTable = flag.String("table", config.MigrationTable, "Migration table name")
		command        = flag.String("command", "up", "Migration command: up, down, to, version, status")
		targetVersion  = flag.String("target", "", "Target version for down/to commands")
		debug          = flag.Bool("debug", false, "Log each applied migration")
		helpFlag       = flag.Bool("help", false, "Show help")
	)

	flag.Parse()

	if *helpFlag {
		showHelp()
		return
	}

	if *dbDSN == "" {
		fmt.Fprintf(os.Stderr, "Error: -dsn flag is required\n")
		showHelp()
		os.Exit(1)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	db, err := sql.Open("sqlite", *dbDSN)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}

	var provider *migrate.FSProvider
	if *migrationDir == "" {
		provider = migrate.NewFSProvider(config.Migrations, "migrations", *migrationTable)
	} else {
		provider = migrate.NewFSProvider(os.DirFS(*migrationDir), ".", *migrationTable)
	}
	migrator := migrate.NewMigrator(db, provider)

	if err := run(migrator, *command, *targetVersion, os.Stdout); err != nil {
		log.Fatalf("Migration command failed: %v", err)
	}
}

func run(migrator *migrate.Migrator, command, target string, out io.Writer) error {
	parseTarget := func() (int, error) {
		if target == "" {
			return 0, fmt.Errorf("-target flag is required for %s command", command)
		}
		version, err := strconv.Atoi(target)
		if err != nil {
			return 0, fmt.Errorf("invalid target version: %w", err)
		}
		return version, nil
	}

	switch command {
	case "up":
		if err := migrator.MigrateUp(); err != nil {
			return err
		}
	case "down", "to":
		version, err := parseTarget()
		if err != nil {
			return err
		}
		if command == "down" {
			err = migrator.MigrateDown(version)
		} else {
			err = migrator.MigrateTo(version)
		}
		if err != nil {
			return err
		}
	case "version":
		version, err := migrator.GetCurrentVersion()
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Current version: %d\n", version)
		return nil
	case "status":
		return showStatus(migrator, out)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}

	fmt.Fprintln(out, "Migration completed successfully")
	return nil
}

func showStatus(migrator *migrate.Migrator, out io.Writer) error {
	currentVersion, err := migrator.GetCurrentVersion()
	if err != nil {
		return fmt.Errorf("failed to get current version: %w", err)
	}

	pending, err := migrator.GetPendingMigrations()
	if err != nil {
		return fmt.Errorf("failed to get pending migrations: %w", err)
	}

	fmt.Fprintf(out, "Current version: %d\n", currentVersion)
	fmt.Fprintf(out, "Pending migrations: %d\n", len(pending))

	if len(pending) > 0 {
		fmt.Fprintln(out, "\nPending migrations:")
		for _, migration := range pending {
			fmt.Fprintf(out, "  %d: %s\n", migration.Version, migration.Name)
		}
	}

	return nil
}

func showHelp() {
	fmt.Println("Job Configuration Database Migration Tool")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  migrate [flags]")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  -dsn string        SQLite database path (required)")
	fmt.Println("  -dir string        Migration directory (default: built-in schema)")
	fmt.Println("  -table string      Migration table name (default: config_migrations)")
	fmt.Println("  -command string    Migration command (default: up)")
	fmt.Println("  -target string     Target version for down/to commands")
	fmt.Println("  -debug             Log each applied migration")
	fmt.Println("  -help              Show this help message")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  up                 Apply all pending migrations")
	fmt.Println("  down               Roll back to target version")
	fmt.Println("  to                 Migrate to specific version (up or down)")
	fmt.Println("  version            Show current migration version")
	fmt.Println("  status             Show migration status")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  migrate -dsn jobs.db -command up")
	fmt.Println("  migrate -dsn jobs.db -command down -target 1")
	fmt.Println("  migrate -dsn jobs.db -command status")
}
