package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// MigrationsFS is set by the migrations package at init time.
// It contains the embedded SQL migration files.
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS containing migrations.
var MigrationsDir string

// Migration represents a single database migration.
type Migration struct {
	// Version is the migration version (timestamp format: YYYYMMDD_HHMMSS).
	Version string

	// Name is a human-readable description.
	Name string

	// UpSQL contains the SQL to apply the migration.
	UpSQL string

	// DownSQL contains the SQL to rollback the migration.
	DownSQL string
}

// Migrate applies all pending migrations to the database.
//
// It creates a schema_migrations table to track applied migrations,
// then applies any migrations that haven't been run yet, in version order.
// Each migration runs in its own transaction.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//
// Returns:
//   - error: If any migration fails
func (db *DB) Migrate(ctx context.Context) error {
	// Create migrations tracking table
	if err := db.createMigrationsTable(ctx); err != nil {
		return fmt.Errorf("creating migrations table: %w", err)
	}

	// Load migrations from embedded filesystem
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	// Get applied migrations
	applied, err := db.getAppliedMigrations(ctx)
	if err != nil {
		return fmt.Errorf("getting applied migrations: %w", err)
	}

	// Apply pending migrations in order
	for _, migration := range migrations {
		if applied[migration.Version] {
			continue
		}

		if err := db.applyMigration(ctx, migration); err != nil {
			return fmt.Errorf("applying migration %s: %w", migration.Version, err)
		}
	}

	return nil
}

// MigrateDown rolls back the most recent migration.
// Use with caution in production.
func (db *DB) MigrateDown(ctx context.Context) error {
	// Get the most recent applied migration
	var version string
	err := db.QueryRowContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version DESC LIMIT 1",
	).Scan(&version)
	if err != nil {
		return fmt.Errorf("no migrations to rollback: %w", err)
	}

	// Load migrations to find the down SQL
	migrations, err := loadMigrations()
	if err != nil {
		return fmt.Errorf("loading migrations: %w", err)
	}

	var target *Migration
	for i := range migrations {
		if migrations[i].Version == version {
			target = &migrations[i]
			break
		}
	}
	if target == nil {
		return fmt.Errorf("migration %s not found in embedded files", version)
	}

	// Execute rollback in a transaction
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op if committed

	if _, err := tx.ExecContext(ctx, target.DownSQL); err != nil {
		return fmt.Errorf("executing rollback SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM schema_migrations WHERE version = ?", version,
	); err != nil {
		return fmt.Errorf("removing migration record: %w", err)
	}

	return tx.Commit()
}

// GetMigrationStatus returns the list of applied migration versions.
func (db *DB) GetMigrationStatus(ctx context.Context) ([]string, error) {
	rows, err := db.DB.QueryContext(ctx,
		"SELECT version FROM schema_migrations ORDER BY version",
	)
	if err != nil {
		return nil, fmt.Errorf("querying migration status: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	var versions []string
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		versions = append(versions, version)
	}
	return versions, rows.Err()
}

// createMigrationsTable creates the schema_migrations tracking table.
func (db *DB) createMigrationsTable(ctx context.Context) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL
		)
	`)
	return err
}

// getAppliedMigrations returns a set of applied migration versions.
func (db *DB) getAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	rows, err := db.DB.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck // Read-only rows

	applied := make(map[string]bool)
	for rows.Next() {
		var version string
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration applies a single migration in a transaction.
func (db *DB) applyMigration(ctx context.Context, migration Migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // No-op if committed

	// Execute the migration SQL
	if _, err := tx.ExecContext(ctx, migration.UpSQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	// Record the migration
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at) VALUES (?, ?)",
		migration.Version,
		time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	return tx.Commit()
}

// loadMigrations reads all migrations from the embedded filesystem.
// Migration files follow the naming convention:
//
//	{version}_{name}.up.sql
//	{version}_{name}.down.sql
//
// where version is YYYYMMDD_HHMMSS.
func loadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	// Group files by version
	type migrationFiles struct {
		name    string
		upSQL   string
		downSQL string
	}
	byVersion := make(map[string]*migrationFiles)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, name, direction, ok := parseMigrationFilename(entry.Name())
		if !ok {
			continue
		}

		path := entry.Name()
		if MigrationsDir != "." {
			path = MigrationsDir + "/" + entry.Name()
		}
		content, err := fs.ReadFile(MigrationsFS, path)
		if err != nil {
			return nil, fmt.Errorf("reading migration file %s: %w", entry.Name(), err)
		}

		mf, exists := byVersion[version]
		if !exists {
			mf = &migrationFiles{name: name}
			byVersion[version] = mf
		}

		switch direction {
		case "up":
			mf.upSQL = string(content)
		case "down":
			mf.downSQL = string(content)
		}
	}

	// Build sorted migration list
	migrations := make([]Migration, 0, len(byVersion))
	for version, mf := range byVersion {
		if mf.upSQL == "" {
			return nil, fmt.Errorf("migration %s has no up SQL", version)
		}
		migrations = append(migrations, Migration{
			Version: version,
			Name:    mf.name,
			UpSQL:   mf.upSQL,
			DownSQL: mf.downSQL,
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseMigrationFilename extracts version, name, and direction from a
// migration filename like "20250601_120000_initial_schema.up.sql".
func parseMigrationFilename(filename string) (version, name, direction string, ok bool) {
	base := strings.TrimSuffix(filename, ".sql")

	switch {
	case strings.HasSuffix(base, ".up"):
		direction = "up"
		base = strings.TrimSuffix(base, ".up")
	case strings.HasSuffix(base, ".down"):
		direction = "down"
		base = strings.TrimSuffix(base, ".down")
	default:
		return "", "", "", false
	}

	// Version is the first two underscore-separated segments (date_time)
	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 3 {
		return "", "", "", false
	}

	version = parts[0] + "_" + parts[1]
	name = parts[2]
	return version, name, direction, true
}
