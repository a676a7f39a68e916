package iocache

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/mysql"
	pgxmigrate "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/huangsam/greenplate/schema"
)

//go:embed migrations
var migrationsFS embed.FS

// migrationsTable tracks the applied history schema version.
const migrationsTable = "greenplate_schema_migrations"

// migrationsDir returns the embedded directory holding the backend's migrations.
func migrationsDir(backend schema.DatabaseBackend) (string, error) {
	switch backend {
	case schema.SQLiteBackend:
		return "migrations/sqlite", nil
	case schema.MySQLBackend:
		return "migrations/mysql", nil
	case schema.PostgreSQLBackend:
		return "migrations/postgres", nil
	default:
		return "", fmt.Errorf("migrations are not supported for backend: %s", backend)
	}
}

// newMigrator wraps an open database in a migrate instance reading the embedded migrations.
func newMigrator(db *sql.DB, backend schema.DatabaseBackend) (*migrate.Migrate, error) {
	dir, err := migrationsDir(backend)
	if err != nil {
		return nil, err
	}

	var driver database.Driver
	switch backend {
	case schema.SQLiteBackend:
		driver, err = sqlite.WithInstance(db, &sqlite.Config{MigrationsTable: migrationsTable})
	case schema.MySQLBackend:
		driver, err = mysql.WithInstance(db, &mysql.Config{MigrationsTable: migrationsTable})
	case schema.PostgreSQLBackend:
		driver, err = pgxmigrate.WithInstance(db, &pgxmigrate.Config{MigrationsTable: migrationsTable})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create %s migrate driver: %w", backend, err)
	}

	sourceDriver, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", sourceDriver, "greenplate", driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}
	return m, nil
}

// migrateTo moves the schema to targetVersion and reports the versions before and after.
//   - targetVersion < 0 migrates to the latest version.
//   - targetVersion == 0 rolls back every migration.
//   - targetVersion > 0 migrates to that version.
func migrateTo(m *migrate.Migrate, targetVersion int) (from, to uint, changed bool, err error) {
	from, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, 0, false, fmt.Errorf("failed to get current migration version: %w", err)
	}
	if dirty {
		return from, from, false, fmt.Errorf("database is in a dirty state at version %d. Please fix manually or force version", from)
	}

	switch {
	case targetVersion < 0:
		err = m.Up()
	case targetVersion == 0:
		err = m.Down()
	default:
		err = m.Migrate(uint(targetVersion))
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return from, from, false, nil
	}
	if err != nil {
		return from, from, false, fmt.Errorf("failed to migrate to version %d: %w", targetVersion, err)
	}

	to, _, err = m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return from, 0, true, nil
	}
	if err != nil {
		return from, 0, true, fmt.Errorf("failed to read migrated version: %w", err)
	}
	return from, to, true, nil
}

// MigrateHistory runs history store migrations and prints the outcome to w.
// See migrateTo for the meaning of targetVersion.
func MigrateHistory(backend schema.DatabaseBackend, connStr string, targetVersion int, w io.Writer) error {
	if backend == schema.NoneBackend {
		return fmt.Errorf("migrations are not supported for NoneBackend")
	}
	db, err := openDB(backend, connStr, GetHistoryDBFilePath())
	if err != nil {
		return err
	}

	m, err := newMigrator(db, backend)
	if err != nil {
		_ = db.Close()
		return err
	}
	defer func() { _, _ = m.Close() }()

	from, to, changed, err := migrateTo(m, targetVersion)
	if err != nil {
		return err
	}
	if !changed {
		_, _ = fmt.Fprintf(w, "No migration needed. Database is already at version %d\n", from)
		return nil
	}
	_, _ = fmt.Fprintf(w, "Successfully migrated from version %d to version %d\n", from, to)
	return nil
}
