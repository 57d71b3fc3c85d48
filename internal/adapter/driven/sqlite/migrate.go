package sqlite

import (
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// SchemaTable records the applied dataset schema version.
const SchemaTable = "prstudy_schema_version"

//go:embed migrations/*.sql
var datasetSchemaFS embed.FS

// Migrate brings the dataset schema to the newest embedded version on the
// writer connection and logs the resulting version. A database left dirty by
// an interrupted migration is reported as an error.
func (db *DB) Migrate() error {
	schema, err := db.schemaMigrator()
	if err != nil {
		return err
	}

	if err := schema.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migrate dataset schema: %w", err)
	}

	version, dirty, err := schema.Version()
	if err != nil {
		return fmt.Errorf("read dataset schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("dataset schema version %d is dirty", version)
	}

	slog.Debug("dataset schema ready", "path", db.path, "version", version)
	return nil
}

// The migrator is not closed: closing it would close db.Writer.
func (db *DB) schemaMigrator() (*migrate.Migrate, error) {
	source, err := iofs.New(datasetSchemaFS, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open dataset schema source: %w", err)
	}

	target, err := migratesqlite.WithInstance(db.Writer, &migratesqlite.Config{
		MigrationsTable: SchemaTable,
	})
	if err != nil {
		return nil, fmt.Errorf("open dataset schema target: %w", err)
	}

	schema, err := migrate.NewWithInstance("prstudy-dataset", source, "sqlite", target)
	if err != nil {
		return nil, fmt.Errorf("create dataset schema migrator: %w", err)
	}
	return schema, nil
}
