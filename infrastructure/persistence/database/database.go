// Package database is the relational store behind the individual and
// household DAOs.
package database

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

// DatabaseName is the logical name of the application database
const DatabaseName = "main"

//go:embed migrations/*.sql
var migrationFS embed.FS

// MainDatabase owns the connection pool and the DAOs derived from it
type MainDatabase struct {
	db     *sqlx.DB
	url    string
	logger *zap.Logger

	individuals *IndividualDao
	households  *HouseholdDao
}

// Open connects to url and verifies the connection
func Open(ctx context.Context, url string, logger *zap.Logger) (*MainDatabase, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s database: %w", DatabaseName, err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)

	d := New(db, logger)
	d.url = url
	return d, nil
}

// New wraps an open pool
func New(db *sqlx.DB, logger *zap.Logger) *MainDatabase {
	d := &MainDatabase{
		db:     db,
		logger: logger.Named("Database"),
	}
	d.individuals = &IndividualDao{database: d}
	d.households = &HouseholdDao{database: d}
	return d
}

// Name returns DatabaseName
func (d *MainDatabase) Name() string {
	return DatabaseName
}

// DB exposes the pool
func (d *MainDatabase) DB() *sqlx.DB {
	return d.db
}

// IndividualDao returns the individual table DAO. Every call returns the
// same instance.
func (d *MainDatabase) IndividualDao() *IndividualDao {
	return d.individuals
}

// HouseholdDao returns the household table DAO. Every call returns the same
// instance.
func (d *MainDatabase) HouseholdDao() *HouseholdDao {
	return d.households
}

// Ping checks connectivity
func (d *MainDatabase) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// Close releases the pool
func (d *MainDatabase) Close() error {
	return d.db.Close()
}

// Migrate applies all pending migrations
func (d *MainDatabase) Migrate(ctx context.Context) error {
	return d.withMigrator(func(m *migrate.Migrate) error {
		err := m.Up()
		if errors.Is(err, migrate.ErrNoChange) {
			return nil
		}
		return err
	})
}

// MigrateDown rolls back the most recent migration
func (d *MainDatabase) MigrateDown(ctx context.Context) error {
	return d.withMigrator(func(m *migrate.Migrate) error {
		return m.Steps(-1)
	})
}

// Version returns the applied schema version
func (d *MainDatabase) Version(ctx context.Context) (version uint, dirty bool, err error) {
	err = d.withMigrator(func(m *migrate.Migrate) error {
		version, dirty, err = m.Version()
		if errors.Is(err, migrate.ErrNilVersion) {
			return nil
		}
		return err
	})
	return version, dirty, err
}

// withMigrator runs fn on a migrator with its own connection so closing it
// leaves the pool open
func (d *MainDatabase) withMigrator(fn func(m *migrate.Migrate) error) error {
	if d.url == "" {
		return fmt.Errorf("migrations need a connection url")
	}
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, d.url)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			d.logger.Warn("Failed to close migrator", zap.NamedError("source", srcErr), zap.NamedError("database", dbErr))
		}
	}()

	if err := fn(m); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}
