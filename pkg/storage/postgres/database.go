// Package postgres provides the PostgreSQL-backed document store.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"github.com/lanternpress/lantern/pkg/content"
)

// Config holds connection settings for the content database.
type Config struct {
	ConnectionString string
	MaxConnections   int32
	ConnectTimeout   time.Duration
	MigrationsPath   string
}

// Database is a pgx-backed implementation of content.Store.
type Database struct {
	pool   *pgxpool.Pool
	config *Config
}

// NewDatabase opens a connection pool against the content database.
func NewDatabase(ctx context.Context, config *Config) (*Database, error) {
	if config == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if config.ConnectionString == "" {
		return nil, fmt.Errorf("connection string is required")
	}

	if config.MaxConnections == 0 {
		config.MaxConnections = 10
	}
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}
	if config.MigrationsPath == "" {
		config.MigrationsPath = "file://migrations"
	}

	poolConfig, err := pgxpool.ParseConfig(config.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}

	poolConfig.MaxConns = config.MaxConnections
	poolConfig.MaxConnLifetime = 1 * time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = 1 * time.Minute

	timeoutCtx, cancel := context.WithTimeout(ctx, config.ConnectTimeout)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(timeoutCtx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(timeoutCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{pool: pool, config: config}, nil
}

// Close closes the connection pool.
func (db *Database) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Ping verifies database connectivity.
func (db *Database) Ping(ctx context.Context) error {
	return db.pool.Ping(ctx)
}

// MigrateToLatest applies all pending schema migrations.
func (db *Database) MigrateToLatest(ctx context.Context) error {
	migrationDB, err := sql.Open("postgres", db.config.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer migrationDB.Close()

	driver, err := migratepg.WithInstance(migrationDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(db.config.MigrationsPath, "postgres", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Posts returns the post collection.
func (db *Database) Posts() content.PostStore { return &postStore{pool: db.pool} }

// Comments returns the comment collection.
func (db *Database) Comments() content.CommentStore { return &commentStore{pool: db.pool} }

// Users returns the principal directory.
func (db *Database) Users() content.UserStore { return &userStore{pool: db.pool} }
