package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"hr-assistant/internal/common/config"

	_ "github.com/lib/pq"
)

var ErrInvalidIdentifier = errors.New("invalid table name")

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidIdentifier reports whether name is a plain or schema-qualified SQL
// identifier that is safe to interpolate into a statement.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

type PostgresClient struct {
	DB *sql.DB
}

func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// EnsureUsersTable creates the HR users table used by the user store and the
// tool server when it does not exist yet.
func (c *PostgresClient) EnsureUsersTable(ctx context.Context, table string) error {
	if !ValidIdentifier(table) {
		return fmt.Errorf("%w: %q", ErrInvalidIdentifier, table)
	}
	_, err := c.DB.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id            TEXT PRIMARY KEY,
			username      TEXT NOT NULL UNIQUE,
			leave_balance INTEGER NOT NULL DEFAULT 0,
			total_leaves  INTEGER NOT NULL DEFAULT 100,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`, table))
	if err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	return nil
}
