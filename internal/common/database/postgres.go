package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"findvax-notifier/internal/common/config"

	_ "github.com/lib/pq"
)

const pingTimeout = 5 * time.Second

// PostgresClient owns the pool behind the relational subscription store.
type PostgresClient struct {
	DB *sql.DB
}

// NewPostgres opens the pool. Nothing is dialled until the first query or
// Ping.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)

	return &PostgresClient{DB: db}, nil
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("postgres ping failed: %w", err)
	}
	return nil
}

// EnsureSubscriptionTable creates the subscription table and its pending
// lookup index when they are missing. The primary key mirrors the document
// store key so a repeated signup overwrites instead of duplicating.
func (c *PostgresClient) EnsureSubscriptionTable(ctx context.Context, table string) error {
	stmts := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	location   TEXT        NOT NULL,
	sms        TEXT        NOT NULL,
	lang       TEXT        NOT NULL,
	is_sent    SMALLINT    NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	PRIMARY KEY (location, sms)
)`, table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %s_location_is_sent_idx ON %s (location, is_sent)`, table, table),
	}
	for _, stmt := range stmts {
		if _, err := c.DB.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to prepare table %s: %w", table, err)
		}
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB == nil {
		return nil
	}
	return c.DB.Close()
}
