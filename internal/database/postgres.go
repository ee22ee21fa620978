package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// Config holds the connection parameters and pool tuning for the Postgres
// store backing every repository in internal/store.
type Config struct {
	Host        string
	Port        string
	User        string
	Password    string
	Database    string
	SSLMode     string
	MaxConns    int32
	MinConns    int32
	MaxConnAge  time.Duration
	ConnTimeout time.Duration
}

// PostgresDB wraps the pooled connection the repositories and Store.WithTx
// run against.
type PostgresDB struct {
	DB *sql.DB
}

// NewPostgresDB opens the pool, applies cfg's sizing, and verifies
// connectivity with a ping bounded by cfg.ConnTimeout before returning.
func NewPostgresDB(cfg Config) (*PostgresDB, error) {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Database, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if cfg.MaxConns > 0 {
		db.SetMaxOpenConns(int(cfg.MaxConns))
	}
	if cfg.MinConns > 0 {
		db.SetMaxIdleConns(int(cfg.MinConns))
	}
	if cfg.MaxConnAge > 0 {
		db.SetConnMaxLifetime(cfg.MaxConnAge)
	}

	timeout := cfg.ConnTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &PostgresDB{DB: db}, nil
}

// Close releases the underlying connection pool.
func (db *PostgresDB) Close() {
	if db.DB != nil {
		db.DB.Close()
	}
}

// Health runs a bounded round trip against the pool, used by /health.
func (db *PostgresDB) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check: %w", err)
	}

	var result int
	if err := db.DB.QueryRowContext(ctx, "SELECT 1").Scan(&result); err != nil {
		return fmt.Errorf("database health check query: %w", err)
	}
	return nil
}
