package config

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConnectDB establishes a connection pool to PostgreSQL. Statements are bounded by the
// configured query timeout on the server side and traced through tracer when non-nil.
func ConnectDB(cfg DatabaseConfig, tracer pgx.QueryTracer, log *zap.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("invalid database configuration: %w", err)
	}
	if cfg.QueryTimeout > 0 {
		poolCfg.ConnConfig.RuntimeParams["statement_timeout"] = strconv.FormatInt(cfg.QueryTimeout.Milliseconds(), 10)
	}
	if tracer != nil {
		poolCfg.ConnConfig.Tracer = tracer
	}

	var pool *pgxpool.Pool

	// Retry connecting to the database a few times
	maxRetries := 5
	retryInterval := 5 * time.Second

	for i := 0; i < maxRetries; i++ {
		pool, err = pgxpool.NewWithConfig(context.Background(), poolCfg)
		if err == nil {
			err = pool.Ping(context.Background())
			if err == nil {
				log.Info("connected to PostgreSQL", zap.String("host", poolCfg.ConnConfig.Host))
				return pool, nil
			}
			pool.Close()
		}
		log.Warn("failed to connect to database",
			zap.Int("attempt", i+1),
			zap.Int("max_attempts", maxRetries),
			zap.Duration("retry_in", retryInterval),
			zap.Error(err))
		time.Sleep(retryInterval)
	}
	return nil, fmt.Errorf("unable to connect to database after %d attempts: %w", maxRetries, err)
}

// Schema is applied on every start; every statement is idempotent.
const Schema = `
	CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS user_roles (
		id SERIAL PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		role TEXT NOT NULL CHECK (role IN ('diner', 'franchisee', 'admin')),
		object_id INT NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS auth (
		token TEXT PRIMARY KEY,
		user_id INT NOT NULL REFERENCES users(id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS menu (
		id SERIAL PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		image TEXT NOT NULL DEFAULT '',
		price DOUBLE PRECISION NOT NULL
	);

	CREATE TABLE IF NOT EXISTS franchise (
		id SERIAL PRIMARY KEY,
		name TEXT UNIQUE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS store (
		id SERIAL PRIMARY KEY,
		franchise_id INT NOT NULL REFERENCES franchise(id),
		name TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS diner_order (
		id SERIAL PRIMARY KEY,
		diner_id INT NOT NULL REFERENCES users(id),
		franchise_id INT NOT NULL,
		store_id INT NOT NULL,
		date TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS order_item (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES diner_order(id),
		menu_id INT NOT NULL,
		description TEXT NOT NULL,
		price DOUBLE PRECISION NOT NULL
	);

	-- Indexes for performance
	CREATE INDEX IF NOT EXISTS idx_user_roles_user_id ON user_roles(user_id);
	CREATE INDEX IF NOT EXISTS idx_user_roles_object_id ON user_roles(object_id);
	CREATE INDEX IF NOT EXISTS idx_auth_user_id ON auth(user_id);
	CREATE INDEX IF NOT EXISTS idx_store_franchise_id ON store(franchise_id);
	CREATE INDEX IF NOT EXISTS idx_diner_order_diner_id ON diner_order(diner_id);
	CREATE INDEX IF NOT EXISTS idx_order_item_order_id ON order_item(order_id);
`

// Execer is the subset of a pool needed to apply the schema.
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// AutoMigrate creates tables if they don't exist
func AutoMigrate(ctx context.Context, db Execer) error {
	if _, err := db.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("unable to apply migrations: %w", err)
	}
	return nil
}
