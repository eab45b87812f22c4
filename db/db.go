// Package db owns the PostgreSQL connection pool and the schema migrations
// for the feedback store.
package db

import (
	"context"
	"fmt"
	"time"

	"github.com/NomadCrew/feedback-collector/config"
	"github.com/NomadCrew/feedback-collector/logger"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Connect opens a pool for cfg and verifies it with a ping.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := config.PostgresPoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create database pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.GetLogger().Infow("Connected to database", "host", cfg.Host, "database", cfg.Name)
	return pool, nil
}
