// Package postgres persists player profiles and fight logs in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
)

// Store owns the connection pool shared by the arena repositories.
type Store struct {
	pool     *pgxpool.Pool
	profiles *ProfileRepository
	logs     *FightLogRepository
}

// Open connects to the database described by cfg and verifies it answers.
//
// Precondition: cfg.Enabled is true and cfg passes config validation.
// Postcondition: Returns a ready Store or a non-nil error; no pool is leaked on error.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns
	poolCfg.MaxConnLifetime = cfg.MaxConnLifetime

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging %s:%d: %w", cfg.Host, cfg.Port, err)
	}
	if logger != nil {
		logger.Info("fight store connected",
			zap.String("host", cfg.Host),
			zap.String("database", cfg.Name),
			zap.Int32("max_conns", cfg.MaxConns),
		)
	}
	return NewStore(pool), nil
}

// NewStore wraps an existing pool, e.g. one owned by a test container.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:     pool,
		profiles: NewProfileRepository(pool),
		logs:     NewFightLogRepository(pool),
	}
}

// Profiles returns the player profile repository.
func (s *Store) Profiles() *ProfileRepository { return s.profiles }

// FightLogs returns the PvP/PvE fight log repository.
func (s *Store) FightLogs() *FightLogRepository { return s.logs }

// Ping reports whether the database answers within timeout.
func (s *Store) Ping(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return s.pool.Ping(ctx)
}

// Close releases the pool. The Store and its repositories are unusable afterwards.
func (s *Store) Close() {
	s.pool.Close()
}
