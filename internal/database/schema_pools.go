package database

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/regsite/registry-backend/internal/config"
	"github.com/rs/zerolog"
)

// SchemaPools lazily opens one pool per co-located registry schema.
// Each pool pins its search_path so the shared repository SQL runs
// against that registry's tables unchanged.
type SchemaPools struct {
	cfg *config.Config
	log zerolog.Logger

	mu    sync.Mutex
	pools map[string]*pgxpool.Pool
}

// NewSchemaPools creates a SchemaPools manager.
func NewSchemaPools(cfg *config.Config, log zerolog.Logger) *SchemaPools {
	return &SchemaPools{
		cfg:   cfg,
		log:   log.With().Str("component", "schema_pools").Logger(),
		pools: make(map[string]*pgxpool.Pool),
	}
}

// Pool returns the pool for a schema, opening it on first use.
func (p *SchemaPools) Pool(ctx context.Context, schema string) (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if pool, ok := p.pools[schema]; ok {
		return pool, nil
	}

	poolCfg, err := pgxpool.ParseConfig(p.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	poolCfg.MaxConns = p.cfg.MaxDBConns
	poolCfg.ConnConfig.RuntimeParams["search_path"] = schema

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool for schema %s: %w", schema, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping schema %s: %w", schema, err)
	}

	p.log.Info().Str("schema", schema).Msg("schema pool opened")
	p.pools[schema] = pool
	return pool, nil
}

// Close closes every opened schema pool.
func (p *SchemaPools) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for schema, pool := range p.pools {
		pool.Close()
		delete(p.pools, schema)
	}
}
