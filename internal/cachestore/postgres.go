package cachestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgPool is the subset of *pgxpool.Pool the store uses.
type pgPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

const pgSchema = `CREATE TABLE IF NOT EXISTS ytmeta_cache (
	cache_key  TEXT PRIMARY KEY,
	payload    BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
)`

// Postgres shares cache entries between replicas through one table.
type Postgres struct {
	pool pgPool
	now  func() time.Time
}

// ConnectPostgres creates a pgx pool for dsn and ensures the table exists.
func ConnectPostgres(ctx context.Context, dsn string) (*Postgres, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pgx pool: %w", err)
	}
	p := newPostgres(pool)
	if err := p.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	slog.Info("cache: postgres connected", slog.String("host", config.ConnConfig.Host))
	return p, nil
}

func newPostgres(pool pgPool) *Postgres {
	return &Postgres{pool: pool, now: time.Now}
}

// Migrate creates the cache table if it is missing.
func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, pgSchema); err != nil {
		return fmt.Errorf("create cache table: %w", err)
	}
	return nil
}

func (p *Postgres) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := p.pool.QueryRow(ctx,
		`SELECT payload FROM ytmeta_cache WHERE cache_key = $1 AND expires_at > $2`,
		key, p.now()).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

func (p *Postgres) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	_, err := p.pool.Exec(ctx,
		`INSERT INTO ytmeta_cache (cache_key, payload, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (cache_key) DO UPDATE SET payload = EXCLUDED.payload, expires_at = EXCLUDED.expires_at`,
		key, val, p.now().Add(ttl))
	return err
}

// Purge deletes expired rows.
func (p *Postgres) Purge(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, `DELETE FROM ytmeta_cache WHERE expires_at <= $1`, p.now())
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Run purges expired rows every interval until ctx is done.
func (p *Postgres) Run(ctx context.Context, interval time.Duration) {
	runPurge(ctx, BackendPostgres, p, interval)
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}
