package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/interview-copilot/internal/settings"
)

// Pool is the subset of pgxpool.Pool the store needs; pgxmock satisfies it
// in tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool Pool
}

const (
	pgSelectSettings = `SELECT key, value FROM user_settings`
	pgUpsertSetting  = `INSERT INTO user_settings (key, value, updated_at) VALUES ($1, $2, $3)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`
)

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}
	pgxCfg.MaxConns = 4
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS user_settings (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Settings(ctx context.Context) (settings.Settings, error) {
	kv, err := s.Raw(ctx)
	if err != nil {
		return settings.Settings{}, err
	}
	return settings.FromKV(kv)
}

func (s *PostgresStore) Raw(ctx context.Context) (map[string]json.RawMessage, error) {
	rows, err := s.pool.Query(ctx, pgSelectSettings)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: select settings")
	}
	defer rows.Close()

	kv := make(map[string]json.RawMessage)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, eris.Wrap(err, "postgres: scan setting")
		}
		kv[key] = json.RawMessage(value)
	}
	return kv, eris.Wrap(rows.Err(), "postgres: iterate settings")
}

func (s *PostgresStore) Put(ctx context.Context, key string, value json.RawMessage) error {
	if !json.Valid(value) {
		return eris.Errorf("postgres: value for %q is not valid JSON", key)
	}
	_, err := s.pool.Exec(ctx, pgUpsertSetting, key, string(value), time.Now().UTC())
	return eris.Wrapf(err, "postgres: put %s", key)
}

func (s *PostgresStore) PutAll(ctx context.Context, kv map[string]json.RawMessage) error {
	for key, value := range kv {
		if err := s.Put(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}
