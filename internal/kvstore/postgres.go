package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/memestock/pkg/database"
)

const kvSchema = `
	CREATE TABLE IF NOT EXISTS memestock_kv (
		namespace  TEXT        NOT NULL,
		key        TEXT        NOT NULL,
		value      JSONB       NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (namespace, key)
	)
`

// Postgres stores values in a single memestock_kv table
// ⭐ SSOT: Postgres KV 저장소는 여기서만
type Postgres struct {
	db   *database.DB
	pool *pgxpool.Pool
}

// NewPostgres wraps an open pool
func NewPostgres(db *database.DB) *Postgres {
	return &Postgres{db: db, pool: db.Pool}
}

// EnsureSchema creates the table when missing
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	return p.db.Bootstrap(ctx, "memestock_kv", kvSchema)
}

func (p *Postgres) Get(ctx context.Context, namespace, key string) ([]byte, bool, error) {
	query := `
		SELECT value
		FROM memestock_kv
		WHERE namespace = $1 AND key = $2
	`

	var value []byte
	err := p.pool.QueryRow(ctx, query, namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s/%s: %w", namespace, key, err)
	}
	return value, true, nil
}

func (p *Postgres) Set(ctx context.Context, namespace, key string, value []byte) error {
	query := `
		INSERT INTO memestock_kv (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key) DO UPDATE SET
			value = EXCLUDED.value,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := p.pool.Exec(ctx, query, namespace, key, value); err != nil {
		return fmt.Errorf("kv set %s/%s: %w", namespace, key, err)
	}
	return nil
}

func (p *Postgres) SetIfAbsent(ctx context.Context, namespace, key string, value []byte) (bool, error) {
	query := `
		INSERT INTO memestock_kv (namespace, key, value)
		VALUES ($1, $2, $3)
		ON CONFLICT (namespace, key) DO NOTHING
	`

	tag, err := p.pool.Exec(ctx, query, namespace, key, value)
	if err != nil {
		return false, fmt.Errorf("kv insert %s/%s: %w", namespace, key, err)
	}
	return tag.RowsAffected() == 1, nil
}

func (p *Postgres) Close() error {
	p.db.Close()
	return nil
}
