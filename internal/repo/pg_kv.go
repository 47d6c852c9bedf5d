package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGKV implements KV on the kv_entries table (see migrations/).
type PGKV struct {
	db *pgxpool.Pool
}

func NewPGKV(db *pgxpool.Pool) *PGKV {
	return &PGKV{db: db}
}

func (r *PGKV) Get(ctx context.Context, key string) (string, bool, error) {
	var v string
	err := r.db.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&v)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

const upsertQuery = `
	INSERT INTO kv_entries (key, value, updated_at)
	VALUES ($1, $2, NOW())
	ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`

func (r *PGKV) Set(ctx context.Context, key, value string) error {
	_, err := r.db.Exec(ctx, upsertQuery, key, value)
	return err
}

// Update serializes writers on a transaction-scoped advisory lock for the key,
// which also covers the case where the row does not exist yet.
func (r *PGKV) Update(ctx context.Context, key string, fn UpdateFunc) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}
	var cur string
	ok := true
	err = tx.QueryRow(ctx, `SELECT value FROM kv_entries WHERE key = $1`, key).Scan(&cur)
	if errors.Is(err, pgx.ErrNoRows) {
		ok = false
	} else if err != nil {
		return err
	}
	next, err := fn(cur, ok)
	if err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, upsertQuery, key, next); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *PGKV) Delete(ctx context.Context, key string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM kv_entries WHERE key = $1`, key)
	return err
}
