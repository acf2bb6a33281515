package postgres

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pkg/errors"
)

const schema = `
	CREATE TABLE IF NOT EXISTS kv_snapshots (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)
`

const upsert = `
	INSERT INTO kv_snapshots (key, value, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (key)
	DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(4)
	db.SetMaxOpenConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrap(err, "create kv_snapshots")
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_snapshots WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, errors.Wrapf(err, "load snapshot %s", key)
	}
	return value, true, nil
}

func (s *Store) Set(ctx context.Context, key string, value string) error {
	if _, err := s.db.ExecContext(ctx, upsert, key, value); err != nil {
		return errors.Wrapf(err, "save snapshot %s", key)
	}
	return nil
}

// SetMany upserts all entries in one transaction.
func (s *Store) SetMany(ctx context.Context, entries map[string]string) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	for key, value := range entries {
		if _, err := tx.ExecContext(ctx, upsert, key, value); err != nil {
			return errors.Wrapf(err, "save snapshot %s", key)
		}
	}

	return tx.Commit()
}
