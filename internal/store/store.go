package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrSaveNotFound is returned when a save id has no row.
var ErrSaveNotFound = errors.New("save not found")

func Connect(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	cfg.MaxConns = 20
	cfg.MinConns = 2
	cfg.MaxConnLifetime = 30 * time.Minute
	cfg.MaxConnIdleTime = 10 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	return pool, nil
}

// Store persists save snapshots. The whole simulation state is one jsonb
// document per save; the row is the unit of durability, never partial state.
type Store struct {
	db *pgxpool.Pool
}

func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS saves (
			id         text PRIMARY KEY,
			artist     text NOT NULL,
			snapshot   jsonb NOT NULL,
			created_at timestamptz NOT NULL DEFAULT now(),
			updated_at timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("migrate saves: %w", err)
	}
	return nil
}

type SaveHeader struct {
	ID        string    `json:"id"`
	Artist    string    `json:"artist"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (s *Store) Put(ctx context.Context, id, artist string, snapshot []byte) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO saves (id, artist, snapshot)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET snapshot = EXCLUDED.snapshot, updated_at = now()
	`, id, artist, snapshot)
	if err != nil {
		return fmt.Errorf("put save %s: %w", id, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, id string) ([]byte, error) {
	var snapshot []byte
	err := s.db.QueryRow(ctx, `SELECT snapshot FROM saves WHERE id = $1`, id).Scan(&snapshot)
	if err == pgx.ErrNoRows {
		return nil, ErrSaveNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get save %s: %w", id, err)
	}
	return snapshot, nil
}

func (s *Store) List(ctx context.Context) ([]SaveHeader, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, artist, created_at, updated_at
		FROM saves
		ORDER BY updated_at DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list saves: %w", err)
	}
	defer rows.Close()

	var out []SaveHeader
	for rows.Next() {
		var h SaveHeader
		if err := rows.Scan(&h.ID, &h.Artist, &h.CreatedAt, &h.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan save header: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM saves WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete save %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSaveNotFound
	}
	return nil
}
