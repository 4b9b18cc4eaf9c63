package memory

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore persists conversation records in PostgreSQL, one JSONB
// row per user key.
type PostgresStore struct {
	pool         *pgxpool.Pool
	systemPrompt string
}

func NewPostgresStore(ctx context.Context, databaseURL, systemPrompt string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	if err := initSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{pool: pool, systemPrompt: systemPrompt}, nil
}

func initSchema(ctx context.Context, pool *pgxpool.Pool) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS memory_records (
			user_key TEXT PRIMARY KEY,
			record JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);`,
	}

	for _, stmt := range stmts {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema failed on %q: %w", stmt, err)
		}
	}
	return nil
}

func (s *PostgresStore) LoadOrDefault(ctx context.Context, userKey string) ConversationRecord {
	var data []byte
	err := s.pool.QueryRow(ctx,
		`SELECT record FROM memory_records WHERE user_key=$1`,
		userKey,
	).Scan(&data)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			log.Printf("memory: read record for %q failed, using default: %v", userKey, err)
		}
		return NewRecord(userKey, s.systemPrompt)
	}

	rec, err := decodeRecord(data)
	if err != nil {
		log.Printf("memory: malformed record for %q, using default: %v", userKey, err)
		return NewRecord(userKey, s.systemPrompt)
	}
	return rec
}

func (s *PostgresStore) Save(ctx context.Context, userKey string, record ConversationRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO memory_records (user_key, record, updated_at)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (user_key) DO UPDATE SET record=EXCLUDED.record, updated_at=EXCLUDED.updated_at`,
		userKey,
		data,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save record for %q: %w", userKey, err)
	}
	return nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
