package memory

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration
)

const sqliteBusyTimeoutMS = 5000

// SQLiteStore persists conversation records in a local SQLite database.
// It uses modernc.org/sqlite (pure Go, no CGO) with WAL mode and a
// single connection, since SQLite serialises writes anyway.
type SQLiteStore struct {
	db           *sql.DB
	systemPrompt string
}

func NewSQLiteStore(path, systemPrompt string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("sqlite: create directory %s: %w", dir, err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %s: %w", path, err)
	}

	db.SetMaxOpenConns(1)

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, fmt.Sprintf("PRAGMA busy_timeout=%d", sqliteBusyTimeoutMS)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: set busy_timeout: %w", err)
	}

	if _, err := db.ExecContext(ctx,
		`CREATE TABLE IF NOT EXISTS memory_records (
			user_key TEXT PRIMARY KEY,
			record TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("sqlite: init schema: %w", err)
	}

	return &SQLiteStore{db: db, systemPrompt: systemPrompt}, nil
}

func (s *SQLiteStore) LoadOrDefault(ctx context.Context, userKey string) ConversationRecord {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT record FROM memory_records WHERE user_key=?`, userKey,
	).Scan(&data)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
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

func (s *SQLiteStore) Save(ctx context.Context, userKey string, record ConversationRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memory_records (user_key, record, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT (user_key) DO UPDATE SET record=excluded.record, updated_at=excluded.updated_at`,
		userKey,
		string(data),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("save record for %q: %w", userKey, err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
