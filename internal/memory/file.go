package memory

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
)

// FileStore keeps one JSON file per user key in a local directory. This
// is the canonical substrate: a process-local disk that is NOT durable
// across redeploys on ephemeral hosting. That ephemerality is a
// documented property of the deployment, not a bug to fix here.
type FileStore struct {
	dir          string
	systemPrompt string
}

func NewFileStore(dir, systemPrompt string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create memory dir %s: %w", dir, err)
	}
	return &FileStore{dir: dir, systemPrompt: systemPrompt}, nil
}

// path maps an opaque user key to a filename. Keys are percent-escaped
// so path separators and other unsafe runes cannot escape the directory.
func (s *FileStore) path(userKey string) string {
	return filepath.Join(s.dir, url.QueryEscape(userKey)+".json")
}

func (s *FileStore) LoadOrDefault(_ context.Context, userKey string) ConversationRecord {
	data, err := os.ReadFile(s.path(userKey))
	if err != nil {
		if !os.IsNotExist(err) {
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

func (s *FileStore) Save(_ context.Context, userKey string, record ConversationRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}
	// Write-then-rename so a crashed write never leaves a half-formed
	// record behind for the next load to trip over.
	tmp := s.path(userKey) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write record for %q: %w", userKey, err)
	}
	if err := os.Rename(tmp, s.path(userKey)); err != nil {
		return fmt.Errorf("commit record for %q: %w", userKey, err)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }
