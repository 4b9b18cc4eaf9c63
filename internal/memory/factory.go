package memory

import (
	"context"
	"fmt"
	"strings"
)

// Options selects and configures a record store backend.
type Options struct {
	Backend      string // auto|file|sqlite|postgres|inmemory
	Dir          string
	SQLitePath   string
	DatabaseURL  string
	SystemPrompt string
}

// NewStore builds the configured backend. In auto mode it prefers
// postgres when DATABASE_URL is set, then sqlite when a path is set,
// and falls back to the local file directory. The resolved backend name
// is returned for logging and health reporting.
func NewStore(ctx context.Context, opts Options) (Store, string, error) {
	backend := strings.ToLower(strings.TrimSpace(opts.Backend))
	if backend == "" {
		backend = "auto"
	}

	switch backend {
	case "auto":
		if strings.TrimSpace(opts.DatabaseURL) != "" {
			s, err := NewPostgresStore(ctx, opts.DatabaseURL, opts.SystemPrompt)
			return s, "postgres", err
		}
		if strings.TrimSpace(opts.SQLitePath) != "" {
			s, err := NewSQLiteStore(opts.SQLitePath, opts.SystemPrompt)
			return s, "sqlite", err
		}
		s, err := NewFileStore(opts.Dir, opts.SystemPrompt)
		return s, "file", err
	case "file":
		s, err := NewFileStore(opts.Dir, opts.SystemPrompt)
		return s, "file", err
	case "sqlite":
		if strings.TrimSpace(opts.SQLitePath) == "" {
			return nil, "", fmt.Errorf("SQLITE_PATH is required for the sqlite backend")
		}
		s, err := NewSQLiteStore(opts.SQLitePath, opts.SystemPrompt)
		return s, "sqlite", err
	case "postgres":
		if strings.TrimSpace(opts.DatabaseURL) == "" {
			return nil, "", fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
		s, err := NewPostgresStore(ctx, opts.DatabaseURL, opts.SystemPrompt)
		return s, "postgres", err
	case "inmemory":
		return NewInMemoryStore(opts.SystemPrompt), "inmemory", nil
	default:
		return nil, "", fmt.Errorf("unsupported memory backend %q", opts.Backend)
	}
}
