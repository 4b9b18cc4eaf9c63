package completion

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/enotara/mira/internal/memory"
)

// Client converts an ordered list of role-tagged turns into one new
// assistant message. The service behind it is opaque; it either returns
// a completion string or fails.
type Client interface {
	Complete(ctx context.Context, turns []memory.Turn) (string, error)
}

// Config controls client construction. Temperature and MaxTokens are
// policy constants set by the service configuration, not per request.
type Config struct {
	Mode        string // auto|openai|mock
	APIKey      string
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewClient builds the configured completion client. Auto mode prefers
// the real OpenAI backend when a key is present and falls back to the
// deterministic mock so the service runs end-to-end without one. The
// resolved mode is returned for logging and health reporting.
func NewClient(cfg Config) (Client, string, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "auto":
		if strings.TrimSpace(cfg.APIKey) != "" {
			return NewOpenAIClient(cfg), "openai", nil
		}
		return NewMockClient(), "mock", nil
	case "openai":
		if strings.TrimSpace(cfg.APIKey) == "" {
			return nil, "", errors.New("an API key is required for openai mode")
		}
		return NewOpenAIClient(cfg), "openai", nil
	case "mock":
		return NewMockClient(), "mock", nil
	default:
		return nil, "", fmt.Errorf("unsupported completion mode %q", cfg.Mode)
	}
}
