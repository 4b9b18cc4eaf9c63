package completion

import (
	"context"
	"fmt"
	"strings"

	"github.com/enotara/mira/internal/memory"
)

// MockClient provides deterministic local replies when no completion
// backend is configured.
type MockClient struct{}

func NewMockClient() *MockClient { return &MockClient{} }

func (c *MockClient) Complete(ctx context.Context, turns []memory.Turn) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}

	var lastUser string
	for i := len(turns) - 1; i >= 0; i-- {
		if turns[i].Role == memory.RoleUser {
			lastUser = strings.TrimSpace(turns[i].Content)
			break
		}
	}
	if lastUser == "" {
		return "I am listening.", nil
	}
	return fmt.Sprintf("I hear you: %s", lastUser), nil
}
