package completion

import (
	"context"
	"strings"
	"testing"

	"github.com/enotara/mira/internal/memory"
)

func TestNewClientModes(t *testing.T) {
	client, mode, err := NewClient(Config{Mode: "auto"})
	if err != nil {
		t.Fatalf("auto without key error = %v", err)
	}
	if mode != "mock" {
		t.Fatalf("auto without key mode = %q, want mock", mode)
	}
	if _, ok := client.(*MockClient); !ok {
		t.Fatalf("auto without key client = %T, want *MockClient", client)
	}

	_, mode, err = NewClient(Config{Mode: "auto", APIKey: "sk-test", Model: "gpt-4o-mini"})
	if err != nil {
		t.Fatalf("auto with key error = %v", err)
	}
	if mode != "openai" {
		t.Fatalf("auto with key mode = %q, want openai", mode)
	}

	if _, _, err := NewClient(Config{Mode: "openai"}); err == nil {
		t.Fatalf("openai mode without key should fail")
	}
	if _, _, err := NewClient(Config{Mode: "bogus"}); err == nil {
		t.Fatalf("unsupported mode should fail")
	}
}

func TestMockClientEchoesLastUserTurn(t *testing.T) {
	client := NewMockClient()

	text, err := client.Complete(context.Background(), []memory.Turn{
		{Role: memory.RoleSystem, Content: "persona"},
		{Role: memory.RoleUser, Content: "older question"},
		{Role: memory.RoleAssistant, Content: "older answer"},
		{Role: memory.RoleUser, Content: "what now?"},
	})
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if !strings.Contains(text, "what now?") {
		t.Fatalf("mock reply = %q, want echo of last user turn", text)
	}

	text, err = client.Complete(context.Background(), []memory.Turn{
		{Role: memory.RoleSystem, Content: "persona"},
	})
	if err != nil {
		t.Fatalf("Complete error = %v", err)
	}
	if text == "" {
		t.Fatalf("mock reply empty for system-only transcript")
	}
}

func TestMockClientHonorsCancellation(t *testing.T) {
	client := NewMockClient()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := client.Complete(ctx, nil); err == nil {
		t.Fatalf("Complete with canceled context should fail")
	}
}
