package memory

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"testing"
)

const testPrompt = "You are a helpful companion."

func TestNewRecordTemplate(t *testing.T) {
	rec := NewRecord("user-1", testPrompt)

	if rec.UserID != "user-1" {
		t.Fatalf("UserID = %q, want %q", rec.UserID, "user-1")
	}
	if rec.LastProject != nil || rec.LastTask != nil {
		t.Fatalf("context fields = (%v, %v), want both nil", rec.LastProject, rec.LastTask)
	}
	if len(rec.Conversation) != 1 {
		t.Fatalf("len(Conversation) = %d, want 1", len(rec.Conversation))
	}
	if rec.Conversation[0].Role != RoleSystem || rec.Conversation[0].Content != testPrompt {
		t.Fatalf("first turn = %+v, want system prompt turn", rec.Conversation[0])
	}
}

func TestCloneIsolation(t *testing.T) {
	proj := "Alpha"
	rec := NewRecord("user-1", testPrompt)
	rec.LastProject = &proj

	clone := rec.Clone()
	clone.Conversation = append(clone.Conversation, Turn{Role: RoleUser, Content: "hi"})
	*clone.LastProject = "Beta"

	if len(rec.Conversation) != 1 {
		t.Fatalf("original transcript grew to %d turns", len(rec.Conversation))
	}
	if *rec.LastProject != "Alpha" {
		t.Fatalf("original LastProject = %q, want %q", *rec.LastProject, "Alpha")
	}
}

func TestInMemoryStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore(testPrompt)

	rec := store.LoadOrDefault(ctx, "user-1")
	if len(rec.Conversation) != 1 {
		t.Fatalf("fresh record has %d turns, want 1", len(rec.Conversation))
	}

	rec.Conversation = append(rec.Conversation,
		Turn{Role: RoleUser, Content: "hello"},
		Turn{Role: RoleAssistant, Content: "hi there"},
	)
	if err := store.Save(ctx, "user-1", rec); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	// Mutating the saved copy must not leak into the store.
	rec.Conversation[1].Content = "mutated"

	got := store.LoadOrDefault(ctx, "user-1")
	if len(got.Conversation) != 3 {
		t.Fatalf("loaded %d turns, want 3", len(got.Conversation))
	}
	if got.Conversation[1].Content != "hello" {
		t.Fatalf("user turn = %q, want %q", got.Conversation[1].Content, "hello")
	}
}

func TestFileStoreDefaultsOnMissing(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), testPrompt)
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}

	rec := store.LoadOrDefault(context.Background(), "never-seen")
	if len(rec.Conversation) != 1 || rec.Conversation[0].Role != RoleSystem {
		t.Fatalf("default record = %+v, want single system turn", rec.Conversation)
	}
}

func TestFileStoreRoundtrip(t *testing.T) {
	ctx := context.Background()
	store, err := NewFileStore(t.TempDir(), testPrompt)
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}

	rec := store.LoadOrDefault(ctx, "user-1")
	task := "plan the week"
	rec.LastTask = &task
	rec.Conversation = append(rec.Conversation,
		Turn{Role: RoleUser, Content: "plan the week"},
		Turn{Role: RoleAssistant, Content: "let's start with Monday"},
	)
	if err := store.Save(ctx, "user-1", rec); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	got := store.LoadOrDefault(ctx, "user-1")
	if got.LastTask == nil || *got.LastTask != "plan the week" {
		t.Fatalf("LastTask = %v, want %q", got.LastTask, "plan the week")
	}
	if len(got.Conversation) != 3 {
		t.Fatalf("loaded %d turns, want 3", len(got.Conversation))
	}
	if got.Conversation[2].Role != RoleAssistant {
		t.Fatalf("tail role = %q, want assistant", got.Conversation[2].Role)
	}
}

func TestFileStoreDefaultsOnCorruptRecord(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testPrompt)
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}

	path := filepath.Join(dir, url.QueryEscape("user-1")+".json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}

	rec := store.LoadOrDefault(context.Background(), "user-1")
	if len(rec.Conversation) != 1 || rec.Conversation[0].Role != RoleSystem {
		t.Fatalf("corrupt record not replaced by default: %+v", rec.Conversation)
	}
}

func TestFileStoreDefaultsOnWrongShape(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, testPrompt)
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}

	// Valid JSON but no leading system turn.
	path := filepath.Join(dir, url.QueryEscape("user-1")+".json")
	if err := os.WriteFile(path, []byte(`{"userId":"user-1","conversation":[]}`), 0o600); err != nil {
		t.Fatalf("write record: %v", err)
	}

	rec := store.LoadOrDefault(context.Background(), "user-1")
	if len(rec.Conversation) != 1 || rec.Conversation[0].Content != testPrompt {
		t.Fatalf("shapeless record not replaced by default: %+v", rec.Conversation)
	}
}

func TestFileStoreEscapesKeys(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store, err := NewFileStore(dir, testPrompt)
	if err != nil {
		t.Fatalf("NewFileStore error = %v", err)
	}

	key := "../outside/../../etc"
	rec := store.LoadOrDefault(ctx, key)
	rec.Conversation = append(rec.Conversation, Turn{Role: RoleUser, Content: "hi"})
	if err := store.Save(ctx, key, rec); err != nil {
		t.Fatalf("Save error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("wrote %d files in dir, want 1", len(entries))
	}

	got := store.LoadOrDefault(ctx, key)
	if len(got.Conversation) != 2 {
		t.Fatalf("loaded %d turns, want 2", len(got.Conversation))
	}
}

func TestFactorySelection(t *testing.T) {
	ctx := context.Background()

	store, backend, err := NewStore(ctx, Options{Backend: "inmemory", SystemPrompt: testPrompt})
	if err != nil {
		t.Fatalf("inmemory error = %v", err)
	}
	defer store.Close()
	if backend != "inmemory" {
		t.Fatalf("backend = %q, want inmemory", backend)
	}

	store2, backend, err := NewStore(ctx, Options{Backend: "auto", Dir: t.TempDir(), SystemPrompt: testPrompt})
	if err != nil {
		t.Fatalf("auto error = %v", err)
	}
	defer store2.Close()
	if backend != "file" {
		t.Fatalf("auto backend = %q, want file", backend)
	}

	if _, _, err := NewStore(ctx, Options{Backend: "sqlite", SystemPrompt: testPrompt}); err == nil {
		t.Fatalf("sqlite without path should fail")
	}
	if _, _, err := NewStore(ctx, Options{Backend: "postgres", SystemPrompt: testPrompt}); err == nil {
		t.Fatalf("postgres without url should fail")
	}
	if _, _, err := NewStore(ctx, Options{Backend: "bogus", SystemPrompt: testPrompt}); err == nil {
		t.Fatalf("unsupported backend should fail")
	}
}
