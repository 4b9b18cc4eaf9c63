package memory

import "context"

// Turn roles. The set is closed; no other role ever appears in a record.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one role-tagged message in a conversation transcript.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationRecord is the full per-user state: the ordered transcript
// plus the two scalar context fields. Transcript order is significant,
// it defines the prompt context sent to the completion service.
type ConversationRecord struct {
	UserID       string  `json:"userId"`
	LastProject  *string `json:"lastProject"`
	LastTask     *string `json:"lastTask"`
	Conversation []Turn  `json:"conversation"`
}

// NewRecord builds the default template for a user key: a single system
// turn and empty context fields. The system turn is inserted here and
// never mutated or duplicated afterwards.
func NewRecord(userID, systemPrompt string) ConversationRecord {
	return ConversationRecord{
		UserID:       userID,
		Conversation: []Turn{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Clone returns a deep copy so callers can mutate their working copy
// without aliasing stored state.
func (r ConversationRecord) Clone() ConversationRecord {
	out := r
	if r.LastProject != nil {
		v := *r.LastProject
		out.LastProject = &v
	}
	if r.LastTask != nil {
		v := *r.LastTask
		out.LastTask = &v
	}
	out.Conversation = make([]Turn, len(r.Conversation))
	copy(out.Conversation, r.Conversation)
	return out
}

// Store maps an opaque user key to its ConversationRecord.
//
// LoadOrDefault never fails: a missing, unreadable, or unparsable stored
// record yields a fresh default template seeded with the system prompt.
// Read failures are logged inside the store, not surfaced.
//
// Save overwrites the full record for the key. Callers treat a Save
// error as fail-soft: log it and still return the computed response.
//
// No locking or versioning is provided. Two concurrent requests for the
// same key both load, both append, and the last Save wins; single-writer
// discipline is the caller's responsibility.
type Store interface {
	LoadOrDefault(ctx context.Context, userKey string) ConversationRecord
	Save(ctx context.Context, userKey string, record ConversationRecord) error
	Close() error
}
