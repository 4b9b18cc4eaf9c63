package memory

import (
	"encoding/json"
	"fmt"
)

// decodeRecord parses a stored record and checks its basic shape.
// Anything that does not look like a record written by this service is
// reported as an error so the caller can fall back to the default
// template.
func decodeRecord(data []byte) (ConversationRecord, error) {
	var rec ConversationRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return ConversationRecord{}, fmt.Errorf("decode record: %w", err)
	}
	if len(rec.Conversation) == 0 || rec.Conversation[0].Role != RoleSystem {
		return ConversationRecord{}, fmt.Errorf("decode record: missing leading system turn")
	}
	return rec, nil
}

func encodeRecord(rec ConversationRecord) ([]byte, error) {
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return data, nil
}
