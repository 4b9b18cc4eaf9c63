package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/enotara/mira/internal/memory"
)

// watchEvent is one message on a transcript watch socket: a full
// snapshot on connect, then one event per completed exchange.
type watchEvent struct {
	Type   string        `json:"type"` // snapshot|exchange
	UserID string        `json:"userId"`
	Turns  []memory.Turn `json:"turns"`
	Memory memorySummary `json:"memory"`
}

type watchHub struct {
	mu   sync.Mutex
	subs map[string]map[chan watchEvent]struct{}
}

func newWatchHub() *watchHub {
	return &watchHub{subs: make(map[string]map[chan watchEvent]struct{})}
}

func (h *watchHub) Subscribe(userKey string) (<-chan watchEvent, func()) {
	ch := make(chan watchEvent, 16)
	h.mu.Lock()
	if h.subs[userKey] == nil {
		h.subs[userKey] = make(map[chan watchEvent]struct{})
	}
	h.subs[userKey][ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userKey]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userKey)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish pushes the newest exchange (the trailing user/assistant pair)
// to every watcher of the key. Slow watchers miss events rather than
// stalling the request path.
func (h *watchHub) Publish(userKey string, rec memory.ConversationRecord) {
	turns := rec.Conversation
	if len(turns) > 2 {
		turns = turns[len(turns)-2:]
	}
	ev := watchEvent{
		Type:   "exchange",
		UserID: userKey,
		Turns:  turns,
		Memory: memorySummary{LastProject: rec.LastProject, LastTask: rec.LastTask},
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userKey] {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Server) handleWatch(w http.ResponseWriter, r *http.Request) {
	userKey := strings.TrimSpace(r.URL.Query().Get("user_id"))
	if userKey == "" {
		respondJSON(w, http.StatusBadRequest, map[string]string{"error": "Missing userId."})
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	s.metrics.WatchConnections.Inc()
	defer s.metrics.WatchConnections.Dec()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events, unsubscribe := s.watch.Subscribe(userKey)
	defer unsubscribe()

	rec := s.store.LoadOrDefault(ctx, userKey)
	snapshot := watchEvent{
		Type:   "snapshot",
		UserID: userKey,
		Turns:  rec.Conversation,
		Memory: memorySummary{LastProject: rec.LastProject, LastTask: rec.LastTask},
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	if err := conn.WriteJSON(snapshot); err != nil {
		return
	}

	// Reader only watches for the peer going away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := conn.WriteJSON(ev); err != nil {
				return
			}
		}
	}
}
