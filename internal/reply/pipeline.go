package reply

import (
	"context"
	"strings"
	"time"

	"github.com/enotara/mira/internal/completion"
	"github.com/enotara/mira/internal/memory"
	"github.com/enotara/mira/internal/observability"
	"github.com/enotara/mira/internal/policy"
)

// FallbackReply substitutes for an empty or whitespace-only completion.
const FallbackReply = "No reply generated."

// ServiceError reports a completion-service failure. The request is
// aborted; the record mutated so far is not persisted by the caller.
type ServiceError struct {
	cause error
}

func (e *ServiceError) Error() string { return "completion service failed: " + e.cause.Error() }
func (e *ServiceError) Unwrap() error { return e.cause }

// Detail returns the diagnostic string surfaced in the error response.
func (e *ServiceError) Detail() string { return e.cause.Error() }

// Pipeline produces the next assistant turn for a record and applies
// the output-shaping policy. It never touches storage: the caller loads
// the record before Run and persists it after Run succeeds.
type Pipeline struct {
	client  completion.Client
	pick    policy.RandSource
	metrics *observability.Metrics
}

func New(client completion.Client, pick policy.RandSource, metrics *observability.Metrics) *Pipeline {
	if pick == nil {
		pick = policy.DefaultRandSource
	}
	return &Pipeline{client: client, pick: pick, metrics: metrics}
}

// Run mutates record in place: it updates the context fields, appends
// the user turn, obtains a sanitized assistant reply, and appends it.
//
// On completion failure the user turn stays appended and a *ServiceError
// is returned. That one-sided turn is an accepted trade-off; it never
// reaches storage because the caller only saves after Run succeeds.
func (p *Pipeline) Run(ctx context.Context, record *memory.ConversationRecord, prompt string, project *string) (string, error) {
	if project != nil {
		v := *project
		record.LastProject = &v
	}
	task := prompt
	record.LastTask = &task
	record.Conversation = append(record.Conversation, memory.Turn{Role: memory.RoleUser, Content: prompt})

	start := time.Now()
	text, err := p.client.Complete(ctx, record.Conversation)
	if p.metrics != nil {
		p.metrics.CompletionLatency.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		return "", &ServiceError{cause: err}
	}

	if strings.TrimSpace(text) == "" {
		text = FallbackReply
	}

	text, hits := policy.SanitizeReply(text)
	if p.metrics != nil && hits > 0 {
		p.metrics.SanitizerHits.Add(float64(hits))
	}

	text, appended := policy.EnsureAffect(text, p.pick)
	if p.metrics != nil && appended {
		p.metrics.AffectAppended.Inc()
	}

	record.Conversation = append(record.Conversation, memory.Turn{Role: memory.RoleAssistant, Content: text})
	return text, nil
}
