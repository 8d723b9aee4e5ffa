// Package trace records the decision trail of a pipeline run. Events are
// sanitized on the way in: personal metadata values are redacted and long
// payloads truncated, so a trace is always safe to persist and expose.
package trace

import (
	"strings"
	"sync"
	"time"

	"github.com/dental-report-engine/internal/domain"
)

const maxPayloadRunes = 2048

// sensitiveKeys are metadata/map keys whose values never enter a trace.
var sensitiveKeys = map[string]bool{
	"name":       true,
	"first_name": true,
	"last_name":  true,
	"email":      true,
	"phone":      true,
	"address":    true,
	"birthdate":  true,
	"insurance":  true,
}

// Collector accumulates sanitized trace events for one run. It is safe for
// concurrent use although the pipeline itself records sequentially.
type Collector struct {
	mu     sync.Mutex
	events []domain.TraceEvent
}

// NewCollector creates an empty trace collector.
func NewCollector() *Collector {
	return &Collector{}
}

// Record appends one event. Input and output are sanitized copies; the
// caller's values are never mutated.
func (c *Collector) Record(stage, action string, input, output any, duration time.Duration) {
	event := domain.TraceEvent{
		Stage:      stage,
		Action:     action,
		Input:      sanitize(input),
		Output:     sanitize(output),
		DurationMS: duration.Milliseconds(),
		Timestamp:  time.Now().UTC(),
	}
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
}

// Events returns the recorded events in order.
func (c *Collector) Events() []domain.TraceEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.TraceEvent, len(c.events))
	copy(out, c.events)
	return out
}

// sanitize walks maps and slices, redacting sensitive keys and truncating
// oversized strings. Unknown types pass through untouched; they are encoded
// by the audit store, not interpreted here.
func sanitize(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case string:
		return truncate(val)
	case map[string]string:
		out := make(map[string]string, len(val))
		for k, s := range val {
			if sensitiveKeys[strings.ToLower(k)] {
				out[k] = "[redacted]"
				continue
			}
			out[k] = truncate(s)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			if sensitiveKeys[strings.ToLower(k)] {
				out[k] = "[redacted]"
				continue
			}
			out[k] = sanitize(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = sanitize(item)
		}
		return out
	default:
		return v
	}
}

func truncate(s string) string {
	runes := []rune(s)
	if len(runes) <= maxPayloadRunes {
		return s
	}
	return string(runes[:maxPayloadRunes]) + "…[truncated]"
}
