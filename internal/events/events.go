package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type Kind string

const (
	KindActionApplied    Kind = "action_applied"
	KindCatalogCompleted Kind = "catalog_completed"
)

type Event struct {
	Kind             Kind      `json:"kind"`
	SessionID        string    `json:"session_id"`
	ActionID         string    `json:"action_id,omitempty"`
	AppliedCount     int       `json:"applied_count"`
	TotalCount       int       `json:"total_count"`
	EstimatedSavings float64   `json:"estimated_savings"`
	EstimatedROI     float64   `json:"estimated_roi_percent"`
	At               time.Time `json:"at"`
}

// Notifier delivers recommendation events. Implementations must not block
// past ctx.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

type Nop struct{}

func (Nop) Notify(context.Context, Event) error { return nil }

func Encode(e Event) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return b, nil
}

func Decode(payload []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(payload, &e); err != nil {
		return Event{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	switch e.Kind {
	case KindActionApplied, KindCatalogCompleted:
	default:
		return Event{}, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.SessionID == "" {
		return Event{}, fmt.Errorf("event %s without session id", e.Kind)
	}
	return e, nil
}
