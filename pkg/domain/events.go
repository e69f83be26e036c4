package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventResolve  EventType = "resolve"
	EventValidate EventType = "validate"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	ServiceID string    `json:"service_id,omitempty"`
}

// ResolveEvent reports a next-page resolution.
type ResolveEvent struct {
	EventBase
	PageID string `json:"page_id"`
	NextID string `json:"next_id,omitempty"`
	// Branch is the index of the matching branch, or -1 when the fallback applied.
	Branch int   `json:"branch"`
	Err    error `json:"-"`
}

// ValidateEvent reports a completed validation pass.
type ValidateEvent struct {
	EventBase
	Duration time.Duration `json:"duration"`
	Schema   int           `json:"schema_violations"`
	Graph    int           `json:"graph_violations"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnResolve  func(context.Context, *ResolveEvent)
	OnValidate func(context.Context, *ValidateEvent)
}
