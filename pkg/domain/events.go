package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventNodeEnter EventType = "node_enter"
	EventChoice    EventType = "choice"
	EventAnswer    EventType = "answer"
	EventBack      EventType = "back"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	Locale    string    `json:"locale"`
}

// NodeEvent is emitted whenever a node is resolved for display.
type NodeEvent struct {
	EventBase
	NodeID string `json:"node_id"`
}

// ChoiceEvent is emitted when a player takes a choice.
type ChoiceEvent struct {
	EventBase
	FromNodeID  string `json:"from_node_id"`
	ToNodeID    string `json:"to_node_id"`
	ChoiceIndex int    `json:"choice_index"`
	SetState    string `json:"set_state,omitempty"`
}

// AnswerEvent is emitted when a player submits an answer.
type AnswerEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	Correct  bool   `json:"correct"`
	ToNodeID string `json:"to_node_id"`
}

// BackEvent is emitted when a player steps back in history.
type BackEvent struct {
	EventBase
	FromNodeID string `json:"from_node_id"`
	ToNodeID   string `json:"to_node_id"`
}

// LifecycleHooks defines callbacks for engine observability.
type LifecycleHooks struct {
	OnNodeEnter func(context.Context, *NodeEvent)
	OnChoice    func(context.Context, *ChoiceEvent)
	OnAnswer    func(context.Context, *AnswerEvent)
	OnBack      func(context.Context, *BackEvent)
}

// Merge returns hooks that call h first and then other.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnNodeEnter: chain(h.OnNodeEnter, other.OnNodeEnter),
		OnChoice:    chain(h.OnChoice, other.OnChoice),
		OnAnswer:    chain(h.OnAnswer, other.OnAnswer),
		OnBack:      chain(h.OnBack, other.OnBack),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
