package domain

import (
	"fmt"
	"math"
	"reflect"
)

// PlayerState maps arbitrary flag names to primitive values (string, bool, numbers).
// Keys are overwritten, never deleted.
type PlayerState map[string]any

// Session is the mutable per-player progress record.
// It is owned by the caller (cookie, store, CLI) and passed through the engine by value.
type Session struct {
	Locale      string      `json:"locale"`
	PlayerName  string      `json:"player_name"`
	PlayerState PlayerState `json:"player_state"`

	// History is the stack of visited node IDs. Its tail is the current node.
	History []string `json:"history"`

	// PendingAnswer is the lowercased expected answer for the last quiz node shown.
	PendingAnswer *string `json:"pending_answer,omitempty"`
}

// NewSession creates a fresh session for a player. History is empty until the start node resolves.
func NewSession(locale, playerName string) *Session {
	return &Session{
		Locale:      locale,
		PlayerName:  playerName,
		PlayerState: make(PlayerState),
		History:     []string{},
	}
}

// Started reports whether the session has reached its first node.
func (s *Session) Started() bool {
	return s != nil && len(s.History) > 0
}

// CurrentNodeID returns the tail of the history, or "" for an unstarted session.
func (s *Session) CurrentNodeID() string {
	if !s.Started() {
		return ""
	}
	return s.History[len(s.History)-1]
}

// Snapshot returns a deep copy safe for independent mutation.
func (s *Session) Snapshot() *Session {
	if s == nil {
		return nil
	}
	next := *s
	next.PlayerState = make(PlayerState, len(s.PlayerState))
	for k, v := range s.PlayerState {
		next.PlayerState[k] = v
	}
	next.History = make([]string, len(s.History))
	copy(next.History, s.History)
	if s.PendingAnswer != nil {
		ans := *s.PendingAnswer
		next.PendingAnswer = &ans
	}
	return &next
}

// Validate checks the structure of a session restored from an external store.
func (s *Session) Validate() error {
	if s == nil {
		return fmt.Errorf("session is nil")
	}
	if s.Locale == "" {
		return fmt.Errorf("session is missing locale")
	}
	if s.History == nil {
		return fmt.Errorf("session is missing history")
	}
	for i, id := range s.History {
		if id == "" {
			return fmt.Errorf("session history entry %d is empty", i)
		}
	}
	return nil
}

// ValuesEqual compares a player state value with a requirement value.
// Numbers compare by value regardless of their Go type, since stores that
// round-trip through JSON turn integers into float64.
func ValuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		bf, ok := toFloat(b)
		return ok && af == bf
	}
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if ta.Comparable() {
		return a == b
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}
