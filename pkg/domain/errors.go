package domain

import (
	"errors"
	"fmt"
)

// ErrNodeNotFound is returned when a node ID does not resolve in the session's locale.
var ErrNodeNotFound = errors.New("node not found")

// ErrSessionNotInitialized is returned when an operation needs a started session.
var ErrSessionNotInitialized = errors.New("game session not initialized")

// ErrInvalidChoice is returned when a choice index is outside the filtered choice list.
var ErrInvalidChoice = errors.New("invalid choice or node ID")

// ErrNoHistory is returned when going back from the first node.
var ErrNoHistory = errors.New("no previous step to go back to")

// ErrNoPendingAnswer is returned when an answer is submitted but no question is active.
var ErrNoPendingAnswer = errors.New("no pending answer")

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ContentError reports a content-authoring defect found while loading or validating stories.
// It is fatal at boot and never produced by ordinary navigation.
type ContentError struct {
	Locale string
	Path   string
	Err    error
}

func (e *ContentError) Error() string {
	switch {
	case e.Locale != "" && e.Path != "":
		return fmt.Sprintf("content error in %s (%s): %v", e.Locale, e.Path, e.Err)
	case e.Locale != "":
		return fmt.Sprintf("content error in %s: %v", e.Locale, e.Err)
	case e.Path != "":
		return fmt.Sprintf("content error (%s): %v", e.Path, e.Err)
	default:
		return fmt.Sprintf("content error: %v", e.Err)
	}
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// IsContentError reports whether err wraps a ContentError.
func IsContentError(err error) bool {
	var ce *ContentError
	return errors.As(err, &ce)
}
