package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
	"github.com/aretw0/novella/pkg/questions"
)

// Engine drives a player's session through the story graph.
// It holds no per-player state: every operation takes a session and returns an updated copy,
// leaving the caller's session untouched when it fails.
type Engine struct {
	content   ports.ContentStore
	questions *questions.Registry
	assetURL  ports.AssetURLBuilder
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	now       func() time.Time
}

// EngineOption configures the Engine.
type EngineOption func(*Engine)

// WithLogger sets the logger used for diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithAssetURLBuilder overrides how asset paths become URLs.
func WithAssetURLBuilder(b ports.AssetURLBuilder) EngineOption {
	return func(e *Engine) {
		e.assetURL = b
	}
}

// WithQuestions sets the question generator registry.
func WithQuestions(r *questions.Registry) EngineOption {
	return func(e *Engine) {
		if r != nil {
			e.questions = r
		}
	}
}

// WithClock overrides the time source used for event timestamps.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		if now != nil {
			e.now = now
		}
	}
}

// NewEngine creates an engine reading from the given content store.
func NewEngine(content ports.ContentStore, opts ...EngineOption) *Engine {
	e := &Engine{
		content:   content,
		questions: questions.NewRegistry(),
		assetURL:  DefaultAssetURL,
		logger:    logging.NewNop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Content returns the store the engine reads from.
func (e *Engine) Content() ports.ContentStore {
	return e.content
}

// Start begins a fresh session at the start node.
// A blank player name becomes the hero placeholder.
func (e *Engine) Start(ctx context.Context, playerName, locale string) (*domain.Session, *domain.Node, error) {
	playerName = strings.TrimSpace(playerName)
	if playerName == "" {
		playerName = domain.HeroToken
	}

	s := domain.NewSession(locale, playerName)
	node, ok := e.display(ctx, s, domain.StartNodeID)
	if !ok {
		return nil, nil, &domain.ContentError{
			Locale: locale,
			Err:    fmt.Errorf("%w: %q", domain.ErrNodeNotFound, domain.StartNodeID),
		}
	}
	s.History = []string{domain.StartNodeID}

	e.logger.Debug("Session started", "locale", locale, "player", playerName)
	return s, node, nil
}

// GetNode displays any node by ID. History grows only when the node differs from the current one.
func (e *Engine) GetNode(ctx context.Context, current *domain.Session, id string) (*domain.Session, *domain.Node, error) {
	s, err := e.active(current)
	if err != nil {
		return nil, nil, err
	}

	node, ok := e.display(ctx, s, id)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, id)
	}
	if s.CurrentNodeID() != id {
		s.History = append(s.History, id)
	}
	return s, node, nil
}

// Choose takes the choice at index in the list the player was shown for nodeID.
// The index is relative to the filtered choices, never the raw node.
func (e *Engine) Choose(ctx context.Context, current *domain.Session, nodeID string, index int) (*domain.Session, *domain.Node, error) {
	s, err := e.active(current)
	if err != nil {
		return nil, nil, err
	}

	shown, ok := ResolveNode(e.content, s.Locale, nodeID, s.PlayerState, nil)
	if !ok {
		return nil, nil, fmt.Errorf("%w: unknown node %q", domain.ErrInvalidChoice, nodeID)
	}
	if index < 0 || index >= len(shown.Choices) {
		return nil, nil, fmt.Errorf("%w: index %d out of %d visible choices at %q", domain.ErrInvalidChoice, index, len(shown.Choices), nodeID)
	}

	choice := shown.Choices[index]
	s.PlayerState = ApplyAction(choice, s.PlayerState)
	s.History = append(s.History, choice.NextNode)

	node, ok := e.display(ctx, s, choice.NextNode)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, choice.NextNode)
	}

	if e.hooks.OnChoice != nil {
		ev := &domain.ChoiceEvent{
			EventBase:   e.event(domain.EventChoice, s.Locale),
			FromNodeID:  nodeID,
			ToNodeID:    choice.NextNode,
			ChoiceIndex: index,
		}
		if choice.Action != nil {
			ev.SetState = choice.Action.SetState
		}
		e.hooks.OnChoice(ctx, ev)
	}
	return s, node, nil
}

// Back pops the current node and re-resolves the previous one against the current state.
func (e *Engine) Back(ctx context.Context, current *domain.Session) (*domain.Session, *domain.Node, error) {
	s, err := e.active(current)
	if err != nil {
		return nil, nil, err
	}
	if len(s.History) < 2 {
		return nil, nil, domain.ErrNoHistory
	}

	from := s.CurrentNodeID()
	s.History = s.History[:len(s.History)-1]
	to := s.CurrentNodeID()

	node, ok := e.display(ctx, s, to)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, to)
	}

	if e.hooks.OnBack != nil {
		e.hooks.OnBack(ctx, &domain.BackEvent{
			EventBase:  e.event(domain.EventBack, s.Locale),
			FromNodeID: from,
			ToNodeID:   to,
		})
	}
	return s, node, nil
}

// SubmitAnswer checks a quiz answer and branches on the node's prompt.
// The comparison ignores case and surrounding whitespace.
func (e *Engine) SubmitAnswer(ctx context.Context, current *domain.Session, nodeID, raw string) (*domain.Session, *domain.Node, error) {
	s, err := e.active(current)
	if err != nil {
		return nil, nil, err
	}

	original, ok := e.content.Node(s.Locale, nodeID)
	if !ok || original.InputPrompt == nil {
		return nil, nil, fmt.Errorf("%w: %q has no input prompt", domain.ErrNodeNotFound, nodeID)
	}
	if s.PendingAnswer == nil {
		return nil, nil, domain.ErrNoPendingAnswer
	}

	correct := normalizeAnswer(raw) == *s.PendingAnswer
	next := original.InputPrompt.OnIncorrect
	if correct {
		next = original.InputPrompt.OnCorrect
	}
	s.PendingAnswer = nil

	node, ok := e.display(ctx, s, next)
	if !ok {
		return nil, nil, fmt.Errorf("%w: %q", domain.ErrNodeNotFound, next)
	}
	s.History = append(s.History, next)

	if e.hooks.OnAnswer != nil {
		e.hooks.OnAnswer(ctx, &domain.AnswerEvent{
			EventBase: e.event(domain.EventAnswer, s.Locale),
			NodeID:    nodeID,
			Correct:   correct,
			ToNodeID:  next,
		})
	}
	return s, node, nil
}

// active returns a private copy of a started, well-formed session.
func (e *Engine) active(current *domain.Session) (*domain.Session, error) {
	if !current.Started() {
		return nil, domain.ErrSessionNotInitialized
	}
	if err := current.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSessionNotInitialized, err)
	}
	return current.Snapshot(), nil
}

// display runs the full pipeline for a node: resolve, personalize, then question activation.
func (e *Engine) display(ctx context.Context, s *domain.Session, id string) (*domain.Node, bool) {
	resolved, ok := ResolveNode(e.content, s.Locale, id, s.PlayerState, e.assetURL)
	if !ok {
		e.logger.Debug("Node not found", "locale", s.Locale, "node_id", id)
		return nil, false
	}

	node := Personalize(resolved, s.PlayerName)
	e.activateQuestion(&node, s)

	if e.hooks.OnNodeEnter != nil {
		e.hooks.OnNodeEnter(ctx, &domain.NodeEvent{
			EventBase: e.event(domain.EventNodeEnter, s.Locale),
			NodeID:    id,
		})
	}
	return &node, true
}

func (e *Engine) event(t domain.EventType, locale string) domain.EventBase {
	return domain.EventBase{Timestamp: e.now(), Type: t, Locale: locale}
}
