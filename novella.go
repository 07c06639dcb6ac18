package novella

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/internal/runtime"
	"github.com/aretw0/novella/internal/validator"
	"github.com/aretw0/novella/pkg/adapters/yamlfs"
	"github.com/aretw0/novella/pkg/content"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
	"github.com/aretw0/novella/pkg/questions"
)

// Version is the release of the novella module.
const Version = "0.3.0"

// DefaultContentVersion is the content version directory read when none is configured.
const DefaultContentVersion = "v1"

// Engine is the high-level entry point for the novella library.
// It loads content once, keeps it behind an atomically swappable store,
// and exposes the session operations of the internal runtime.
type Engine struct {
	runtime        *runtime.Engine
	content        *content.Reloadable
	loader         ports.ContentLoader
	contentVersion string
	defaultLocale  string
	questions      *questions.Registry
	assetURL       ports.AssetURLBuilder
	hooks          domain.LifecycleHooks
	logger         *slog.Logger
	Name           string
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks. Repeated calls merge.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = e.hooks.Merge(hooks)
	}
}

// WithLoader injects a custom ContentLoader, bypassing the default YAML directory loader.
func WithLoader(l ports.ContentLoader) Option {
	return func(e *Engine) {
		e.loader = l
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithContentVersion selects the version directory read by the default loader (default: "v1").
func WithContentVersion(version string) Option {
	return func(e *Engine) {
		e.contentVersion = version
	}
}

// WithDefaultLocale sets the locale used when a player does not pick one (default: "en-US").
func WithDefaultLocale(locale string) Option {
	return func(e *Engine) {
		e.defaultLocale = locale
	}
}

// WithQuestions replaces the question generator registry, e.g. to seed it in tests.
func WithQuestions(r *questions.Registry) Option {
	return func(e *Engine) {
		e.questions = r
	}
}

// WithAssetURLBuilder overrides how asset paths become URLs.
func WithAssetURLBuilder(b ports.AssetURLBuilder) Option {
	return func(e *Engine) {
		e.assetURL = b
	}
}

// New loads the story content and builds an Engine.
// By default, content is read from <contentDir>/<version>/<locale>/ YAML files.
// If WithLoader is provided, contentDir can be empty.
func New(contentDir string, opts ...Option) (*Engine, error) {
	eng := &Engine{
		contentVersion: DefaultContentVersion,
		defaultLocale:  content.DefaultLocale,
	}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.loader == nil {
		if contentDir == "" {
			return nil, fmt.Errorf("contentDir is required when no custom loader is provided")
		}
		absPath, err := filepath.Abs(contentDir)
		if err != nil {
			return nil, fmt.Errorf("invalid path: %w", err)
		}
		eng.Name = filepath.Base(absPath)
		eng.loader = yamlfs.New(absPath, eng.contentVersion)
	} else if contentDir != "" {
		eng.Name = filepath.Base(contentDir)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.Name != "" {
		eng.logger = eng.logger.With("story", eng.Name)
	}
	if eng.questions == nil {
		eng.questions = questions.NewRegistry()
	}

	store, err := content.Load(eng.loader, eng.storeOptions()...)
	if err != nil {
		return nil, err
	}
	for _, w := range store.Warnings() {
		eng.logger.Warn("Content warning", "detail", w)
	}
	eng.content = content.NewReloadable(store)

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithLogger(eng.logger),
		runtime.WithQuestions(eng.questions),
	}
	if eng.assetURL != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithAssetURLBuilder(eng.assetURL))
	}
	eng.runtime = runtime.NewEngine(eng.content, runtimeOpts...)

	return eng, nil
}

func (e *Engine) storeOptions() []content.Option {
	return []content.Option{
		content.WithDefaultLocale(e.defaultLocale),
		content.WithValidation(validator.WithGeneratorCheck(e.questions.Has)),
	}
}

// Start begins a new session at the start node. An empty locale selects the default locale.
func (e *Engine) Start(ctx context.Context, playerName, locale string) (*domain.Session, *domain.Node, error) {
	if locale == "" {
		locale = e.defaultLocale
	}
	return e.runtime.Start(ctx, playerName, locale)
}

// GetNode displays a node by ID and records it in the session history.
func (e *Engine) GetNode(ctx context.Context, s *domain.Session, id string) (*domain.Session, *domain.Node, error) {
	return e.runtime.GetNode(ctx, s, id)
}

// Choose takes the choice at index among the choices shown for nodeID.
func (e *Engine) Choose(ctx context.Context, s *domain.Session, nodeID string, index int) (*domain.Session, *domain.Node, error) {
	return e.runtime.Choose(ctx, s, nodeID, index)
}

// Back returns to the previous node in the session history.
func (e *Engine) Back(ctx context.Context, s *domain.Session) (*domain.Session, *domain.Node, error) {
	return e.runtime.Back(ctx, s)
}

// SubmitAnswer checks an answer for the quiz node and moves to its correct or incorrect branch.
func (e *Engine) SubmitAnswer(ctx context.Context, s *domain.Session, nodeID, answer string) (*domain.Session, *domain.Node, error) {
	return e.runtime.SubmitAnswer(ctx, s, nodeID, answer)
}

// Locales returns the available locales, sorted.
func (e *Engine) Locales() []string {
	return e.content.Locales()
}

// HasLocale reports whether a story exists for the locale.
func (e *Engine) HasLocale(locale string) bool {
	return e.content.HasLocale(locale)
}

// UIText returns the interface strings for the locale, falling back to the default locale.
func (e *Engine) UIText(locale string) map[string]string {
	return e.content.UIText(locale)
}

// DefaultLocale returns the locale used when none is requested.
func (e *Engine) DefaultLocale() string {
	return e.defaultLocale
}

// Inspect returns every node of a locale for visualization tools.
func (e *Engine) Inspect(locale string) ([]domain.Node, error) {
	if !e.content.HasLocale(locale) {
		return nil, fmt.Errorf("%w: no story for locale %q", domain.ErrNodeNotFound, locale)
	}
	return e.content.Nodes(locale), nil
}

// Content returns the live content store.
func (e *Engine) Content() ports.ContentStore {
	return e.content
}

// Warnings returns the non-fatal content issues found by the last successful load.
func (e *Engine) Warnings() []string {
	return e.content.Current().Warnings()
}

// Reload re-reads the content. On failure the previous content stays active.
func (e *Engine) Reload() error {
	return e.content.Reload(e.loader, e.storeOptions()...)
}

// Watch reloads content whenever the loader reports a change, until ctx ends.
// Returns error if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) error {
	w, ok := e.loader.(ports.Watchable)
	if !ok {
		return fmt.Errorf("current loader does not support watching")
	}
	return e.content.WatchAndReload(ctx, e.loader, w, e.logger, e.storeOptions()...)
}

// Loader returns the underlying ContentLoader used by the engine.
func (e *Engine) Loader() ports.ContentLoader {
	return e.loader
}
