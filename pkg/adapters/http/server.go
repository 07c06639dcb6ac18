// Package http exposes the story engine as a JSON API with cookie-bound sessions.
package http

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/aretw0/novella/internal/logging"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/observability"
	"github.com/aretw0/novella/pkg/session"
)

// DefaultCookieName holds the session ID on the client.
const DefaultCookieName = "novella_session"

// Engine defines the story operations and content queries the API needs.
type Engine interface {
	Start(ctx context.Context, playerName, locale string) (*domain.Session, *domain.Node, error)
	GetNode(ctx context.Context, s *domain.Session, id string) (*domain.Session, *domain.Node, error)
	Choose(ctx context.Context, s *domain.Session, nodeID string, index int) (*domain.Session, *domain.Node, error)
	Back(ctx context.Context, s *domain.Session) (*domain.Session, *domain.Node, error)
	SubmitAnswer(ctx context.Context, s *domain.Session, nodeID, answer string) (*domain.Session, *domain.Node, error)

	Locales() []string
	HasLocale(locale string) bool
	UIText(locale string) map[string]string
	DefaultLocale() string
}

// Server binds the engine to HTTP routes.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	logger    *slog.Logger
	metrics   *observability.Metrics
	assets    fs.FS
	cookie    string
	cookieTTL time.Duration
	secure    bool
	ready     func(context.Context) error
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics records request durations and serves /metrics.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithAssets serves /content/{version}/{locale}/* from fsys, rooted at the content directory.
func WithAssets(fsys fs.FS) Option {
	return func(s *Server) {
		s.assets = fsys
	}
}

// WithCookie configures the session cookie. A zero ttl makes it a browser-session cookie.
func WithCookie(name string, ttl time.Duration, secure bool) Option {
	return func(s *Server) {
		if name != "" {
			s.cookie = name
		}
		s.cookieTTL = ttl
		s.secure = secure
	}
}

// WithReadinessCheck makes /healthz report 503 while check fails (e.g. Redis is unreachable).
func WithReadinessCheck(check func(context.Context) error) Option {
	return func(s *Server) {
		s.ready = check
	}
}

// NewServer creates a Server. Sessions are read and written through the manager,
// which serializes concurrent requests for the same player.
func NewServer(engine Engine, sessions *session.Manager, opts ...Option) *Server {
	s := &Server{
		engine:   engine,
		sessions: sessions,
		logger:   logging.NewNop(),
		cookie:   DefaultCookieName,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewHandler is shorthand for NewServer(...).Handler().
func NewHandler(engine Engine, sessions *session.Manager, opts ...Option) http.Handler {
	return NewServer(engine, sessions, opts...).Handler()
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/", s.Index)
	r.Get("/{lang}/", s.Home)

	r.Route("/api", func(r chi.Router) {
		r.Post("/start", s.Start)
		r.Get("/node/{id}", s.GetNode)
		r.Post("/choose", s.Choose)
		r.Post("/back", s.Back)
		r.Post("/submit_answer", s.SubmitAnswer)
		r.Get("/locales", s.GetLocales)
		r.Get("/ui/{locale}", s.GetUIText)
	})

	r.Get("/content/{version}/{locale}/*", s.ServeAsset)
	r.Get("/healthz", s.GetHealth)
	r.Get("/status", s.GetStatus)
	if s.metrics != nil {
		r.Handle("/metrics", s.metrics.Handler())
	}
	return r
}

// observe logs each request and feeds the duration histogram, labelled by route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		elapsed := time.Since(start)
		if s.metrics != nil {
			s.metrics.ObserveRequest(route, r.Method, ww.Status(), elapsed)
		}
		s.logger.Debug("HTTP request",
			"method", r.Method,
			"route", route,
			"status", ww.Status(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
