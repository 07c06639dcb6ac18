package http

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/sanitize"
)

type startRequest struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

type chooseRequest struct {
	NodeID      string `json:"node_id"`
	ChoiceIndex *int   `json:"choice_index"`
}

type answerRequest struct {
	NodeID string `json:"node_id"`
	Answer string `json:"answer"`
}

type localesResponse struct {
	Locales []string `json:"locales"`
	Default string   `json:"default"`
}

// step is one engine operation applied to a loaded session.
type step func(ctx context.Context, current *domain.Session) (*domain.Session, *domain.Node, error)

// Start handles POST /api/start. It resets the caller's session, or creates one.
func (s *Server) Start(w http.ResponseWriter, r *http.Request) {
	var body startRequest
	if !decodeBody(w, r, &body) {
		return
	}

	name, err := sanitize.Name(body.Name)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	locale := body.Locale
	if locale == "" {
		locale = s.negotiate(r)
	}
	if !s.engine.HasLocale(locale) {
		s.fail(w, r, fmt.Errorf("%w: no story for locale %q", domain.ErrNodeNotFound, locale))
		return
	}

	id, ok := s.sessionID(r)
	if !ok {
		id = uuid.NewString()
	}

	var node *domain.Node
	_, err = s.sessions.Update(r.Context(), id, func(*domain.Session) (*domain.Session, error) {
		next, n, err := s.engine.Start(r.Context(), name, locale)
		node = n
		return next, err
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setCookie(w, id)
	s.logger.Info("Session started", "session_id", id, "locale", locale)
	writeJSON(w, http.StatusOK, node)
}

// GetNode handles GET /api/node/{id}.
func (s *Server) GetNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.advance(w, r, func(ctx context.Context, cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.GetNode(ctx, cur, id)
	})
}

// Choose handles POST /api/choose.
func (s *Server) Choose(w http.ResponseWriter, r *http.Request) {
	var body chooseRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if body.ChoiceIndex == nil {
		s.fail(w, r, fmt.Errorf("%w: choice_index is required", domain.ErrInvalidChoice))
		return
	}
	s.advance(w, r, func(ctx context.Context, cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.Choose(ctx, cur, body.NodeID, *body.ChoiceIndex)
	})
}

// Back handles POST /api/back.
func (s *Server) Back(w http.ResponseWriter, r *http.Request) {
	s.advance(w, r, s.engine.Back)
}

// SubmitAnswer handles POST /api/submit_answer.
func (s *Server) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	var body answerRequest
	if !decodeBody(w, r, &body) {
		return
	}
	answer, err := sanitize.Input(body.Answer)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.advance(w, r, func(ctx context.Context, cur *domain.Session) (*domain.Session, *domain.Node, error) {
		return s.engine.SubmitAnswer(ctx, cur, body.NodeID, answer)
	})
}

// GetLocales handles GET /api/locales.
func (s *Server) GetLocales(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, localesResponse{
		Locales: s.engine.Locales(),
		Default: s.engine.DefaultLocale(),
	})
}

// GetUIText handles GET /api/ui/{locale}. Unknown locales get the default locale's strings.
func (s *Server) GetUIText(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.UIText(chi.URLParam(r, "locale")))
}

// advance runs op on the caller's session under the session lock and persists the result.
func (s *Server) advance(w http.ResponseWriter, r *http.Request, op step) {
	id, ok := s.sessionID(r)
	if !ok {
		s.fail(w, r, domain.ErrSessionNotInitialized)
		return
	}

	var node *domain.Node
	_, err := s.sessions.Update(r.Context(), id, func(cur *domain.Session) (*domain.Session, error) {
		if cur == nil {
			return nil, domain.ErrSessionNotInitialized
		}
		next, n, err := op(r.Context(), cur)
		if err != nil {
			return nil, err
		}
		node = n
		return next, nil
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	s.setCookie(w, id)
	writeJSON(w, http.StatusOK, node)
}

// sessionID returns the caller's session ID. Only well-formed UUIDs are accepted,
// so the value is always safe as a store key.
func (s *Server) sessionID(r *http.Request) (string, bool) {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

func (s *Server) setCookie(w http.ResponseWriter, id string) {
	c := &http.Cookie{
		Name:     s.cookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if s.cookieTTL > 0 {
		c.MaxAge = int(s.cookieTTL.Seconds())
	}
	http.SetCookie(w, c)
}
