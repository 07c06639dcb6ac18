package http

import (
	"io/fs"
	"net/http"
	"path"

	"github.com/go-chi/chi/v5"

	"github.com/aretw0/novella"
)

type homeResponse struct {
	Locale  string            `json:"locale"`
	Locales []string          `json:"locales"`
	UI      map[string]string `json:"ui"`
}

// Index handles GET / by redirecting to the negotiated locale's home.
func (s *Server) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/"+s.negotiate(r)+"/", http.StatusFound)
}

// Home handles GET /{lang}/ with the UI bundle the client needs to draw its shell.
// Unknown locales redirect to the default one.
func (s *Server) Home(w http.ResponseWriter, r *http.Request) {
	lang := chi.URLParam(r, "lang")
	if !s.engine.HasLocale(lang) {
		http.Redirect(w, r, "/"+s.engine.DefaultLocale()+"/", http.StatusFound)
		return
	}
	writeJSON(w, http.StatusOK, homeResponse{
		Locale:  lang,
		Locales: s.engine.Locales(),
		UI:      s.engine.UIText(lang),
	})
}

// ServeAsset handles GET /content/{version}/{locale}/*.
// Only regular files below the content root are served.
func (s *Server) ServeAsset(w http.ResponseWriter, r *http.Request) {
	if s.assets == nil {
		http.NotFound(w, r)
		return
	}
	version, locale, rest := chi.URLParam(r, "version"), chi.URLParam(r, "locale"), chi.URLParam(r, "*")
	for _, part := range []string{version, locale, rest} {
		if !fs.ValidPath(part) || part == "." {
			http.NotFound(w, r)
			return
		}
	}
	name := path.Join(version, locale, rest)
	info, err := fs.Stat(s.assets, name)
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	http.ServeFileFS(w, r, s.assets, name)
}

// GetHealth handles GET /healthz.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			s.logger.Warn("Readiness check failed", "err", err)
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetStatus handles GET /status.
func (s *Server) GetStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"app":            "novella",
		"version":        novella.Version,
		"default_locale": s.engine.DefaultLocale(),
		"locales":        s.engine.Locales(),
	})
}
