package http

import (
	"net/http"

	"golang.org/x/text/language"
)

// negotiate picks the story locale for a request: ?lang= first, then Accept-Language,
// then the engine's default locale.
func (s *Server) negotiate(r *http.Request) string {
	fallback := s.engine.DefaultLocale()

	var available []string
	if s.engine.HasLocale(fallback) {
		available = append(available, fallback)
	}
	for _, l := range s.engine.Locales() {
		if l != fallback && s.engine.HasLocale(l) {
			available = append(available, l)
		}
	}
	if len(available) == 0 {
		return fallback
	}

	if lang := r.URL.Query().Get("lang"); lang != "" && s.engine.HasLocale(lang) {
		return lang
	}
	return Match(available, fallback, r.Header.Get("Accept-Language"))
}

// Match returns the entry of available that best fits an Accept-Language header.
// The first available locale is preferred when nothing matches.
func Match(available []string, fallback, acceptLanguage string) string {
	if len(available) == 0 || acceptLanguage == "" {
		return fallback
	}

	tags := make([]language.Tag, len(available))
	for i, l := range available {
		tags[i] = language.Make(l)
	}
	prefs, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(prefs) == 0 {
		return fallback
	}

	_, idx, conf := language.NewMatcher(tags).Match(prefs...)
	if conf == language.No {
		return fallback
	}
	return available[idx]
}
