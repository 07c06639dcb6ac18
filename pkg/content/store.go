// Package content holds the loaded, immutable story content shared by every session.
package content

import (
	"fmt"
	"sort"

	"github.com/aretw0/novella/internal/validator"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// DefaultLocale is used for UI text fallback when no other default is configured.
const DefaultLocale = "en-US"

// Store is an immutable snapshot of every locale bundle.
// It satisfies ports.ContentStore and is safe for concurrent readers.
type Store struct {
	version       string
	defaultLocale string
	bundles       map[string]domain.LocaleBundle
	locales       []string
	warnings      []string
}

var _ ports.ContentStore = (*Store)(nil)

// Option configures store construction.
type Option func(*options)

type options struct {
	defaultLocale string
	validate      []validator.Option
}

// WithDefaultLocale sets the locale used for UI text fallback.
func WithDefaultLocale(locale string) Option {
	return func(o *options) {
		if locale != "" {
			o.defaultLocale = locale
		}
	}
}

// WithValidation forwards options to the load-time validator.
func WithValidation(opts ...validator.Option) Option {
	return func(o *options) {
		o.validate = append(o.validate, opts...)
	}
}

// NewStore validates the bundles and freezes them into a Store.
// Authoring defects are returned as a *domain.ContentError.
func NewStore(version string, bundles map[string]domain.LocaleBundle, opts ...Option) (*Store, error) {
	o := &options{defaultLocale: DefaultLocale}
	for _, opt := range opts {
		opt(o)
	}

	res := validator.ValidateBundles(bundles, o.validate...)
	if err := res.Err(); err != nil {
		return nil, err
	}

	s := &Store{
		version:       version,
		defaultLocale: o.defaultLocale,
		bundles:       make(map[string]domain.LocaleBundle, len(bundles)),
		warnings:      res.Warnings,
	}
	for locale, b := range bundles {
		nodes := make(map[string]domain.Node, len(b.Nodes))
		for id, n := range b.Nodes {
			nodes[id] = n.Clone()
		}
		ui := make(map[string]string, len(b.UIText))
		for k, v := range b.UIText {
			ui[k] = v
		}
		s.bundles[locale] = domain.LocaleBundle{Locale: locale, Nodes: nodes, UIText: ui}
		s.locales = append(s.locales, locale)
	}
	sort.Strings(s.locales)

	return s, nil
}

// Load reads every bundle from the loader and builds a Store from them.
func Load(loader ports.ContentLoader, opts ...Option) (*Store, error) {
	bundles, err := loader.LoadLocales()
	if err != nil {
		if domain.IsContentError(err) {
			return nil, err
		}
		return nil, &domain.ContentError{Err: fmt.Errorf("load locales: %w", err)}
	}
	return NewStore(loader.Version(), bundles, opts...)
}

func (s *Store) Node(locale, id string) (domain.Node, bool) {
	b, ok := s.bundles[locale]
	if !ok {
		return domain.Node{}, false
	}
	n, ok := b.Nodes[id]
	if !ok {
		return domain.Node{}, false
	}
	return n.Clone(), true
}

func (s *Store) Nodes(locale string) []domain.Node {
	b, ok := s.bundles[locale]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(b.Nodes))
	for id := range b.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]domain.Node, 0, len(ids))
	for _, id := range ids {
		out = append(out, b.Nodes[id].Clone())
	}
	return out
}

// Locales returns every locale with a story or UI text, sorted.
func (s *Store) Locales() []string {
	out := make([]string, len(s.locales))
	copy(out, s.locales)
	return out
}

func (s *Store) HasLocale(locale string) bool {
	b, ok := s.bundles[locale]
	return ok && len(b.Nodes) > 0
}

// UIText returns a copy of the locale's UI strings, or the default locale's when it has none.
func (s *Store) UIText(locale string) map[string]string {
	b, ok := s.bundles[locale]
	if !ok || len(b.UIText) == 0 {
		b = s.bundles[s.defaultLocale]
	}
	out := make(map[string]string, len(b.UIText))
	for k, v := range b.UIText {
		out[k] = v
	}
	return out
}

func (s *Store) Version() string {
	return s.version
}

// DefaultLocale returns the locale used for fallbacks.
func (s *Store) DefaultLocale() string {
	return s.defaultLocale
}

// Warnings returns non-fatal issues found during validation.
func (s *Store) Warnings() []string {
	return s.warnings
}
