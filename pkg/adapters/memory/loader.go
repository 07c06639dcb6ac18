package memory

import (
	"fmt"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// Loader implements ports.ContentLoader from nodes built in code.
// It is meant for tests and embedded stories.
type Loader struct {
	version string
	bundles map[string]domain.LocaleBundle
}

var _ ports.ContentLoader = (*Loader)(nil)

// NewLoader creates an empty loader reporting the given content version.
func NewLoader(version string) *Loader {
	return &Loader{
		version: version,
		bundles: make(map[string]domain.LocaleBundle),
	}
}

// NewFromNodes creates a single-locale loader, the common case in tests.
func NewFromNodes(locale string, nodes ...domain.Node) (*Loader, error) {
	l := NewLoader("v1")
	if err := l.AddNodes(locale, nodes...); err != nil {
		return nil, err
	}
	return l, nil
}

// AddNodes registers nodes under a locale. IDs must be set and unique.
func (l *Loader) AddNodes(locale string, nodes ...domain.Node) error {
	b := l.bundle(locale)
	if b.Nodes == nil {
		b.Nodes = make(map[string]domain.Node, len(nodes))
	}
	for _, n := range nodes {
		if n.ID == "" {
			return fmt.Errorf("node missing ID")
		}
		if _, dup := b.Nodes[n.ID]; dup {
			return fmt.Errorf("duplicate node ID %q in %s", n.ID, locale)
		}
		b.Nodes[n.ID] = n.Clone()
	}
	l.bundles[locale] = b
	return nil
}

// SetUIText replaces the UI strings of a locale.
func (l *Loader) SetUIText(locale string, ui map[string]string) {
	b := l.bundle(locale)
	b.UIText = make(map[string]string, len(ui))
	for k, v := range ui {
		b.UIText[k] = v
	}
	l.bundles[locale] = b
}

// LoadLocales returns copies of every registered bundle.
func (l *Loader) LoadLocales() (map[string]domain.LocaleBundle, error) {
	out := make(map[string]domain.LocaleBundle, len(l.bundles))
	for locale, b := range l.bundles {
		nodes := make(map[string]domain.Node, len(b.Nodes))
		for id, n := range b.Nodes {
			nodes[id] = n.Clone()
		}
		ui := make(map[string]string, len(b.UIText))
		for k, v := range b.UIText {
			ui[k] = v
		}
		out[locale] = domain.LocaleBundle{Locale: locale, Nodes: nodes, UIText: ui}
	}
	return out, nil
}

// Version implements ports.ContentLoader.
func (l *Loader) Version() string {
	return l.version
}

func (l *Loader) bundle(locale string) domain.LocaleBundle {
	b, ok := l.bundles[locale]
	if !ok {
		b = domain.LocaleBundle{Locale: locale}
	}
	return b
}
