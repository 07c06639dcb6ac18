package ports

import (
	"context"

	"github.com/aretw0/novella/pkg/domain"
)

// ContentLoader reads every locale bundle from a content source.
// It is called once at startup (and again on explicit reload).
// Any missing manifest or story file must be reported as a *domain.ContentError.
type ContentLoader interface {
	LoadLocales() (map[string]domain.LocaleBundle, error)

	// Version returns the content version label used in asset URLs (e.g. "v1").
	Version() string
}

// ContentStore is the read-only view of loaded content shared by all sessions.
// Implementations must be safe for unlimited concurrent readers.
type ContentStore interface {
	// Node returns the raw, unprocessed node. The bool is false when the locale or ID is unknown.
	Node(locale, id string) (domain.Node, bool)

	// Nodes returns every node of a locale sorted by ID.
	Nodes(locale string) []domain.Node

	// Locales returns the available locales, sorted.
	Locales() []string

	// HasLocale reports whether the locale has a story.
	HasLocale(locale string) bool

	// UIText returns the UI bundle for the locale, falling back to the default locale.
	UIText(locale string) map[string]string

	// Version returns the content version label.
	Version() string
}

// AssetURLBuilder turns a relative asset path into a URL served by the host.
type AssetURLBuilder func(version, locale, relativePath string) string

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that is signaled when the underlying content changes.
	// It abstracts away the specific event details, signaling only that a reload is required.
	Watch(ctx context.Context) (<-chan struct{}, error)
}
