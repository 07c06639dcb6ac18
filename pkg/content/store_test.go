package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubLoader struct {
	bundles map[string]domain.LocaleBundle
	err     error
}

func (l *stubLoader) LoadLocales() (map[string]domain.LocaleBundle, error) {
	return l.bundles, l.err
}

func (l *stubLoader) Version() string { return "v1" }

type chanWatcher struct {
	ch chan struct{}
}

func (w *chanWatcher) Watch(ctx context.Context) (<-chan struct{}, error) {
	return w.ch, nil
}

func sampleBundles(startText string) map[string]domain.LocaleBundle {
	return map[string]domain.LocaleBundle{
		"en-US": {
			Locale: "en-US",
			Nodes: map[string]domain.Node{
				"start": {ID: "start", Text: startText, Choices: []domain.Choice{{Text: "Next", NextNode: "end"}}},
				"end":   {ID: "end", Text: "The end."},
			},
			UIText: map[string]string{"title": "Novella"},
		},
		"pt-BR": {
			Locale: "pt-BR",
			Nodes: map[string]domain.Node{
				"start": {ID: "start", Text: "Olá"},
			},
		},
	}
}

func TestNewStore(t *testing.T) {
	s, err := NewStore("v1", sampleBundles("Hello"))
	require.NoError(t, err)

	assert.Equal(t, "v1", s.Version())
	assert.Equal(t, []string{"en-US", "pt-BR"}, s.Locales())
	assert.True(t, s.HasLocale("pt-BR"))
	assert.False(t, s.HasLocale("fr-FR"))

	n, ok := s.Node("en-US", "start")
	require.True(t, ok)
	assert.Equal(t, "Hello", n.Text)

	_, ok = s.Node("en-US", "missing")
	assert.False(t, ok)
	_, ok = s.Node("fr-FR", "start")
	assert.False(t, ok)

	nodes := s.Nodes("en-US")
	require.Len(t, nodes, 2)
	assert.Equal(t, "end", nodes[0].ID)
	assert.Equal(t, "start", nodes[1].ID)
}

func TestStore_NodeIsACopy(t *testing.T) {
	s, err := NewStore("v1", sampleBundles("Hello"))
	require.NoError(t, err)

	n, _ := s.Node("en-US", "start")
	n.Choices[0].Text = "mutated"

	again, _ := s.Node("en-US", "start")
	assert.Equal(t, "Next", again.Choices[0].Text)
}

func TestStore_UITextFallback(t *testing.T) {
	s, err := NewStore("v1", sampleBundles("Hello"), WithDefaultLocale("en-US"))
	require.NoError(t, err)

	assert.Equal(t, "Novella", s.UIText("pt-BR")["title"], "locale without UI text falls back")
	assert.Equal(t, "Novella", s.UIText("xx-XX")["title"], "unknown locale falls back")

	ui := s.UIText("en-US")
	ui["title"] = "mutated"
	assert.Equal(t, "Novella", s.UIText("en-US")["title"])
}

func TestNewStore_RejectsBrokenContent(t *testing.T) {
	bundles := sampleBundles("Hello")
	bundles["en-US"].Nodes["start"] = domain.Node{ID: "start", Choices: []domain.Choice{{Text: "?", NextNode: "ghost"}}}

	_, err := NewStore("v1", bundles)
	require.Error(t, err)
	assert.True(t, domain.IsContentError(err))
}

func TestLoad_WrapsLoaderErrors(t *testing.T) {
	_, err := Load(&stubLoader{err: errors.New("disk on fire")})
	require.Error(t, err)
	assert.True(t, domain.IsContentError(err))
	assert.Contains(t, err.Error(), "disk on fire")
}

func TestReloadable_KeepsPreviousOnFailure(t *testing.T) {
	initial, err := NewStore("v1", sampleBundles("Before"))
	require.NoError(t, err)
	r := NewReloadable(initial)

	loader := &stubLoader{bundles: sampleBundles("After")}
	require.NoError(t, r.Reload(loader))
	n, _ := r.Node("en-US", "start")
	assert.Equal(t, "After", n.Text)

	loader.err = errors.New("broken yaml")
	assert.Error(t, r.Reload(loader))
	n, _ = r.Node("en-US", "start")
	assert.Equal(t, "After", n.Text)
}

func TestReloadable_WatchAndReload(t *testing.T) {
	initial, err := NewStore("v1", sampleBundles("Before"))
	require.NoError(t, err)
	r := NewReloadable(initial)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	w := &chanWatcher{ch: make(chan struct{}, 1)}
	loader := &stubLoader{bundles: sampleBundles("After")}
	require.NoError(t, r.WatchAndReload(ctx, loader, w, nil))

	w.ch <- struct{}{}

	assert.Eventually(t, func() bool {
		n, _ := r.Node("en-US", "start")
		return n.Text == "After"
	}, time.Second, 10*time.Millisecond)
}
