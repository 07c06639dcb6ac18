package tests

import (
	"testing"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ContentLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.ContentLoader.
// expected maps each locale to the node IDs it must contain.
func ContentLoaderContractTest(t *testing.T, loader ports.ContentLoader, expected map[string][]string) {
	t.Helper()

	bundles, err := loader.LoadLocales()
	require.NoError(t, err)

	t.Run("Locales", func(t *testing.T) {
		for locale := range expected {
			assert.Contains(t, bundles, locale)
		}
	})

	t.Run("Nodes", func(t *testing.T) {
		for locale, ids := range expected {
			bundle := bundles[locale]
			assert.Equal(t, locale, bundle.Locale)
			assert.Len(t, bundle.Nodes, len(ids))
			for _, id := range ids {
				node, ok := bundle.Nodes[id]
				if assert.True(t, ok, "node %s missing from %s", id, locale) {
					assert.Equal(t, id, node.ID, "bundle key must match node ID")
				}
			}
		}
	})

	t.Run("Start Node", func(t *testing.T) {
		for locale := range expected {
			_, ok := bundles[locale].Nodes[domain.StartNodeID]
			assert.True(t, ok, "locale %s has no start node", locale)
		}
	})

	t.Run("Version", func(t *testing.T) {
		assert.NotEmpty(t, loader.Version())
	})
}
