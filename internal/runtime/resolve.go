package runtime

import (
	"strings"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// DefaultAssetURL builds asset URLs under the /content route served by the HTTP adapter.
func DefaultAssetURL(version, locale, relativePath string) string {
	return "/content/" + version + "/" + locale + "/" + strings.TrimPrefix(relativePath, "/")
}

// ResolveNode looks up a node and prepares it for a specific player.
// Asset paths become URLs and choices whose requirement is not met are dropped.
// The bool is false when the node does not exist; that is an ordinary outcome.
func ResolveNode(content ports.ContentStore, locale, id string, state domain.PlayerState, assetURL ports.AssetURLBuilder) (domain.Node, bool) {
	raw, ok := content.Node(locale, id)
	if !ok {
		return domain.Node{}, false
	}

	node := raw.Clone()
	if assetURL != nil {
		version := content.Version()
		for _, field := range node.Assets() {
			if *field != "" {
				*field = assetURL(version, locale, *field)
			}
		}
	}

	if raw.Choices != nil {
		node.Choices = FilterChoices(raw.Choices, state)
	}
	return node, true
}

// FilterChoices keeps, in source order, the choices whose requirement holds for state.
// A requirement on an absent key never holds, whatever value it expects.
func FilterChoices(choices []domain.Choice, state domain.PlayerState) []domain.Choice {
	visible := make([]domain.Choice, 0, len(choices))
	for _, c := range choices {
		if requirementMet(c.Requires, state) {
			visible = append(visible, c)
		}
	}
	return visible
}

func requirementMet(req *domain.Requirement, state domain.PlayerState) bool {
	if req == nil {
		return true
	}
	current, ok := state[req.State]
	if !ok {
		return false
	}
	return domain.ValuesEqual(current, req.Value)
}
