package runtime

import (
	"strings"

	"github.com/aretw0/novella/pkg/domain"
)

// Personalize swaps the placeholder hero name for the player's name.
// The text replacement is a plain substring replace, so any "Hero" inside a word changes too.
func Personalize(node domain.Node, playerName string) domain.Node {
	if playerName == "" {
		return node
	}
	if node.Character == domain.HeroToken {
		node.Character = playerName
	}
	if node.Text != "" {
		node.Text = strings.ReplaceAll(node.Text, domain.HeroToken, playerName)
	}
	return node
}
