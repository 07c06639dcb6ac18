package domain

const (
	// StartNodeID is the entry node every locale must define.
	StartNodeID = "start"

	// HeroToken is the placeholder name replaced with the player's name.
	HeroToken = "Hero"

	// QuestionPlaceholder is replaced with a generated prompt in quiz node text.
	QuestionPlaceholder = "{{question}}"
)

// AssetKeys lists the node fields holding asset paths, in resolution order.
var AssetKeys = []string{"background", "character_sprite", "item_image", "illustration"}

// Assets returns pointers to the asset fields of n, keyed as in AssetKeys.
func (n *Node) Assets() map[string]*AssetRef {
	return map[string]*AssetRef{
		"background":       &n.Background,
		"character_sprite": &n.CharacterSprite,
		"item_image":       &n.ItemImage,
		"illustration":     &n.Illustration,
	}
}
