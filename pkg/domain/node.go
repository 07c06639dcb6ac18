package domain

// AssetRef is a relative path to a media file inside a locale's content directory.
// Once resolved for a player it holds a URL instead.
type AssetRef = string

// Node represents one step of the narrative graph.
// Nodes are immutable once loaded; resolution always works on a copy.
type Node struct {
	ID        string `json:"id" yaml:"id" mapstructure:"id"`
	Character string `json:"character,omitempty" yaml:"character,omitempty" mapstructure:"character"`
	Text      string `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`

	// Visual assets. See AssetKeys for the fields rewritten during resolution.
	Background      AssetRef `json:"background,omitempty" yaml:"background,omitempty" mapstructure:"background"`
	CharacterSprite AssetRef `json:"character_sprite,omitempty" yaml:"character_sprite,omitempty" mapstructure:"character_sprite"`
	ItemImage       AssetRef `json:"item_image,omitempty" yaml:"item_image,omitempty" mapstructure:"item_image"`
	Illustration    AssetRef `json:"illustration,omitempty" yaml:"illustration,omitempty" mapstructure:"illustration"`

	// Choices are the player-selectable edges out of this node.
	// A nil slice means the node declares no choices at all.
	Choices []Choice `json:"choices,omitempty" yaml:"choices,omitempty" mapstructure:"choices"`

	// InputPrompt turns the node into a quiz step.
	InputPrompt *InputPrompt `json:"input_prompt,omitempty" yaml:"input_prompt,omitempty" mapstructure:"input_prompt"`
}

// Choice is an edge from one node to another, optionally gated and optionally state-mutating.
type Choice struct {
	Text     string       `json:"text" yaml:"text" mapstructure:"text"`
	NextNode string       `json:"next_node" yaml:"next_node" mapstructure:"next_node"`
	Requires *Requirement `json:"requires,omitempty" yaml:"requires,omitempty" mapstructure:"requires"`
	Action   *Action      `json:"action,omitempty" yaml:"action,omitempty" mapstructure:"action"`
}

// Requirement gates a choice on a player state value.
type Requirement struct {
	State string `json:"state" yaml:"state" mapstructure:"state"`
	Value any    `json:"value" yaml:"value" mapstructure:"value"`
}

// Action mutates the player state when its choice is taken.
// A nil Value means the key was omitted and defaults to true.
type Action struct {
	SetState string `json:"set_state,omitempty" yaml:"set_state,omitempty" mapstructure:"set_state"`
	Value    any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// InputPrompt describes a quiz step. Exactly one of Function or Answer is set.
type InputPrompt struct {
	// Function names a registered question generator.
	Function string `json:"function,omitempty" yaml:"function,omitempty" mapstructure:"function"`
	// Answer is a static expected answer.
	Answer      string `json:"answer,omitempty" yaml:"answer,omitempty" mapstructure:"answer"`
	OnCorrect   string `json:"on_correct" yaml:"on_correct" mapstructure:"on_correct"`
	OnIncorrect string `json:"on_incorrect" yaml:"on_incorrect" mapstructure:"on_incorrect"`
}

// Targets returns every node ID this node can lead to, in declaration order.
func (n Node) Targets() []string {
	targets := make([]string, 0, len(n.Choices)+2)
	for _, c := range n.Choices {
		targets = append(targets, c.NextNode)
	}
	if n.InputPrompt != nil {
		targets = append(targets, n.InputPrompt.OnCorrect, n.InputPrompt.OnIncorrect)
	}
	return targets
}

// Clone returns a copy that shares no mutable memory with n.
func (n Node) Clone() Node {
	out := n
	if n.Choices != nil {
		out.Choices = make([]Choice, len(n.Choices))
		for i, c := range n.Choices {
			if c.Requires != nil {
				r := *c.Requires
				c.Requires = &r
			}
			if c.Action != nil {
				a := *c.Action
				c.Action = &a
			}
			out.Choices[i] = c
		}
	}
	if n.InputPrompt != nil {
		p := *n.InputPrompt
		out.InputPrompt = &p
	}
	return out
}

// LocaleBundle holds every node and UI string for one locale.
type LocaleBundle struct {
	Locale string            `json:"locale"`
	Nodes  map[string]Node   `json:"nodes"`
	UIText map[string]string `json:"ui_text,omitempty"`
}
