package runtime

import (
	"testing"

	"github.com/aretw0/novella/pkg/content"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helloStore(t *testing.T) *content.Store {
	t.Helper()
	s, err := content.NewStore("v1", map[string]domain.LocaleBundle{
		"en-US": {Locale: "en-US", Nodes: map[string]domain.Node{
			"start": {
				ID:         "start",
				Text:       "Hello, Hero!",
				Background: "bg/forest.png",
				Choices: []domain.Choice{
					{Text: "A", NextNode: "n2", Requires: &domain.Requirement{State: "flag", Value: true}},
				},
			},
			"n2": {ID: "n2", Text: "Second"},
		}},
	})
	require.NoError(t, err)
	return s
}

func TestResolveNode_HelloScenario(t *testing.T) {
	store := helloStore(t)

	node, ok := ResolveNode(store, "en-US", "start", domain.PlayerState{}, nil)
	require.True(t, ok)
	assert.Empty(t, node.Choices, "unmet requirement must hide the choice")

	node = Personalize(node, "Ann")
	assert.Equal(t, "Hello, Ann!", node.Text)
}

func TestResolveNode_NotFound(t *testing.T) {
	_, ok := ResolveNode(helloStore(t), "en-US", "ghost", domain.PlayerState{}, DefaultAssetURL)
	assert.False(t, ok)

	_, ok = ResolveNode(helloStore(t), "pt-BR", "start", domain.PlayerState{}, DefaultAssetURL)
	assert.False(t, ok)
}

func TestResolveNode_AssetURLs(t *testing.T) {
	store := helloStore(t)

	node, ok := ResolveNode(store, "en-US", "start", domain.PlayerState{}, DefaultAssetURL)
	require.True(t, ok)
	assert.Equal(t, "/content/v1/en-US/bg/forest.png", node.Background)
	assert.Empty(t, node.CharacterSprite, "empty asset fields are left alone")

	raw, _ := store.Node("en-US", "start")
	assert.Equal(t, "bg/forest.png", raw.Background, "stored node must not change")
	assert.Len(t, raw.Choices, 1)
}

func TestFilterChoices(t *testing.T) {
	choices := []domain.Choice{
		{Text: "always", NextNode: "a"},
		{Text: "needs false", NextNode: "b", Requires: &domain.Requirement{State: "door_open", Value: false}},
		{Text: "needs sword", NextNode: "c", Requires: &domain.Requirement{State: "weapon", Value: "sword"}},
		{Text: "needs flag", NextNode: "d", Requires: &domain.Requirement{State: "flag", Value: true}},
	}

	tests := []struct {
		name  string
		state domain.PlayerState
		want  []string
	}{
		{"Empty State", domain.PlayerState{}, []string{"always"}},
		{"Absent Key Does Not Match False", domain.PlayerState{"flag": false}, []string{"always"}},
		{"Explicit False Matches", domain.PlayerState{"door_open": false}, []string{"always", "needs false"}},
		{"String Equality", domain.PlayerState{"weapon": "sword", "flag": true}, []string{"always", "needs sword", "needs flag"}},
		{"Strict Types", domain.PlayerState{"flag": "true"}, []string{"always"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := FilterChoices(choices, tt.state)
			second := FilterChoices(choices, tt.state)
			assert.Equal(t, first, second, "filtering must be deterministic")

			var got []string
			for _, c := range first {
				got = append(got, c.Text)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPersonalize(t *testing.T) {
	node := domain.Node{Character: "Hero", Text: "Heroes welcome Hero."}

	got := Personalize(node, "Ann")
	assert.Equal(t, "Ann", got.Character)
	assert.Equal(t, "Annes welcome Ann.", got.Text, "substring replacement is literal")

	assert.Equal(t, node, Personalize(node, ""), "empty name leaves the node unchanged")

	other := Personalize(domain.Node{Character: "Mentor", Text: "Hi"}, "Ann")
	assert.Equal(t, "Mentor", other.Character)
}

func TestApplyAction(t *testing.T) {
	state := domain.PlayerState{}

	state = ApplyAction(domain.Choice{Action: &domain.Action{SetState: "met_ally"}}, state)
	assert.Equal(t, true, state["met_ally"])

	state = ApplyAction(domain.Choice{Action: &domain.Action{SetState: "weapon", Value: "sword"}}, state)
	assert.Equal(t, "sword", state["weapon"])

	state = ApplyAction(domain.Choice{Action: &domain.Action{SetState: "met_ally", Value: false}}, state)
	assert.Equal(t, false, state["met_ally"], "explicit false overwrites")

	before := len(state)
	state = ApplyAction(domain.Choice{Text: "no action"}, state)
	assert.Len(t, state, before)

	assert.NotNil(t, ApplyAction(domain.Choice{}, nil))
}

func TestResolveNode_ReturnsDetachedCopy(t *testing.T) {
	store := helloStore(t)

	node, ok := store.Node("en-US", "start")
	require.True(t, ok)
	node.Choices[0].Requires.Value = false
	node.Choices[0].Text = "changed"

	shown, ok := ResolveNode(store, "en-US", "start", domain.PlayerState{"flag": true}, nil)
	require.True(t, ok)
	require.Len(t, shown.Choices, 1, "stored requirement must be unaffected by caller edits")
	assert.Equal(t, "A", shown.Choices[0].Text)

	shown.Choices[0].Requires.State = "other"
	again, _ := store.Node("en-US", "start")
	assert.Equal(t, "flag", again.Choices[0].Requires.State)
	assert.Equal(t, true, again.Choices[0].Requires.Value)
}
