package validator

import (
	"errors"
	"testing"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func bundleOf(nodes ...domain.Node) domain.LocaleBundle {
	m := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		m[n.ID] = n
	}
	return domain.LocaleBundle{Locale: "en-US", Nodes: m}
}

func TestValidateBundles_Valid(t *testing.T) {
	bundles := map[string]domain.LocaleBundle{
		"en-US": bundleOf(
			domain.Node{ID: "start", Choices: []domain.Choice{{Text: "Go", NextNode: "quiz"}}},
			domain.Node{ID: "quiz", InputPrompt: &domain.InputPrompt{
				Function: "generate_dec_to_hex", OnCorrect: "win", OnIncorrect: "start",
			}},
			domain.Node{ID: "win"},
		),
	}

	res := ValidateBundles(bundles, WithGeneratorCheck(func(string) bool { return true }))
	assert.NoError(t, res.Err())
	assert.Empty(t, res.Warnings)
}

func TestValidateBundles_Defects(t *testing.T) {
	tests := []struct {
		name   string
		bundle domain.LocaleBundle
		want   string
	}{
		{
			name:   "Missing Start",
			bundle: bundleOf(domain.Node{ID: "intro"}),
			want:   `missing "start" node`,
		},
		{
			name: "Broken Link",
			bundle: bundleOf(domain.Node{ID: "start", Choices: []domain.Choice{
				{Text: "Into the void", NextNode: "ghost"},
			}}),
			want: `points to missing node "ghost"`,
		},
		{
			name: "Empty Next Node",
			bundle: bundleOf(domain.Node{ID: "start", Choices: []domain.Choice{
				{Text: "Nowhere"},
			}}),
			want: "has no next_node",
		},
		{
			name: "Prompt With Both Sources",
			bundle: bundleOf(domain.Node{ID: "start", InputPrompt: &domain.InputPrompt{
				Function: "generate_simple_math", Answer: "42", OnCorrect: "start", OnIncorrect: "start",
			}}),
			want: "exactly one of function or answer",
		},
		{
			name: "Prompt Missing Branch",
			bundle: bundleOf(domain.Node{ID: "start", InputPrompt: &domain.InputPrompt{
				Answer: "42", OnCorrect: "start",
			}}),
			want: "has no on_incorrect",
		},
		{
			name: "Requirement Without Key",
			bundle: bundleOf(domain.Node{ID: "start", Choices: []domain.Choice{
				{Text: "Locked", NextNode: "start", Requires: &domain.Requirement{Value: true}},
			}}),
			want: "requires an empty state key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateBundles(map[string]domain.LocaleBundle{"en-US": tt.bundle})
			err := res.Err()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)

			var ce *domain.ContentError
			assert.True(t, errors.As(err, &ce), "defects should surface as content errors")
		})
	}
}

func TestValidateBundles_CollectsEveryDefect(t *testing.T) {
	bundles := map[string]domain.LocaleBundle{
		"en-US": bundleOf(domain.Node{ID: "start", Choices: []domain.Choice{
			{Text: "A", NextNode: "ghost_a"},
			{Text: "B", NextNode: "ghost_b"},
		}}),
		"pt-BR": bundleOf(domain.Node{ID: "inicio"}),
	}

	err := ValidateBundles(bundles).Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ghost_a")
	assert.Contains(t, err.Error(), "ghost_b")
	assert.Contains(t, err.Error(), "pt-BR")
}

func TestValidateBundles_Warnings(t *testing.T) {
	bundles := map[string]domain.LocaleBundle{
		"en-US": bundleOf(
			domain.Node{ID: "start", InputPrompt: &domain.InputPrompt{
				Function: "generate_riddle", OnCorrect: "start", OnIncorrect: "start",
			}},
			domain.Node{ID: "orphan"},
		),
		"fr-FR": {Locale: "fr-FR", UIText: map[string]string{"title": "Bonjour"}},
	}

	res := ValidateBundles(bundles, WithGeneratorCheck(func(name string) bool {
		return name == "generate_dec_to_hex"
	}))

	assert.NoError(t, res.Err())
	assert.Len(t, res.Warnings, 3)
	assert.Contains(t, res.Warnings[0], `unknown question generator "generate_riddle"`)
	assert.Contains(t, res.Warnings[1], `"orphan" is unreachable`)
	assert.Contains(t, res.Warnings[2], "UI text but no story")
}
