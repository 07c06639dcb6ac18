package runtime_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/novella/internal/runtime"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngine_LifecycleHooks(t *testing.T) {
	var entered []string
	var choices []*domain.ChoiceEvent
	var answers []*domain.AnswerEvent
	var backs []*domain.BackEvent

	hooks := domain.LifecycleHooks{
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			entered = append(entered, e.NodeID)
		},
		OnChoice: func(ctx context.Context, e *domain.ChoiceEvent) {
			choices = append(choices, e)
		},
		OnAnswer: func(ctx context.Context, e *domain.AnswerEvent) {
			answers = append(answers, e)
		},
		OnBack: func(ctx context.Context, e *domain.BackEvent) {
			backs = append(backs, e)
		},
	}

	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	e := newEngine(t, runtime.WithLifecycleHooks(hooks), runtime.WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	s, _, err := e.Start(ctx, "Ann", "en-US")
	require.NoError(t, err)
	s, _, err = e.Choose(ctx, s, "start", 0)
	require.NoError(t, err)
	s, _, err = e.Back(ctx, s)
	require.NoError(t, err)
	s, _, err = e.Choose(ctx, s, "start", 2)
	require.NoError(t, err)
	_, _, err = e.SubmitAnswer(ctx, s, "quiz", "00ff")
	require.NoError(t, err)

	assert.Equal(t, []string{"start", "ally", "start", "quiz", "win"}, entered)

	require.Len(t, choices, 2)
	assert.Equal(t, "ally", choices[0].ToNodeID)
	assert.Equal(t, "met_ally", choices[0].SetState)
	assert.Equal(t, fixed, choices[0].Timestamp)
	assert.Equal(t, domain.EventChoice, choices[0].Type)
	assert.Equal(t, 2, choices[1].ChoiceIndex)

	require.Len(t, backs, 1)
	assert.Equal(t, "ally", backs[0].FromNodeID)
	assert.Equal(t, "start", backs[0].ToNodeID)

	require.Len(t, answers, 1)
	assert.True(t, answers[0].Correct)
	assert.Equal(t, "win", answers[0].ToNodeID)
}
