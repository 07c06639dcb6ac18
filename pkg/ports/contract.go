package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		answer := "00ff"
		sess := domain.NewSession("en-US", "Ann")
		sess.History = []string{"start", "quiz"}
		sess.PlayerState["met_ally"] = true
		sess.PlayerState["weapon"] = "sword"
		sess.PendingAnswer = &answer

		require.NoError(t, store.Save(ctx, sessionID, sess), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "en-US", loaded.Locale)
		assert.Equal(t, "Ann", loaded.PlayerName)
		assert.Equal(t, []string{"start", "quiz"}, loaded.History)
		assert.Equal(t, true, loaded.PlayerState["met_ally"])
		assert.Equal(t, "sword", loaded.PlayerState["weapon"])
		require.NotNil(t, loaded.PendingAnswer)
		assert.Equal(t, "00ff", *loaded.PendingAnswer)
	})

	t.Run("Load Is Isolated From Caller Mutation", func(t *testing.T) {
		sess := domain.NewSession("en-US", "Ann")
		sess.History = []string{"start"}
		require.NoError(t, store.Save(ctx, sessionID, sess))

		sess.History = append(sess.History, "mutated")
		sess.PlayerState["late"] = true

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"start"}, loaded.History)
		assert.NotContains(t, loaded.PlayerState, "late")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewSession("en-US", "Ann")))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		require.NoError(t, store.Save(ctx, id1, domain.NewSession("en-US", "A")))
		require.NoError(t, store.Save(ctx, id2, domain.NewSession("pt-BR", "B")))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
