package middleware_test

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"github.com/aretw0/novella/pkg/adapters/memory"
	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/persistence/middleware"
	"github.com/aretw0/novella/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, 32)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func secretSession() *domain.Session {
	s := domain.NewSession("en-US", "Ann")
	s.History = []string{"start", "vault"}
	s.PlayerState["vault_code"] = "1234"
	return s
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	ports.RunSessionStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	secure := middleware.Chain(underlying, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)}))
	ctx := context.Background()

	require.NoError(t, secure.Save(ctx, "s1", secretSession()))

	stored, err := underlying.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, stored.PlayerState, "vault_code", "plaintext must not reach the store")
	assert.Contains(t, stored.PlayerState, middleware.EnvelopeKey)
	assert.Empty(t, stored.PlayerName)
	assert.Empty(t, stored.History)
	assert.Equal(t, "en-US", stored.Locale)

	loaded, err := secure.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "1234", loaded.PlayerState["vault_code"])
	assert.Equal(t, []string{"start", "vault"}, loaded.History)
	assert.Equal(t, "Ann", loaded.PlayerName)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey, newKey := generateKey(t), generateKey(t)
	ctx := context.Background()

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(underlying)
	require.NoError(t, oldStore.Save(ctx, "rot", secretSession()))

	newStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})(underlying)

	loaded, err := newStore.Load(ctx, "rot")
	require.NoError(t, err, "fallback key must decrypt old sessions")

	loaded.PlayerState["vault_code"] = "5678"
	require.NoError(t, newStore.Save(ctx, "rot", loaded))

	_, err = oldStore.Load(ctx, "rot")
	assert.Error(t, err, "old key alone cannot read data written with the new key")
}

func TestEncryptionMiddleware_RejectsPlaintext(t *testing.T) {
	underlying := memory.NewStore()
	require.NoError(t, underlying.Save(context.Background(), "plain", secretSession()))

	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	_, err := secure.Load(context.Background(), "plain")
	assert.ErrorContains(t, err, "envelope")
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	})
}

func TestEncryptionMiddleware_InvalidFallbackKey(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    generateKey(t),
			FallbackKeys: [][]byte{[]byte("nope")},
		})
	})
}

func TestEncryptionMiddleware_TamperedCiphertext(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	secure := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})(underlying)
	require.NoError(t, secure.Save(ctx, "t", secretSession()))

	envelope, err := underlying.Load(ctx, "t")
	require.NoError(t, err)
	envelope.PlayerState[middleware.EnvelopeKey] = "AAAA"
	require.NoError(t, underlying.Save(ctx, "t", envelope))

	_, err = secure.Load(ctx, "t")
	assert.ErrorContains(t, err, "decrypt")
}
