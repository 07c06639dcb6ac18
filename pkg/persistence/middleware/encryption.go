package middleware

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aretw0/novella/pkg/domain"
	"github.com/aretw0/novella/pkg/ports"
)

// EnvelopeKey is the player state key holding the ciphertext inside a stored envelope.
const EnvelopeKey = "__encrypted__"

var (
	errNoEnvelope   = errors.New("session is missing encrypted data envelope")
	errShortCipher  = errors.New("ciphertext too short")
	errNoKeyMatched = errors.New("decryption failed with all available keys")
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey encrypts new data. Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys are tried in order when the active key cannot decrypt,
	// so keys can be rotated without invalidating live sessions.
	FallbackKeys [][]byte
}

// keyring holds one AEAD per key; index 0 is the active key.
type keyring []cipher.AEAD

func newKeyring(cfg EncryptionConfig) (keyring, error) {
	keys := append([][]byte{cfg.ActiveKey}, cfg.FallbackKeys...)
	ring := make(keyring, 0, len(keys))
	for i, key := range keys {
		block, err := aes.NewCipher(key)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		aead, err := cipher.NewGCM(block)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		ring = append(ring, aead)
	}
	return ring, nil
}

// seal encrypts with the active key and prefixes the random nonce.
func (r keyring) seal(plain []byte) ([]byte, error) {
	aead := r[0]
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plain)+aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return nil, err
	}
	return aead.Seal(nonce, nonce, plain, nil), nil
}

// open tries every key, active first.
func (r keyring) open(sealed []byte) ([]byte, error) {
	for _, aead := range r {
		n := aead.NonceSize()
		if len(sealed) < n {
			return nil, errShortCipher
		}
		if plain, err := aead.Open(nil, sealed[:n], sealed[n:], nil); err == nil {
			return plain, nil
		}
	}
	return nil, errNoKeyMatched
}

type encryptedStore struct {
	next ports.SessionStore
	keys keyring
}

// NewEncryptionMiddleware encrypts whole sessions with AES-GCM before they reach the store.
// The store only sees an envelope carrying the locale and an opaque ciphertext.
// It panics on a malformed key; validate configuration first.
func NewEncryptionMiddleware(cfg EncryptionConfig) Middleware {
	if len(cfg.ActiveKey) != 32 {
		panic("active key must be 32 bytes (AES-256)")
	}
	keys, err := newKeyring(cfg)
	if err != nil {
		panic(fmt.Sprintf("invalid encryption key: %v", err))
	}
	return func(next ports.SessionStore) ports.SessionStore {
		return &encryptedStore{next: next, keys: keys}
	}
}

func (e *encryptedStore) Save(ctx context.Context, sessionID string, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	sealed, err := e.keys.seal(raw)
	if err != nil {
		return fmt.Errorf("failed to encrypt session: %w", err)
	}

	// Locale stays readable so operators can tell sessions apart.
	envelope := domain.NewSession(sess.Locale, "")
	envelope.PlayerState[EnvelopeKey] = base64.StdEncoding.EncodeToString(sealed)
	return e.next.Save(ctx, sessionID, envelope)
}

func (e *encryptedStore) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	envelope, err := e.next.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	// Fail closed: plaintext sessions are rejected once encryption is on.
	encoded, ok := envelope.PlayerState[EnvelopeKey].(string)
	if !ok {
		return nil, errNoEnvelope
	}
	sealed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext: %w", err)
	}
	raw, err := e.keys.open(sealed)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt session: %w", err)
	}

	sess := &domain.Session{}
	if err := json.Unmarshal(raw, sess); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted session: %w", err)
	}
	return sess, nil
}

func (e *encryptedStore) Delete(ctx context.Context, sessionID string) error {
	return e.next.Delete(ctx, sessionID)
}

func (e *encryptedStore) List(ctx context.Context) ([]string, error) {
	return e.next.List(ctx)
}
