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
	"io"

	"github.com/frusal/deploy-my-schema/pkg/domain"
	"github.com/frusal/deploy-my-schema/pkg/ports"
)

const (
	sealedID    domain.ID = "__sealed__"
	sealedClass domain.ID = "sys/Sealed"
	payloadKey            = "payload"
)

// EncryptionConfig holds the keys for encryption and decryption.
type EncryptionConfig struct {
	// ActiveKey is the key used for encrypting new data.
	// Must be 32 bytes for AES-256.
	ActiveKey []byte

	// FallbackKeys is a list of old keys to try when decryption fails.
	// This enables zero-downtime key rotation.
	FallbackKeys [][]byte
}

type encryptionMiddleware struct {
	next   ports.WorkspaceStore
	config EncryptionConfig
}

// NewEncryptionMiddleware creates a middleware that encrypts workspace entities using AES-GCM.
// The stored snapshot keeps its name, version and member hashes in the clear so that the
// backend can still compare versions; every entity is sealed into a single envelope entity.
func NewEncryptionMiddleware(config EncryptionConfig) (Middleware, error) {
	if len(config.ActiveKey) != 32 {
		return nil, errors.New("active key must be 32 bytes (AES-256)")
	}
	return func(next ports.WorkspaceStore) ports.WorkspaceStore {
		return &encryptionMiddleware{
			next:   next,
			config: config,
		}
	}, nil
}

func (m *encryptionMiddleware) Commit(ctx context.Context, snap *domain.Snapshot) (int64, error) {
	plainText, err := json.Marshal(snap.Entities)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal entities: %w", err)
	}

	ciphertext, err := encrypt(plainText, m.config.ActiveKey)
	if err != nil {
		return 0, fmt.Errorf("failed to encrypt workspace: %w", err)
	}

	sealed := domain.NewEntity(sealedID, sealedClass)
	sealed.PutString(payloadKey, base64.StdEncoding.EncodeToString(ciphertext))

	envelope := &domain.Snapshot{
		Name:     snap.Name,
		Version:  snap.Version,
		Members:  snap.Members,
		Entities: map[domain.ID]*domain.Entity{sealedID: sealed},
	}
	return m.next.Commit(ctx, envelope)
}

func (m *encryptionMiddleware) Load(ctx context.Context, name string) (*domain.Snapshot, error) {
	envelope, err := m.next.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	sealed, ok := envelope.Entities[sealedID]
	if !ok || len(envelope.Entities) != 1 {
		// Fail secure: a plain snapshot is not accepted once encryption is configured.
		return nil, fmt.Errorf("workspace %q is missing encrypted data envelope", name)
	}

	ciphertext, err := base64.StdEncoding.DecodeString(sealed.Strings[payloadKey])
	if err != nil {
		return nil, fmt.Errorf("failed to decode ciphertext base64: %w", err)
	}

	// Try Active, then Fallback
	plainText, err := decryptWithRotation(ciphertext, m.config.ActiveKey, m.config.FallbackKeys)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt workspace %q: %w", name, err)
	}

	entities := make(map[domain.ID]*domain.Entity)
	if err := json.Unmarshal(plainText, &entities); err != nil {
		return nil, fmt.Errorf("failed to unmarshal decrypted entities: %w", err)
	}

	snap := domain.NewSnapshot(envelope.Name)
	snap.Version = envelope.Version
	for user, hash := range envelope.Members {
		snap.Members[user] = hash
	}
	snap.Entities = entities
	return snap, nil
}

func (m *encryptionMiddleware) Delete(ctx context.Context, name string) error {
	return m.next.Delete(ctx, name)
}

func (m *encryptionMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

// Helpers

func encrypt(plaintext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func decryptWithRotation(ciphertext []byte, activeKey []byte, fallbackKeys [][]byte) ([]byte, error) {
	// Try active key first
	if plain, err := decrypt(ciphertext, activeKey); err == nil {
		return plain, nil
	}

	// Try fallbacks in order
	for _, key := range fallbackKeys {
		if plain, err := decrypt(ciphertext, key); err == nil {
			return plain, nil
		}
	}

	return nil, errors.New("decryption failed with all available keys")
}

func decrypt(ciphertext []byte, key []byte) ([]byte, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertextBytes := ciphertext[gcm.NonceSize():]

	return gcm.Open(nil, nonce, ciphertextBytes, nil)
}
