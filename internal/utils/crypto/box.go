package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
)

// ErrDecrypt wraps every failure mode of Box.Decrypt: bad base64, truncated
// blob, wrong key, corrupted ciphertext. Callers decide the fallback policy;
// the adapter never silently returns the input back.
var ErrDecrypt = errors.New("decrypt failed")

// KeyProvider supplies the symmetric key for note content encryption.
// It is an interface so per-user keys or rotation can be introduced without
// touching Box call sites.
type KeyProvider interface {
	Key() ([]byte, error)
}

// StaticKeyProvider derives a fixed 256-bit key from a configured secret.
type StaticKeyProvider struct {
	key [32]byte
}

// NewStaticKeyProvider builds a provider whose key is SHA-256 of the secret.
func NewStaticKeyProvider(secret string) *StaticKeyProvider {
	return &StaticKeyProvider{key: sha256.Sum256([]byte(secret))}
}

// Key returns the derived key.
func (p *StaticKeyProvider) Key() ([]byte, error) {
	return p.key[:], nil
}

// Box encrypts and decrypts note content with AES-256-GCM.
// The string form is base64(nonce ‖ ciphertext), so Decrypt is self-contained
// given only the blob and the key.
type Box struct {
	keys KeyProvider
}

// NewBox creates a Box backed by the given key provider.
func NewBox(keys KeyProvider) *Box {
	return &Box{keys: keys}
}

func (b *Box) gcm() (cipher.AEAD, error) {
	key, err := b.keys.Key()
	if err != nil {
		return nil, fmt.Errorf("get key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	return cipher.NewGCM(block)
}

// Encrypt seals plaintext and returns the base64 blob.
func (b *Box) Encrypt(plaintext string) (string, error) {
	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	blob := gcm.Seal(nonce, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(blob), nil
}

// Decrypt opens a blob produced by Encrypt. Any failure is reported as an
// error wrapping ErrDecrypt.
func (b *Box) Decrypt(encoded string) (string, error) {
	blob, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("%w: decode base64: %w", ErrDecrypt, err)
	}

	gcm, err := b.gcm()
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(blob) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrDecrypt)
	}

	nonce, ciphertext := blob[:nonceSize], blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrDecrypt, err)
	}

	return string(plaintext), nil
}
