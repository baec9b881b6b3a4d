package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	saltLength    = 32
	ivLength      = 16
	authTagLength = 16
	keyLength     = 32

	// scrypt cost parameters, matching `crypto.scryptSync` defaults.
	scryptN = 16384
	scryptR = 8
	scryptP = 1
)

// ErrDecryptFailed is returned for every decryption failure: tampered
// ciphertext, truncated input, bad base64. The cause is deliberately not
// exposed so callers cannot be used as a padding/tag oracle.
var ErrDecryptFailed = errors.New("decryption failed")

// Service encrypts and decrypts secret strings at rest. Each Encrypt call
// derives a fresh per-message key from the master key and a random salt, so
// no two ciphertexts share key material.
//
// Wire format: base64(salt(32) || iv(16) || authTag(16) || ciphertext).
type Service struct {
	masterKey []byte
}

// New builds a Service from the configured master key. The key must be at
// least 32 characters; shorter keys are a configuration error.
func New(masterKey string) (*Service, error) {
	if len(masterKey) < keyLength {
		return nil, fmt.Errorf("encryption master key must be at least %d characters", keyLength)
	}
	return &Service{masterKey: []byte(masterKey)}, nil
}

func (s *Service) deriveKey(salt []byte) ([]byte, error) {
	return scrypt.Key(s.masterKey, salt, scryptN, scryptR, scryptP, keyLength)
}

// Encrypt encrypts plaintext with AES-256-GCM under a per-message derived
// key. Encrypting the empty string is a no-op and returns it unchanged;
// optional fields round-trip without special casing at call sites.
func (s *Service) Encrypt(plaintext string) (string, error) {
	if plaintext == "" {
		return plaintext, nil
	}

	salt := make([]byte, saltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", fmt.Errorf("deriving key: %w", err)
	}

	iv := make([]byte, ivLength)
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", fmt.Errorf("generating iv: %w", err)
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}

	// Seal appends the auth tag after the ciphertext; the wire format wants
	// it between iv and ciphertext, so split and reorder.
	sealed := gcm.Seal(nil, iv, []byte(plaintext), nil)
	ciphertext := sealed[:len(sealed)-authTagLength]
	authTag := sealed[len(sealed)-authTagLength:]

	combined := make([]byte, 0, saltLength+ivLength+authTagLength+len(ciphertext))
	combined = append(combined, salt...)
	combined = append(combined, iv...)
	combined = append(combined, authTag...)
	combined = append(combined, ciphertext...)

	return base64.StdEncoding.EncodeToString(combined), nil
}

// Decrypt reverses Encrypt. The empty string passes through unchanged.
// Any malformed or tampered input fails with ErrDecryptFailed.
func (s *Service) Decrypt(encrypted string) (string, error) {
	if encrypted == "" {
		return encrypted, nil
	}

	combined, err := base64.StdEncoding.DecodeString(encrypted)
	if err != nil {
		return "", ErrDecryptFailed
	}
	if len(combined) < saltLength+ivLength+authTagLength+1 {
		return "", ErrDecryptFailed
	}

	salt := combined[:saltLength]
	iv := combined[saltLength : saltLength+ivLength]
	authTag := combined[saltLength+ivLength : saltLength+ivLength+authTagLength]
	ciphertext := combined[saltLength+ivLength+authTagLength:]

	key, err := s.deriveKey(salt)
	if err != nil {
		return "", ErrDecryptFailed
	}

	gcm, err := newGCM(key)
	if err != nil {
		return "", ErrDecryptFailed
	}

	sealed := make([]byte, 0, len(ciphertext)+authTagLength)
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, authTag...)

	plaintext, err := gcm.Open(nil, iv, sealed, nil)
	if err != nil {
		return "", ErrDecryptFailed
	}

	return string(plaintext), nil
}

// IsEncrypted reports whether text looks like output of Encrypt. This is a
// length heuristic over the decoded base64, not cryptographic verification;
// it only distinguishes encrypted-at-rest values from legacy plaintext.
func (s *Service) IsEncrypted(text string) bool {
	if text == "" {
		return false
	}
	decoded, err := base64.StdEncoding.DecodeString(text)
	if err != nil {
		return false
	}
	return len(decoded) >= saltLength+ivLength+authTagLength+1
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	gcm, err := cipher.NewGCMWithNonceSize(block, ivLength)
	if err != nil {
		return nil, fmt.Errorf("creating gcm: %w", err)
	}
	return gcm, nil
}
