package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Key format: fx_{secret}
// Example: fx_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b
const (
	// KeySecretLen is the secret length (hex encoded 16 bytes).
	KeySecretLen = 32
)

// keyFormatRegex validates the key format.
var keyFormatRegex = regexp.MustCompile(`^fx_[a-f0-9]{32}$`)

// GeneratedKey contains the parts of a newly generated admin key.
type GeneratedKey struct {
	Plaintext string // Full key (show once only)
	Hash      string // Argon2id hash for configuration
}

// GenerateAdminKey creates a new admin key. Returns the plaintext key
// (to show once) and the hash (to put in ADMIN_KEY_HASH).
func GenerateAdminKey() (*GeneratedKey, error) {
	secretBytes := make([]byte, 16)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	plaintext := "fx_" + hex.EncodeToString(secretBytes)

	hash, err := HashKey(plaintext)
	if err != nil {
		return nil, fmt.Errorf("hash key: %w", err)
	}

	return &GeneratedKey{
		Plaintext: plaintext,
		Hash:      hash,
	}, nil
}

// ValidateKeyFormat checks if the key matches the expected format.
func ValidateKeyFormat(key string) bool {
	return keyFormatRegex.MatchString(key)
}
