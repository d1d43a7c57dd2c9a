package crypto

import (
	"fmt"
	"os"
	"strings"
)

// ResolveEncryptor builds an Encryptor from the first available key source:
// an explicitly provided base64 key, an existing key file, or a freshly
// generated key persisted to keyFile for the next start.
func ResolveEncryptor(key, keyFile string) (*Encryptor, error) {
	if key != "" {
		return NewEncryptorFromBase64(key)
	}

	if keyFile == "" {
		return nil, fmt.Errorf("no encryption key configured and no key file path set")
	}

	if data, err := os.ReadFile(keyFile); err == nil {
		return NewEncryptorFromBase64(strings.TrimSpace(string(data)))
	}

	newKey, err := GenerateKey()
	if err != nil {
		return nil, fmt.Errorf("failed to generate encryption key: %w", err)
	}

	// Restricted permissions: the key protects stored credentials
	if err := os.WriteFile(keyFile, []byte(newKey), 0600); err != nil {
		return nil, fmt.Errorf("failed to save encryption key to %s: %w", keyFile, err)
	}

	fmt.Printf("🔑 Generated new encryption key and saved to %s\n", keyFile)
	return NewEncryptorFromBase64(newKey)
}
