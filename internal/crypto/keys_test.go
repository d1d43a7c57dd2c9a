package crypto

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveEncryptor(t *testing.T) {
	t.Run("uses explicit key when provided", func(t *testing.T) {
		key, err := GenerateKey()
		require.NoError(t, err)

		enc, err := ResolveEncryptor(key, "")
		require.NoError(t, err)
		require.NotNil(t, enc)
	})

	t.Run("creates key file on first run", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "app.key")

		enc, err := ResolveEncryptor("", keyFile)
		require.NoError(t, err)
		require.NotNil(t, enc)

		info, err := os.Stat(keyFile)
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	})

	t.Run("reuses an existing key file", func(t *testing.T) {
		keyFile := filepath.Join(t.TempDir(), "app.key")

		first, err := ResolveEncryptor("", keyFile)
		require.NoError(t, err)
		ciphertext, err := first.Encrypt("payload")
		require.NoError(t, err)

		second, err := ResolveEncryptor("", keyFile)
		require.NoError(t, err)
		plaintext, err := second.Decrypt(ciphertext)
		require.NoError(t, err)
		assert.Equal(t, "payload", plaintext)
	})

	t.Run("rejects malformed explicit key", func(t *testing.T) {
		_, err := ResolveEncryptor("not-base64!!!", "")
		assert.Error(t, err)
	})
}
