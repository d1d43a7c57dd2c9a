package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkorchagin/docforge/internal/config"
	"github.com/mkorchagin/docforge/internal/crypto"
	"github.com/mkorchagin/docforge/internal/database"
)

func setupService(t *testing.T) *Service {
	t.Helper()

	key, err := crypto.GenerateKeyBytes()
	require.NoError(t, err)
	encryptor, err := crypto.NewEncryptor(key)
	require.NoError(t, err)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "auth.db"), encryptor)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// Low cost keeps the test fast
	return NewService(db, config.Auth{Mode: config.AuthModeToken, BcryptCost: 4})
}

func TestCreateUser(t *testing.T) {
	svc := setupService(t)

	t.Run("issues a usable token", func(t *testing.T) {
		user, token, err := svc.CreateUser("alice", "a-long-enough-password")
		require.NoError(t, err)
		assert.NotEmpty(t, token)

		authed, err := svc.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, user.ID, authed.ID)
	})

	t.Run("rejects duplicate usernames", func(t *testing.T) {
		_, _, err := svc.CreateUser("bob", "a-long-enough-password")
		require.NoError(t, err)
		_, _, err = svc.CreateUser("bob", "another-long-password")
		assert.ErrorIs(t, err, ErrUserExists)
	})

	t.Run("rejects invalid usernames", func(t *testing.T) {
		_, _, err := svc.CreateUser("x", "a-long-enough-password")
		assert.ErrorIs(t, err, ErrUsernameInvalid)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		_, _, err := svc.CreateUser("carol", "short")
		assert.ErrorIs(t, err, ErrPasswordTooShort)
	})
}

func TestLogin(t *testing.T) {
	svc := setupService(t)

	_, firstToken, err := svc.CreateUser("dave", "a-long-enough-password")
	require.NoError(t, err)

	t.Run("rotates the token", func(t *testing.T) {
		_, newToken, err := svc.Login("dave", "a-long-enough-password")
		require.NoError(t, err)
		assert.NotEqual(t, firstToken, newToken)

		_, err = svc.Authenticate(newToken)
		assert.NoError(t, err)
		_, err = svc.Authenticate(firstToken)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("rejects a wrong password", func(t *testing.T) {
		_, _, err := svc.Login("dave", "not-the-password")
		assert.ErrorIs(t, err, ErrInvalidPassword)
	})

	t.Run("rejects an unknown user", func(t *testing.T) {
		_, _, err := svc.Login("nobody", "a-long-enough-password")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}

func TestAuthenticate(t *testing.T) {
	svc := setupService(t)

	t.Run("empty token is invalid", func(t *testing.T) {
		_, err := svc.Authenticate("")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("unknown token is invalid", func(t *testing.T) {
		_, err := svc.Authenticate("deadbeef")
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}
