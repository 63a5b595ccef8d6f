package services

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAuthService_Login(t *testing.T) {
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	require.NoError(t, err)
	service := NewAuthService(slog.Default(), string(hash))

	t.Run("correct password", func(t *testing.T) {
		assert.NoError(t, service.Login(ctx, "correct horse"))
	})

	t.Run("wrong password", func(t *testing.T) {
		assert.ErrorIs(t, service.Login(ctx, "battery staple"), ErrInvalidCredentials)
	})

	t.Run("empty password", func(t *testing.T) {
		assert.ErrorIs(t, service.Login(ctx, ""), ErrInvalidCredentials)
	})

	t.Run("garbage hash never authenticates", func(t *testing.T) {
		broken := NewAuthService(slog.Default(), "not-a-bcrypt-hash")
		assert.ErrorIs(t, broken.Login(ctx, "anything"), ErrInvalidCredentials)
	})
}
