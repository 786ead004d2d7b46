package adapters

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerror "github.com/finance-tracker/budget-sync/internal/domain/error"
)

func TestTokenService_ValidateAccessToken(t *testing.T) {
	ctx := context.Background()
	service := NewTokenService("test-secret")
	userID := uuid.New()

	t.Run("valid token", func(t *testing.T) {
		token, err := service.IssueAccessToken(userID, "ana@example.com", time.Minute)
		require.NoError(t, err)

		claims, err := service.ValidateAccessToken(ctx, token)

		require.NoError(t, err)
		assert.Equal(t, userID, claims.UserID)
		assert.Equal(t, "ana@example.com", claims.Email)
		assert.WithinDuration(t, time.Now().Add(time.Minute), claims.ExpiresAt, 5*time.Second)
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := service.IssueAccessToken(userID, "ana@example.com", -time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)

		assert.ErrorIs(t, err, domainerror.ErrExpiredToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		token, err := NewTokenService("other-secret").IssueAccessToken(userID, "", time.Minute)
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)

		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("refresh token is rejected", func(t *testing.T) {
		claims := CustomClaims{
			UserID:    userID.String(),
			TokenType: "refresh",
			RegisteredClaims: jwt.RegisteredClaims{
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
		require.NoError(t, err)

		_, err = service.ValidateAccessToken(ctx, token)

		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.ValidateAccessToken(ctx, "not-a-token")

		assert.ErrorIs(t, err, domainerror.ErrInvalidToken)
	})
}
