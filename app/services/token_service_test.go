package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenService(t *testing.T, accessTTL, refreshTTL time.Duration) TokenService {
	t.Helper()
	service, err := NewTokenService(accessTTL, refreshTTL, "carbontrace-test", "carbontrace-api", false, "", "", "test-secret-key-for-tokens")
	require.NoError(t, err)
	return service
}

func TestTokenService(t *testing.T) {
	t.Run("GenerateAndValidate", func(t *testing.T) {
		service := newTestTokenService(t, time.Hour, 24*time.Hour)

		accessToken, refreshToken, err := service.GenerateTokens(42)
		require.NoError(t, err)
		require.NotEmpty(t, accessToken)
		require.NotEmpty(t, refreshToken)
		assert.NotEqual(t, accessToken, refreshToken)

		claims, err := service.ValidateToken(accessToken)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)
		assert.NotEmpty(t, claims.TokenID)
		assert.True(t, claims.ExpiresAt.After(claims.IssuedAt))

		refreshClaims, err := service.ValidateToken(refreshToken)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refreshClaims.TokenType)
	})

	t.Run("ExpiredTokenRejected", func(t *testing.T) {
		service := newTestTokenService(t, -time.Minute, -time.Minute)

		accessToken, _, err := service.GenerateTokens(42)
		require.NoError(t, err)

		_, err = service.ValidateToken(accessToken)
		assert.ErrorIs(t, err, ErrTokenExpired)
	})

	t.Run("GarbageTokenRejected", func(t *testing.T) {
		service := newTestTokenService(t, time.Hour, 24*time.Hour)

		_, err := service.ValidateToken("not.a.token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("ForeignSecretRejected", func(t *testing.T) {
		service := newTestTokenService(t, time.Hour, 24*time.Hour)
		other, err := NewTokenService(time.Hour, 24*time.Hour, "carbontrace-test", "carbontrace-api", false, "", "", "a-different-secret")
		require.NoError(t, err)

		accessToken, _, err := other.GenerateTokens(42)
		require.NoError(t, err)

		_, err = service.ValidateToken(accessToken)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("SecretKeyRequiredWithoutRSA", func(t *testing.T) {
		_, err := NewTokenService(time.Hour, 24*time.Hour, "iss", "aud", false, "", "", "")
		assert.Error(t, err)
	})
}

func TestRefreshToken(t *testing.T) {
	t.Run("IssuesFreshPair", func(t *testing.T) {
		service := newTestTokenService(t, time.Hour, 24*time.Hour)

		_, refreshToken, err := service.GenerateTokens(7)
		require.NoError(t, err)

		newAccess, newRefresh, err := service.RefreshToken(refreshToken)
		require.NoError(t, err)

		claims, err := service.ValidateToken(newAccess)
		require.NoError(t, err)
		assert.Equal(t, uint(7), claims.UserID)
		assert.Equal(t, "access", claims.TokenType)

		refreshClaims, err := service.ValidateToken(newRefresh)
		require.NoError(t, err)
		assert.Equal(t, "refresh", refreshClaims.TokenType)
	})

	t.Run("AccessTokenCannotRefresh", func(t *testing.T) {
		service := newTestTokenService(t, time.Hour, 24*time.Hour)

		accessToken, _, err := service.GenerateTokens(7)
		require.NoError(t, err)

		_, _, err = service.RefreshToken(accessToken)
		assert.Error(t, err)
	})
}
