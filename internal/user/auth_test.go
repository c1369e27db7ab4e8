package user

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("rahasia-banget")
	require.NoError(t, err)
	assert.NotEqual(t, "rahasia-banget", hash)

	assert.True(t, CheckPasswordHash("rahasia-banget", hash))
	assert.False(t, CheckPasswordHash("salah", hash))
}

func TestGenerateAndParseJWT(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret-for-jwt")

		token, err := GenerateJWT(42, RoleUser, "buyer@example.com")
		require.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := ParseJWT(token)
		require.NoError(t, err)
		assert.Equal(t, uint(42), claims.AccountID)
		assert.Equal(t, RoleUser, claims.Role)
		assert.Equal(t, "buyer@example.com", claims.Email)
	})

	t.Run("MissingSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "")

		_, err := GenerateJWT(1, RoleUser, "x@y.z")
		assert.Error(t, err)

		_, err = ParseJWT("whatever")
		assert.Error(t, err)
	})

	t.Run("TamperedToken", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "test-secret-for-jwt")

		token, err := GenerateJWT(42, RoleUser, "buyer@example.com")
		require.NoError(t, err)

		_, err = ParseJWT(token + "x")
		assert.Error(t, err)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		t.Setenv("JWT_SECRET", "secret-one")
		token, err := GenerateJWT(42, RoleUser, "buyer@example.com")
		require.NoError(t, err)

		t.Setenv("JWT_SECRET", "secret-two")
		_, err = ParseJWT(token)
		assert.Error(t, err)
	})
}
