package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret = "test-secret-key-for-testing-purposes"
	testIssuer = "staybook"
)

func TestNewService(t *testing.T) {
	service := NewService(testSecret, testIssuer, time.Hour)

	assert.NotNil(t, service)
	assert.Equal(t, testSecret, service.secret)
	assert.Equal(t, testIssuer, service.issuer)
	assert.Equal(t, time.Hour, service.accessTokenExpiry)
}

func TestGenerateAccessToken(t *testing.T) {
	service := NewService(testSecret, testIssuer, time.Hour)

	token, err := service.GenerateAccessToken("alice", RoleUser)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, RoleUser, claims.Role)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
}

func TestGenerateServiceToken(t *testing.T) {
	service := NewService(testSecret, testIssuer, time.Hour)

	token, err := service.GenerateServiceToken()
	require.NoError(t, err)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, ServiceSubject, claims.Username)
	assert.Equal(t, RoleAdmin, claims.Role)
}

func TestValidateToken(t *testing.T) {
	service := NewService(testSecret, testIssuer, time.Hour)

	t.Run("Wrong secret", func(t *testing.T) {
		other := NewService("another-secret", testIssuer, time.Hour)
		token, err := other.GenerateAccessToken("alice", RoleUser)
		require.NoError(t, err)

		claims, err := service.ValidateToken(token)
		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Wrong issuer", func(t *testing.T) {
		other := NewService(testSecret, "someone-else", time.Hour)
		token, err := other.GenerateAccessToken("alice", RoleUser)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Expired", func(t *testing.T) {
		expired := NewService(testSecret, testIssuer, -time.Minute)
		token, err := expired.GenerateAccessToken("alice", RoleUser)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
		assert.True(t, service.IsTokenExpired(token))
	})

	t.Run("Malformed", func(t *testing.T) {
		_, err := service.ValidateToken("not.a.token")
		assert.Error(t, err)
		assert.True(t, service.IsTokenExpired("not.a.token"))
	})

	t.Run("Unexpected signing method", func(t *testing.T) {
		claims := Claims{
			Username: "alice",
			Role:     RoleAdmin,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    testIssuer,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})

	t.Run("Missing username", func(t *testing.T) {
		token, err := service.sign("", RoleUser, "")
		require.NoError(t, err)

		_, err = service.ValidateToken(token)
		assert.Error(t, err)
	})
}

func TestIsTokenExpired(t *testing.T) {
	service := NewService(testSecret, testIssuer, time.Hour)
	token, err := service.GenerateAccessToken("bob", RoleAdmin)
	require.NoError(t, err)

	assert.False(t, service.IsTokenExpired(token))
}
