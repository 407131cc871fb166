package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func TestJWTService_GenerateAndValidate(t *testing.T) {
	service := NewJWTService(testSecret, 24*time.Hour)

	token, expiresAt, err := service.Generate("user-1", "budi", RoleCustomer)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now().Add(23*time.Hour)))

	claims, err := service.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "budi", claims.Username)
	assert.Equal(t, RoleCustomer, claims.Role)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestJWTService_Expired(t *testing.T) {
	service := NewJWTService(testSecret, -time.Minute)

	token, _, err := service.Generate("user-1", "budi", RoleAdmin)
	require.NoError(t, err)

	claims, err := service.Validate(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_Invalid(t *testing.T) {
	service := NewJWTService(testSecret, time.Hour)
	other, _, err := NewJWTService("another-secret-key-of-enough-length!", time.Hour).Generate("u", "n", RoleAdmin)
	require.NoError(t, err)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{UserID: "u"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", other},
		{"unsigned", none},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.Validate(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}
