package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newValidator(t *testing.T) *JWTValidator {
	t.Helper()
	v, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "template-backend"})
	require.NoError(t, err)
	return v
}

func TestNewJWTValidator_RequiresSecret(t *testing.T) {
	_, err := NewJWTValidator(JWTConfig{})
	assert.Error(t, err)
}

func TestJWTValidator_RoundTrip(t *testing.T) {
	v := newValidator(t)

	token, err := v.GenerateToken("user-1", "a@example.com", []string{"admin"})
	require.NoError(t, err)

	claims, err := v.ValidateToken("Bearer " + token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "a@example.com", claims.Email)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestJWTValidator_Expired(t *testing.T) {
	v := newValidator(t)
	v.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := v.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	v.now = time.Now
	_, err = v.ValidateToken(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestJWTValidator_WrongSecret(t *testing.T) {
	other, err := NewJWTValidator(JWTConfig{SecretKey: "other", Issuer: "template-backend"})
	require.NoError(t, err)
	token, err := other.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = newValidator(t).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestJWTValidator_WrongIssuer(t *testing.T) {
	other, err := NewJWTValidator(JWTConfig{SecretKey: "s3cret", Issuer: "someone-else"})
	require.NoError(t, err)
	token, err := other.GenerateToken("user-1", "", nil)
	require.NoError(t, err)

	_, err = newValidator(t).ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}

func TestJWTValidator_Missing(t *testing.T) {
	_, err := newValidator(t).ValidateToken("  ")
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestUserContext(t *testing.T) {
	_, err := GetUserFromContext(context.Background())
	assert.Error(t, err)

	ctx := SetUserInContext(context.Background(), &UserContext{UserID: "u", Roles: []string{"admin"}})
	user, err := GetUserFromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, "u", user.UserID)
	assert.True(t, user.HasRole("admin"))
	assert.False(t, user.HasRole("viewer"))
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l := NewRateLimiter(2)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("ip:1"))
	assert.True(t, l.Allow("ip:1"))
	assert.False(t, l.Allow("ip:1"))
	assert.True(t, l.Allow("ip:2"))

	now = now.Add(30 * time.Second)
	assert.True(t, l.Allow("ip:1"))

	l.Reset("ip:1")
	assert.True(t, l.Allow("ip:1"))

	now = now.Add(time.Hour)
	assert.Equal(t, 2, l.Cleanup())
}
