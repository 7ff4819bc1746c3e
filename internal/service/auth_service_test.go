package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonderless/Test-autoestima-sub000/internal/config"
	"github.com/wonderless/Test-autoestima-sub000/internal/model"
)

func newAuth() *AuthService {
	return NewAuthService(config.JWTConfig{Secret: "test-secret", Issuer: "autoestima", Expire: time.Hour})
}

func TestIssueAndValidateToken(t *testing.T) {
	auth := newAuth()
	tok, err := auth.IssueToken("u1", "ana@example.com", model.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, "u1", tok.UserID)

	claims, err := auth.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.Equal(t, model.RoleAdmin, claims.Role)
}

func TestIssueTokenDefaults(t *testing.T) {
	auth := newAuth()
	tok, err := auth.IssueToken("", "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, tok.UserID)

	claims, err := auth.ValidateToken(tok.Token)
	require.NoError(t, err)
	assert.Equal(t, model.RoleStudent, claims.Role)

	_, err = auth.IssueToken("u1", "", model.Role("root"))
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestValidateTokenRejects(t *testing.T) {
	auth := newAuth()
	other := NewAuthService(config.JWTConfig{Secret: "another-secret"})
	foreign, err := other.IssueToken("u1", "", model.RoleStudent)
	require.NoError(t, err)

	past := time.Now().Add(-time.Hour)
	stale, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.UserClaims{
		UserID: "u1",
		Role:   model.RoleStudent,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(past),
		},
	}).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, &model.UserClaims{UserID: "u1", Role: model.RoleAdmin})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"garbage":  "not-a-token",
		"foreign":  foreign.Token,
		"unsigned": unsigned,
		"expired":  stale,
	} {
		_, err := auth.ValidateToken(token)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}
