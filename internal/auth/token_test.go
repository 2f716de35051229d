package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/cloudportal/internal/models"
	"github.com/vaughan-dsouza/cloudportal/internal/utils"
)

func newTestTokens(t *testing.T) *TokenManager {
	t.Helper()
	m, err := NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)
	return m
}

func TestNewTokenManager_RejectsBadSettings(t *testing.T) {
	_, err := NewTokenManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewTokenManager("s", 0)
	assert.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	m := newTestTokens(t)
	u := &models.User{ID: 42, Username: "sp", Role: models.RoleSubprovider}

	tok, exp, err := m.Issue(u)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, models.RoleSubprovider, claims.Role)
	assert.Equal(t, "42", claims.Subject)
}

func TestVerify_Expired(t *testing.T) {
	m := newTestTokens(t)
	issued := time.Now().Add(-2 * time.Hour)
	m.now = func() time.Time { return issued }

	tok, _, err := m.Issue(&models.User{ID: 1, Role: models.RoleAdmin})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Verify(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.ErrorIs(t, err, utils.ErrUnauthorized)
}

func TestVerify_Rejects(t *testing.T) {
	m := newTestTokens(t)
	valid := Claims{
		UserID: 1,
		Role:   models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}

	sign := func(method jwt.SigningMethod, key any, c Claims) string {
		s, err := jwt.NewWithClaims(method, c).SignedString(key)
		require.NoError(t, err)
		return s
	}

	noExp := valid
	noExp.ExpiresAt = nil

	badRole := valid
	badRole.Role = "root"

	tests := []struct {
		name  string
		token string
		want  error
	}{
		{"empty", "", ErrTokenMissing},
		{"garbage", "not.a.jwt", ErrTokenInvalid},
		{"wrong secret", sign(jwt.SigningMethodHS256, []byte("other"), valid), ErrTokenInvalid},
		{"hs512", sign(jwt.SigningMethodHS512, []byte("test-secret"), valid), ErrTokenInvalid},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid), ErrTokenInvalid},
		{"no expiry", sign(jwt.SigningMethodHS256, []byte("test-secret"), noExp), ErrTokenInvalid},
		{"unknown role", sign(jwt.SigningMethodHS256, []byte("test-secret"), badRole), ErrTokenInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := m.Verify(tt.token)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
