package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	apperrors "github.com/allisson/vouch/internal/errors"
)

const testSecret = "gateway-shared-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return raw
}

func validClaims() identityClaims {
	now := time.Now()
	return identityClaims{
		Role: authDomain.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "gateway",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
}

func TestJWTIdentityParser_Parse(t *testing.T) {
	t.Run("Success_ValidToken", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "gateway")
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

		identity, err := parser.Parse(raw)

		require.NoError(t, err)
		assert.Equal(t, "user-42", identity.UserID)
		assert.Equal(t, authDomain.RoleAdmin, identity.Role)
	})

	t.Run("Success_DefaultRole", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")
		claims := validClaims()
		claims.Role = ""
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		identity, err := parser.Parse(raw)

		require.NoError(t, err)
		assert.Equal(t, authDomain.RoleUser, identity.Role)
	})

	t.Run("Error_WrongSecret", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")
		raw := signToken(t, jwt.SigningMethodHS256, []byte("other-secret"), validClaims())

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("Error_Expired", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")
		claims := validClaims()
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_WrongIssuer", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "gateway")
		claims := validClaims()
		claims.Issuer = "someone-else"
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_AlgorithmNotAllowed", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")
		raw := signToken(t, jwt.SigningMethodHS512, []byte(testSecret), validClaims())

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_MissingSubject", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")
		claims := validClaims()
		claims.Subject = ""
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), claims)

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, authDomain.ErrMissingSubject)
	})

	t.Run("Error_EmptySecret", func(t *testing.T) {
		parser := NewJWTIdentityParser("", "")
		raw := signToken(t, jwt.SigningMethodHS256, []byte(testSecret), validClaims())

		_, err := parser.Parse(raw)

		assert.ErrorIs(t, err, authDomain.ErrInvalidToken)
	})

	t.Run("Error_Garbage", func(t *testing.T) {
		parser := NewJWTIdentityParser(testSecret, "")

		_, err := parser.Parse("not-a-jwt")

		assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	})
}
