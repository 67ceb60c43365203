// Package service turns gateway-issued bearer tokens into identities.
package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	authDomain "github.com/allisson/vouch/internal/auth/domain"
	"github.com/allisson/vouch/internal/errors"
)

// IdentityParser validates a raw bearer token and returns the identity it asserts.
type IdentityParser interface {
	Parse(rawToken string) (*authDomain.Identity, error)
}

// identityClaims is the claim set issued by the gateway: the standard claims plus a role.
type identityClaims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// JWTIdentityParser validates HS256 tokens signed with a secret shared with the gateway.
type JWTIdentityParser struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewJWTIdentityParser creates a parser. An empty issuer disables the "iss" check.
func NewJWTIdentityParser(secret, issuer string) *JWTIdentityParser {
	return &JWTIdentityParser{
		secret: []byte(secret),
		issuer: issuer,
		leeway: 30 * time.Second,
	}
}

// Parse verifies signature, algorithm, time claims and issuer. Missing roles default to RoleUser.
func (p *JWTIdentityParser) Parse(rawToken string) (*authDomain.Identity, error) {
	if len(p.secret) == 0 || rawToken == "" {
		return nil, authDomain.ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(p.leeway),
	}
	if p.issuer != "" {
		opts = append(opts, jwt.WithIssuer(p.issuer))
	}

	claims := &identityClaims{}
	token, err := jwt.ParseWithClaims(rawToken, claims, func(*jwt.Token) (any, error) {
		return p.secret, nil
	}, opts...)
	if err != nil || !token.Valid {
		return nil, errors.Wrap(authDomain.ErrInvalidToken, errorMessage(err))
	}

	if claims.Subject == "" {
		return nil, authDomain.ErrMissingSubject
	}

	role := claims.Role
	if role == "" {
		role = authDomain.RoleUser
	}

	return &authDomain.Identity{UserID: claims.Subject, Role: role}, nil
}

func errorMessage(err error) string {
	if err == nil {
		return "token not valid"
	}
	return err.Error()
}
