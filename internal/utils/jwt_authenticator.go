package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// AuthenticatedUser is the caller identity carried by a bearer token.
type AuthenticatedUser struct {
	Sub    string   `json:"sub"`
	Iss    string   `json:"iss"`
	Aud    []string `json:"aud"`
	Exp    int64    `json:"exp"`
	Iat    int64    `json:"iat"`
	Roles  []string `json:"roles"`
	Scopes []string `json:"scopes"`
}

// JwtAuthenticator validates HS256 tokens signed with a shared secret.
type JwtAuthenticator struct {
	secret []byte
}

// NewSimpleJwtAuthenticator creates an authenticator for the given secret
func NewSimpleJwtAuthenticator(secret string) (*JwtAuthenticator, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &JwtAuthenticator{secret: []byte(secret)}, nil
}

// ValidateToken parses and verifies token and maps its claims.
func (a *JwtAuthenticator) ValidateToken(token string) (*AuthenticatedUser, error) {
	parsed, err := jwt.Parse(token, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}
	if !parsed.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	return a.mapClaimsToUser(claims)
}

func (a *JwtAuthenticator) mapClaimsToUser(claims jwt.MapClaims) (*AuthenticatedUser, error) {
	user := &AuthenticatedUser{}

	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token has no subject")
	}
	user.Sub = sub
	user.Iss, _ = claims["iss"].(string)

	if exp, ok := claims["exp"].(float64); ok {
		user.Exp = int64(exp)
	}
	if iat, ok := claims["iat"].(float64); ok {
		user.Iat = int64(iat)
	}

	switch aud := claims["aud"].(type) {
	case string:
		user.Aud = []string{aud}
	case []interface{}:
		user.Aud = toStrings(aud)
	}
	if roles, ok := claims["roles"].([]interface{}); ok {
		user.Roles = toStrings(roles)
	}
	if scopes, ok := claims["scopes"].([]interface{}); ok {
		user.Scopes = toStrings(scopes)
	}

	return user, nil
}

func toStrings(values []interface{}) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
