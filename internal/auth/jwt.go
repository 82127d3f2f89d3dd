// Package auth consumes the identity provider: it verifies the caller's
// JWT and yields a stable user id plus role. All ownership checks in the
// service layer trust this identity.
package auth

import (
	"errors"
	"strings"

	gojwt "github.com/golang-jwt/jwt/v5"

	"hail/internal/domain"
)

// ErrUnauthorized is returned when the request carries no valid identity.
var ErrUnauthorized = errors.New("missing or invalid credentials")

// Identity is the verified caller.
type Identity struct {
	UserID string
	Role   domain.Role
}

// Claims is the JWT payload minted by the identity provider.
type Claims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	gojwt.RegisteredClaims
}

// Verifier parses and validates tokens against a shared secret.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier. The secret must match the one the
// identity provider signs with.
func NewVerifier(secret string) (*Verifier, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// Verify validates a raw token and returns the caller's identity.
func (v *Verifier) Verify(token string) (Identity, error) {
	token = strings.TrimPrefix(token, "Bearer ")
	if token == "" {
		return Identity{}, ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := gojwt.ParseWithClaims(token, claims, func(t *gojwt.Token) (any, error) {
		if _, ok := t.Method.(*gojwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return v.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrUnauthorized
	}

	role := domain.Role(claims.Role)
	if claims.UserID == "" || (role != domain.RoleRider && role != domain.RoleDriver) {
		return Identity{}, ErrUnauthorized
	}

	return Identity{UserID: claims.UserID, Role: role}, nil
}
