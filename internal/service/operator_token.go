package service

import (
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed, expired or badly signed.
	ErrInvalidToken = errors.New("invalid or expired token")
	// ErrMissingOperator is returned when a valid token carries no operator id.
	ErrMissingOperator = errors.New("token has no operator id")
)

// OperatorClaims are the claims of an operator bearer token. Tokens are
// issued by the warehouse's auth service; this service only validates them.
type OperatorClaims struct {
	Name  string   `json:"name,omitempty"`
	Roles []string `json:"roles,omitempty"`
	jwt.RegisteredClaims
}

// OperatorID returns the token subject.
func (c *OperatorClaims) OperatorID() string {
	return c.Subject
}

// OperatorTokenValidator checks HS256 operator tokens against a shared secret.
type OperatorTokenValidator struct {
	secretKey []byte
	parser    *jwt.Parser
}

// NewOperatorTokenValidator creates a validator for tokens signed with secret.
func NewOperatorTokenValidator(secret string) *OperatorTokenValidator {
	return &OperatorTokenValidator{
		secretKey: []byte(secret),
		parser:    jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()),
	}
}

// Validate parses the token and returns its claims.
func (v *OperatorTokenValidator) Validate(tokenString string) (*OperatorClaims, error) {
	claims := &OperatorClaims{}
	token, err := v.parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return nil, ErrMissingOperator
	}
	return claims, nil
}

// Sign issues a token for the claims. It is used by tests and local tooling.
func (v *OperatorTokenValidator) Sign(claims *OperatorClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secretKey)
}
