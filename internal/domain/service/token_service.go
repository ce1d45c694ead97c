package service

import (
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims are the claims carried by an ID token minted for a storefront identity.
type IdentityClaims struct {
	Anonymous bool   `json:"anonymous"`
	Email     string `json:"email,omitempty"`
	Name      string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// TokenService defines the interface for issuing and validating identity ID tokens.
type TokenService interface {
	// IssueIDToken signs a token for the identity with the given subject.
	IssueIDToken(subject string, claims IdentityClaims) (string, error)

	// ValidateIDToken checks the signature and expiry of a token and returns its claims.
	ValidateIDToken(token string) (*IdentityClaims, error)
}
