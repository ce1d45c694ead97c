// Package service defines interfaces for collaborators and stateless domain logic
// that don't naturally fit within a single entity.
package service

import (
	"context"
	"errors"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
)

// Identity provider failures. Implementations wrap provider-specific errors with these.
var (
	ErrEmailInUse        = errors.New("email already in use")
	ErrWeakPassword      = errors.New("weak password")
	ErrInvalidCredential = errors.New("invalid credential")
)

// SessionListener receives the session's identity every time it changes; nil means
// no identity is signed in.
type SessionListener func(identity *entity.Identity)

// IdentityProvider owns authentication for the storefront session.
type IdentityProvider interface {
	// OnSessionChanged registers listener and immediately delivers the current
	// identity (possibly nil), then every subsequent change, in order.
	OnSessionChanged(listener SessionListener) (repository.Subscription, error)

	// CreateAnonymousSession signs in a new anonymous identity.
	CreateAnonymousSession(ctx context.Context) (*entity.Identity, error)

	// RegisterWithPassword creates a registered identity and signs it in.
	RegisterWithPassword(ctx context.Context, email, password, displayName string) (*entity.Identity, error)

	// SignInWithPassword signs in an existing registered identity.
	SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error)

	// SignOut clears the current identity.
	SignOut(ctx context.Context) error

	// VerifyIDToken checks a token issued with an identity and returns the identity ID it proves.
	VerifyIDToken(ctx context.Context, token string) (string, error)
}
