// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"luxe/internal/domain/entity"
)

// SessionState is a step of the session lifecycle.
type SessionState string

const (
	// SessionInitializing is the state before the provider reported anything,
	// and again right after the identity was cleared.
	SessionInitializing SessionState = "initializing"
	// SessionRequestingAnonymous means an anonymous session is being created.
	SessionRequestingAnonymous SessionState = "requesting_anonymous"
	// SessionReady means an identity is active.
	SessionReady SessionState = "ready"
	// SessionFailed means guest access was denied; no retry happens for this run.
	SessionFailed SessionState = "failed"
)

// SessionView is the published state of the session.
type SessionView struct {
	State    SessionState     `json:"state"`
	Identity *entity.Identity `json:"identity,omitempty"`
	Err      error            `json:"-"`
}

// Ready reports whether an identity is active.
func (v SessionView) Ready() bool {
	return v.State == SessionReady && v.Identity != nil
}

// SessionUsecase tracks the identity of the storefront session.
type SessionUsecase interface {
	// Start subscribes to the identity provider. It must be called once.
	Start(ctx context.Context) error
	Stop()

	Current() SessionView
	Identity() *entity.Identity
	Watch(fn func(SessionView)) (cancel func())

	// WatchIdentity calls fn every time the active identity changes; nil means none.
	WatchIdentity(fn func(*entity.Identity)) (cancel func())

	Register(ctx context.Context, input *RegisterInput) (*entity.Identity, error)
	SignIn(ctx context.Context, input *SignInInput) (*entity.Identity, error)
	SignOut(ctx context.Context) error

	// Authenticate accepts an ID token only when it proves the active identity.
	Authenticate(ctx context.Context, token string) (*entity.Identity, error)
}

// IdentityBinder is implemented by synchronizers whose data belongs to one identity.
type IdentityBinder interface {
	// Bind tears down the subscription of the previous identity, discards its
	// snapshot and, if identity is not nil, subscribes for the new one.
	Bind(identity *entity.Identity)
}

// --- Input DTOs ---

// RegisterInput defines the data required to register an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignInInput defines the data required to sign in.
type SignInInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}
