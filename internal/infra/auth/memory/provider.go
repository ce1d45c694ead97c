// Package memory is an in-process identity provider with bcrypt-hashed accounts
// and locally minted ID tokens. It serves local development and tests.
package memory

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"luxe/config"
	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type account struct {
	uid          string
	email        string
	displayName  string
	passwordHash string
}

// Provider implements service.IdentityProvider for one session.
type Provider struct {
	mu       sync.Mutex
	accounts map[string]*account // keyed by lower-cased email
	session  *auth.Session

	// failAnonymous makes CreateAnonymousSession fail, as when guest access is disabled.
	failAnonymous error

	hasher    service.PasswordHasher
	tokens    service.TokenService
	minLength int
	logger    *slog.Logger
}

// New creates a Provider with no accounts and no signed-in identity.
func New(cfg *config.Config, hasher service.PasswordHasher, tokens service.TokenService, logger *slog.Logger) *Provider {
	minLength := 6
	if cfg.PasswordStrength != nil && cfg.PasswordStrength.MinLength > 0 {
		minLength = cfg.PasswordStrength.MinLength
	}

	return &Provider{
		accounts:  make(map[string]*account),
		session:   auth.NewSession(),
		hasher:    hasher,
		tokens:    tokens,
		minLength: minLength,
		logger:    logger,
	}
}

// DisableAnonymous makes every later CreateAnonymousSession fail with err; nil re-enables it.
func (p *Provider) DisableAnonymous(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.failAnonymous = err
}

// OnSessionChanged implements service.IdentityProvider.
func (p *Provider) OnSessionChanged(fn service.SessionListener) (repository.Subscription, error) {
	return p.session.Listen(fn), nil
}

// CreateAnonymousSession implements service.IdentityProvider.
func (p *Provider) CreateAnonymousSession(ctx context.Context) (*entity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failAnonymous != nil {
		return nil, errors.Wrap(p.failAnonymous, "anonymous sign-in")
	}

	identity, err := p.mint(&account{uid: uuid.NewString()}, true)
	if err != nil {
		return nil, err
	}
	p.signIn(identity)

	return identity, nil
}

// RegisterWithPassword implements service.IdentityProvider.
func (p *Provider) RegisterWithPassword(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	email = strings.TrimSpace(email)
	if _, domain, ok := strings.Cut(email, "@"); !ok || domain == "" {
		return nil, errors.Errorf("invalid email %q", email)
	}
	if len(password) < p.minLength {
		return nil, errors.Wrapf(service.ErrWeakPassword, "password should be at least %d characters", p.minLength)
	}

	hash, err := p.hasher.Hash(password)
	if err != nil {
		return nil, errors.Wrap(err, "hash password")
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	key := strings.ToLower(email)
	if _, exists := p.accounts[key]; exists {
		return nil, errors.Wrapf(service.ErrEmailInUse, "register %s", email)
	}

	acc := &account{
		uid:          uuid.NewString(),
		email:        email,
		displayName:  strings.TrimSpace(displayName),
		passwordHash: hash,
	}

	identity, err := p.mint(acc, false)
	if err != nil {
		return nil, err
	}
	p.accounts[key] = acc
	p.signIn(identity)

	return identity, nil
}

// SignInWithPassword implements service.IdentityProvider.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	if err := ctx.Err(); err != nil {
		return nil, errors.WithStack(err)
	}

	p.mu.Lock()
	acc, exists := p.accounts[strings.ToLower(strings.TrimSpace(email))]
	p.mu.Unlock()

	// Unknown email and wrong password are indistinguishable to the caller.
	if !exists || !p.hasher.Check(password, acc.passwordHash) {
		return nil, errors.Wrap(service.ErrInvalidCredential, "sign in")
	}

	identity, err := p.mint(acc, false)
	if err != nil {
		return nil, err
	}

	p.signIn(identity)

	return identity, nil
}

// SignOut implements service.IdentityProvider.
func (p *Provider) SignOut(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.WithStack(err)
	}

	p.signIn(nil)

	return nil
}

// VerifyIDToken implements service.IdentityProvider.
func (p *Provider) VerifyIDToken(_ context.Context, token string) (string, error) {
	claims, err := p.tokens.ValidateIDToken(token)
	if err != nil {
		return "", errors.Wrap(service.ErrInvalidCredential, err.Error())
	}

	return claims.Subject, nil
}

// Current returns the signed-in identity, or nil.
func (p *Provider) Current() *entity.Identity {
	return p.session.Current()
}

func (p *Provider) mint(acc *account, anonymous bool) (*entity.Identity, error) {
	token, err := p.tokens.IssueIDToken(acc.uid, service.IdentityClaims{
		Anonymous: anonymous,
		Email:     acc.email,
		Name:      acc.displayName,
	})
	if err != nil {
		return nil, err
	}

	return &entity.Identity{
		ID:          acc.uid,
		Anonymous:   anonymous,
		Email:       acc.email,
		DisplayName: acc.displayName,
		IDToken:     token,
	}, nil
}

func (p *Provider) signIn(identity *entity.Identity) {
	p.session.Set(identity)

	if identity == nil {
		p.logger.Debug("identity signed out")
	} else {
		p.logger.Debug("identity signed in",
			slog.String("uid", identity.ID),
			slog.Bool("anonymous", identity.Anonymous),
		)
	}
}
