// Package firebase implements service.IdentityProvider on Firebase Authentication.
// Accounts are created through the Admin SDK; password and anonymous sign-in go
// through the Identity Toolkit relying-party API, and every returned ID token is
// verified before the identity is published.
package firebase

import (
	"context"
	"log/slog"
	"strings"

	"luxe/config"
	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/infra/auth"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"github.com/pkg/errors"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"
)

const signInProviderAnonymous = "anonymous"

// Provider implements service.IdentityProvider for one session.
type Provider struct {
	admin     *fbauth.Client
	toolkit   *identitytoolkit.RelyingpartyService
	session   *auth.Session
	minLength int
	logger    *slog.Logger
}

// New builds the Admin SDK and Identity Toolkit clients for the configured project.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Provider, error) {
	fb := cfg.Firebase
	if fb == nil || fb.ProjectID == "" {
		return nil, errors.New("firebase project ID is required for the firebase identity provider")
	}
	if fb.APIKey == "" {
		return nil, errors.New("firebase API key is required for password sign-in")
	}

	var adminOpts []option.ClientOption
	if fb.CredentialsPath != "" {
		adminOpts = append(adminOpts, option.WithCredentialsFile(fb.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: fb.ProjectID}, adminOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	admin, err := app.Auth(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get auth client")
	}

	toolkit, err := identitytoolkit.NewService(ctx, option.WithAPIKey(fb.APIKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to create identity toolkit client")
	}

	minLength := 6
	if cfg.PasswordStrength != nil && cfg.PasswordStrength.MinLength > 0 {
		minLength = cfg.PasswordStrength.MinLength
	}

	logger.Info("Firebase identity provider initialized", slog.String("project_id", fb.ProjectID))

	return &Provider{
		admin:     admin,
		toolkit:   toolkit.Relyingparty,
		session:   auth.NewSession(),
		minLength: minLength,
		logger:    logger,
	}, nil
}

// OnSessionChanged implements service.IdentityProvider.
func (p *Provider) OnSessionChanged(fn service.SessionListener) (repository.Subscription, error) {
	return p.session.Listen(fn), nil
}

// CreateAnonymousSession implements service.IdentityProvider.
func (p *Provider) CreateAnonymousSession(ctx context.Context) (*entity.Identity, error) {
	resp, err := p.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{}).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrap(mapToolkitError(err), "anonymous sign-in")
	}

	return p.establish(ctx, resp.IdToken, resp.Email, resp.DisplayName)
}

// RegisterWithPassword implements service.IdentityProvider.
func (p *Provider) RegisterWithPassword(ctx context.Context, email, password, displayName string) (*entity.Identity, error) {
	if len(password) < p.minLength {
		return nil, errors.Wrapf(service.ErrWeakPassword, "password should be at least %d characters", p.minLength)
	}

	user := (&fbauth.UserToCreate{}).Email(strings.TrimSpace(email)).Password(password)
	if name := strings.TrimSpace(displayName); name != "" {
		user = user.DisplayName(name)
	}

	if _, err := p.admin.CreateUser(ctx, user); err != nil {
		if fbauth.IsEmailAlreadyExists(err) {
			return nil, errors.Wrapf(service.ErrEmailInUse, "register %s", email)
		}

		return nil, errors.Wrap(err, "register")
	}

	return p.SignInWithPassword(ctx, email, password)
}

// SignInWithPassword implements service.IdentityProvider.
func (p *Provider) SignInWithPassword(ctx context.Context, email, password string) (*entity.Identity, error) {
	resp, err := p.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             strings.TrimSpace(email),
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, errors.Wrap(mapToolkitError(err), "sign in")
	}

	return p.establish(ctx, resp.IdToken, resp.Email, resp.DisplayName)
}

// SignOut implements service.IdentityProvider. Sign-out is local to the session.
func (p *Provider) SignOut(_ context.Context) error {
	p.session.Set(nil)
	p.logger.Debug("identity signed out")

	return nil
}

// VerifyIDToken implements service.IdentityProvider.
func (p *Provider) VerifyIDToken(ctx context.Context, idToken string) (string, error) {
	token, err := p.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return "", errors.Wrap(service.ErrInvalidCredential, err.Error())
	}

	return token.UID, nil
}

// establish verifies idToken and publishes the identity it proves.
func (p *Provider) establish(ctx context.Context, idToken, email, displayName string) (*entity.Identity, error) {
	token, err := p.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, errors.Wrap(err, "verify id token")
	}

	identity := &entity.Identity{
		ID:          token.UID,
		Anonymous:   token.Firebase.SignInProvider == signInProviderAnonymous,
		Email:       email,
		DisplayName: displayName,
		IDToken:     idToken,
	}
	p.session.Set(identity)

	p.logger.Debug("identity signed in",
		slog.String("uid", identity.ID),
		slog.Bool("anonymous", identity.Anonymous),
	)

	return identity, nil
}

// mapToolkitError translates Identity Toolkit error reasons into the provider's typed failures.
func mapToolkitError(err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}

	reason := apiErr.Message
	if code, _, ok := strings.Cut(reason, " "); ok {
		reason = code
	}

	switch reason {
	case "EMAIL_EXISTS":
		return errors.Wrap(service.ErrEmailInUse, apiErr.Message)
	case "WEAK_PASSWORD":
		return errors.Wrap(service.ErrWeakPassword, apiErr.Message)
	case "INVALID_PASSWORD", "EMAIL_NOT_FOUND", "INVALID_LOGIN_CREDENTIALS":
		return errors.Wrap(service.ErrInvalidCredential, apiErr.Message)
	default:
		return err
	}
}
