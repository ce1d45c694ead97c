package impl

import (
	"context"
	"log/slog"
	"sync"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/reactive"
	"luxe/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
)

// sessionService implements the SessionUsecase interface.
type sessionService struct {
	mu      sync.Mutex
	ctx     context.Context
	sub     repository.Subscription
	started bool

	view     *reactive.Value[usecase.SessionView]
	identity *reactive.Value[*entity.Identity]

	provider service.IdentityProvider
	store    repository.DocumentStore
	layout   repository.Layout
	validate *validator.Validate
	logger   *slog.Logger
}

// NewSessionService is the constructor for sessionService.
func NewSessionService(
	provider service.IdentityProvider,
	store repository.DocumentStore,
	layout repository.Layout,
	logger *slog.Logger,
) usecase.SessionUsecase {
	return &sessionService{
		view:     reactive.NewValue(usecase.SessionView{State: usecase.SessionInitializing}),
		identity: reactive.NewValue[*entity.Identity](nil),
		provider: provider,
		store:    store,
		layout:   layout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Start subscribes once to the provider's session stream.
func (srv *sessionService) Start(ctx context.Context) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.started {
		return errors.New("session already started")
	}

	sub, err := srv.provider.OnSessionChanged(srv.onSessionChanged)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to session changes")
	}

	srv.ctx = ctx
	srv.sub = sub
	srv.started = true

	return nil
}

// Stop cancels the provider subscription.
func (srv *sessionService) Stop() {
	srv.mu.Lock()
	sub := srv.sub
	srv.sub = nil
	srv.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}

func (srv *sessionService) Current() usecase.SessionView {
	return srv.view.Get()
}

func (srv *sessionService) Identity() *entity.Identity {
	return srv.identity.Get()
}

func (srv *sessionService) Watch(fn func(usecase.SessionView)) func() {
	return srv.view.Observe(fn)
}

func (srv *sessionService) WatchIdentity(fn func(*entity.Identity)) func() {
	return srv.identity.Observe(fn)
}

// onSessionChanged runs on the provider's listener goroutine, one notification at a time.
func (srv *sessionService) onSessionChanged(identity *entity.Identity) {
	if identity != nil {
		srv.publishIdentity(identity)
		srv.view.Publish(usecase.SessionView{State: usecase.SessionReady, Identity: identity})
		srv.logger.Info("Session ready", "identityID", identity.ID, "anonymous", identity.Anonymous)

		return
	}

	srv.publishIdentity(nil)

	if srv.view.Get().State == usecase.SessionFailed {
		srv.logger.Debug("Guest access denied earlier; not requesting another anonymous session")

		return
	}

	srv.view.Publish(usecase.SessionView{State: usecase.SessionInitializing})
	srv.view.Publish(usecase.SessionView{State: usecase.SessionRequestingAnonymous})

	srv.mu.Lock()
	ctx := srv.ctx
	srv.mu.Unlock()

	// The provider reports the new identity through this same stream.
	if _, err := srv.provider.CreateAnonymousSession(ctx); err != nil {
		srv.logger.Error("Failed to create anonymous session", "error", err)
		srv.view.Publish(usecase.SessionView{
			State: usecase.SessionFailed,
			Err:   domainerrors.Wrap(domainerrors.ErrGuestAccessDenied, err),
		})
	}
}

// publishIdentity skips notifications that do not change the principal.
func (srv *sessionService) publishIdentity(identity *entity.Identity) {
	current := srv.identity.Get()
	if current == nil && identity == nil {
		return
	}
	srv.identity.Publish(identity)
}

// Register creates an account, signs it in and writes its profile.
func (srv *sessionService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.Identity, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(err.Error()), "invalid registration")
	}

	srv.logger.Info("Registering account", "email", input.Email)

	identity, err := srv.provider.RegisterWithPassword(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, mapProviderError(err)
	}

	profile := entity.DefaultProfileFor(identity)
	profile.Name = input.Name
	profile.Email = input.Email
	if err := srv.store.Set(ctx, srv.layout.Profile(identity.ID), profileFields(profile)); err != nil {
		return identity, domainerrors.RemoteWriteError(err, "write profile")
	}

	return identity, nil
}

// SignIn signs in an existing account.
func (srv *sessionService) SignIn(ctx context.Context, input *usecase.SignInInput) (*entity.Identity, error) {
	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(err.Error()), "invalid sign-in")
	}

	identity, err := srv.provider.SignInWithPassword(ctx, input.Email, input.Password)
	if err != nil {
		return nil, mapProviderError(err)
	}

	srv.logger.Info("Signed in", "identityID", identity.ID)

	return identity, nil
}

// SignOut clears the identity; the session stream then drives teardown and a new anonymous session.
func (srv *sessionService) SignOut(ctx context.Context) error {
	if err := srv.provider.SignOut(ctx); err != nil {
		return domainerrors.Wrap(domainerrors.ErrAuthFailed, err)
	}

	srv.logger.Info("Signed out")

	return nil
}

// Authenticate verifies token with the provider and matches it against the active identity.
// A token of an earlier identity of this session is rejected.
func (srv *sessionService) Authenticate(ctx context.Context, token string) (*entity.Identity, error) {
	if token == "" {
		return nil, errors.WithStack(domainerrors.ErrUnauthenticated.WithDetails("missing id token"))
	}

	uid, err := srv.provider.VerifyIDToken(ctx, token)
	if err != nil {
		return nil, domainerrors.Wrap(domainerrors.ErrUnauthenticated.WithDetails("invalid or expired id token"), err)
	}

	identity := srv.identity.Get()
	if identity == nil || identity.ID != uid {
		return nil, errors.WithStack(domainerrors.ErrUnauthenticated.WithDetails("id token is not for the active identity"))
	}

	return identity, nil
}

// mapProviderError translates identity provider failures into AppErrors.
func mapProviderError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidCredential):
		return domainerrors.Wrap(domainerrors.ErrInvalidCredentials, err)
	case errors.Is(err, service.ErrEmailInUse):
		return domainerrors.Wrap(domainerrors.ErrEmailInUse, err)
	case errors.Is(err, service.ErrWeakPassword):
		return domainerrors.Wrap(domainerrors.ErrWeakPassword, err)
	default:
		return domainerrors.Wrap(domainerrors.ErrAuthFailed, err)
	}
}
