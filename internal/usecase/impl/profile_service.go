package impl

import (
	"context"
	"log/slog"
	"sync"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/reactive"
	"luxe/internal/usecase"
)

// profileService implements the ProfileUsecase interface.
type profileService struct {
	ctx     context.Context
	store   repository.DocumentStore
	layout  repository.Layout
	profile *reactive.Value[*entity.Profile]
	stream  *userStream
	logger  *slog.Logger

	// defaultWritten guards the one default-profile write per binding.
	mu             sync.Mutex
	defaultWritten bool
}

// NewProfileService is the constructor for profileService.
func NewProfileService(
	ctx context.Context,
	store repository.DocumentStore,
	layout repository.Layout,
	logger *slog.Logger,
) usecase.ProfileUsecase {
	srv := &profileService{
		ctx:     ctx,
		store:   store,
		layout:  layout,
		profile: reactive.NewValue[*entity.Profile](nil),
		logger:  logger,
	}
	srv.stream = newUserStream("profile", srv.subscribe, srv.reset, logger)

	return srv
}

func (srv *profileService) Bind(identity *entity.Identity) {
	srv.stream.bind(identity)
}

func (srv *profileService) Stop() {
	srv.stream.stop()
}

func (srv *profileService) Profile() *entity.Profile {
	return srv.profile.Get()
}

func (srv *profileService) Watch(fn func(*entity.Profile)) func() {
	return srv.profile.Observe(fn)
}

func (srv *profileService) reset() {
	srv.mu.Lock()
	srv.defaultWritten = false
	srv.mu.Unlock()

	srv.profile.Publish(nil)
}

func (srv *profileService) subscribe(identity *entity.Identity) (repository.Subscription, error) {
	path := srv.layout.Profile(identity.ID)

	return srv.store.SubscribeDocument(srv.ctx, path, func(snapshot *repository.DocumentSnapshot, err error) {
		if err != nil {
			// Keep the last profile rather than flashing an empty card.
			srv.logger.Warn("Profile subscription failed", "identityID", identity.ID, "error", err)

			return
		}

		if snapshot.Exists {
			profile, err := decodeProfile(snapshot.Document)
			if err != nil {
				srv.logger.Warn("Skipping undecodable profile", "identityID", identity.ID, "error", err)

				return
			}
			srv.profile.Publish(profile)

			return
		}

		srv.profile.Publish(nil)

		if identity.IsRegistered() {
			srv.writeDefault(identity, path)
		}
	})
}

// writeDefault writes the default profile at most once per binding. Another
// session writing concurrently is not detected; the last write wins.
func (srv *profileService) writeDefault(identity *entity.Identity, path string) {
	srv.mu.Lock()
	if srv.defaultWritten {
		srv.mu.Unlock()

		return
	}
	srv.defaultWritten = true
	srv.mu.Unlock()

	profile := entity.DefaultProfileFor(identity)
	if err := srv.store.Set(srv.ctx, path, profileFields(profile)); err != nil {
		srv.logger.Error("Failed to write default profile", "identityID", identity.ID, "error", err)

		srv.mu.Lock()
		srv.defaultWritten = false
		srv.mu.Unlock()

		return
	}

	srv.logger.Info("Default profile created", "identityID", identity.ID, "memberTier", profile.MemberTier)
}
