package impl

import (
	"log/slog"
	"sync"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
)

// userStream owns the subscription of one per-identity collection or document.
// Binds are serialized; the previous subscription is stopped, and its snapshot
// reset, before the next identity is subscribed.
type userStream struct {
	bindMu sync.Mutex

	mu       sync.Mutex
	identity *entity.Identity
	sub      repository.Subscription

	name      string
	subscribe func(identity *entity.Identity) (repository.Subscription, error)
	reset     func()
	logger    *slog.Logger
}

func newUserStream(
	name string,
	subscribe func(identity *entity.Identity) (repository.Subscription, error),
	reset func(),
	logger *slog.Logger,
) *userStream {
	return &userStream{
		name:      name,
		subscribe: subscribe,
		reset:     reset,
		logger:    logger,
	}
}

// current returns the bound identity.
func (s *userStream) current() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.identity
}

func (s *userStream) bind(identity *entity.Identity) {
	s.bindMu.Lock()
	defer s.bindMu.Unlock()

	s.mu.Lock()
	if s.identity.SameAs(identity) {
		s.identity = identity
		s.mu.Unlock()

		return
	}
	previous := s.sub
	s.sub = nil
	s.mu.Unlock()

	if previous != nil {
		previous.Stop()
	}

	s.mu.Lock()
	s.identity = identity
	s.mu.Unlock()

	s.reset()

	if identity == nil {
		s.logger.Debug("Stream unbound", "stream", s.name)

		return
	}

	sub, err := s.subscribe(identity)
	if err != nil {
		s.logger.Error("Failed to subscribe", "stream", s.name, "identityID", identity.ID, "error", err)

		return
	}

	s.mu.Lock()
	s.sub = sub
	s.mu.Unlock()

	s.logger.Debug("Stream bound", "stream", s.name, "identityID", identity.ID)
}

func (s *userStream) stop() {
	s.bind(nil)
}
