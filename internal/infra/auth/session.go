package auth

import (
	"sync"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/reactive"
)

// Session holds the signed-in identity of an identity provider and fans every
// change out to the registered session listeners, each on its own queue.
type Session struct {
	mu        sync.Mutex
	current   *entity.Identity
	listeners map[*sessionListener]struct{}
}

// NewSession creates a Session with no identity.
func NewSession() *Session {
	return &Session{listeners: make(map[*sessionListener]struct{})}
}

// Listen registers fn and delivers the current identity to it right away.
func (s *Session) Listen(fn service.SessionListener) repository.Subscription {
	l := &sessionListener{session: s, fn: fn, queue: reactive.NewQueue()}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.listeners[l] = struct{}{}
	l.deliver(s.current)

	return l
}

// Set replaces the current identity; nil signs out.
func (s *Session) Set(identity *entity.Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = identity
	for l := range s.listeners {
		l.deliver(identity)
	}
}

// Current returns the signed-in identity, or nil.
func (s *Session) Current() *entity.Identity {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.current
}

func (s *Session) remove(l *sessionListener) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.listeners, l)
}

type sessionListener struct {
	session *Session
	fn      service.SessionListener
	queue   *reactive.Queue
	once    sync.Once
}

func (l *sessionListener) deliver(identity *entity.Identity) {
	l.queue.Submit(func() { l.fn(identity) })
}

// Stop implements repository.Subscription.
func (l *sessionListener) Stop() {
	l.once.Do(func() {
		l.session.remove(l)
		l.queue.Stop()
	})
}
