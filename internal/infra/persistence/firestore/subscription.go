package firestore

import (
	"context"

	"luxe/internal/domain/repository"
)

// subscription owns the goroutine draining one snapshot iterator. The iterator
// is stopped by that goroutine, since Stop must not race with Next.
type subscription struct {
	cancel context.CancelFunc
	done   chan struct{}
}

var _ repository.Subscription = (*subscription)(nil)

func newSubscription(cancel context.CancelFunc) *subscription {
	return &subscription{cancel: cancel, done: make(chan struct{})}
}

// Stop implements repository.Subscription.
func (s *subscription) Stop() {
	s.cancel()
	<-s.done
}
