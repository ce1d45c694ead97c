package memstore

import (
	"sync"

	"luxe/internal/domain/repository"
	"luxe/internal/reactive"
)

// subscription delivers snapshots for one listener on its own queue, so a
// listener may write back to the store without deadlocking it.
type subscription struct {
	store *Store
	path  string
	queue *reactive.Queue

	onCollection repository.CollectionListener
	onDocument   repository.DocumentListener

	stopOnce sync.Once
}

var _ repository.Subscription = (*subscription)(nil)

// Stop implements repository.Subscription.
func (s *subscription) Stop() {
	s.stopOnce.Do(func() {
		s.store.unsubscribe(s)
		s.queue.Stop()
	})
}

func (s *subscription) deliverCollection(snapshot *repository.CollectionSnapshot) {
	s.queue.Submit(func() {
		s.onCollection(snapshot, nil)
	})
}

func (s *subscription) deliverDocument(snapshot *repository.DocumentSnapshot) {
	s.queue.Submit(func() {
		s.onDocument(snapshot, nil)
	})
}

// fail delivers err as the final event. The caller has already detached the
// subscription from the store.
func (s *subscription) fail(err error) {
	s.store.logger.Debug("memstore: subscription broken", "path", s.path, "error", err)

	s.queue.Submit(func() {
		if s.onCollection != nil {
			s.onCollection(nil, err)
		} else {
			s.onDocument(nil, err)
		}
	})
}
