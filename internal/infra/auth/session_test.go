package auth

import (
	"sync"
	"testing"
	"time"

	"luxe/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_ListenersSeeChangesInOrder(t *testing.T) {
	session := NewSession()

	var mu sync.Mutex
	var seen []string
	sub := session.Listen(func(identity *entity.Identity) {
		mu.Lock()
		defer mu.Unlock()
		if identity == nil {
			seen = append(seen, "none")
		} else {
			seen = append(seen, identity.ID)
		}
	})
	defer sub.Stop()

	session.Set(&entity.Identity{ID: "guest", Anonymous: true})
	session.Set(&entity.Identity{ID: "u1"})
	session.Set(nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(seen) == 4
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"none", "guest", "u1", "none"}, seen)
	assert.Nil(t, session.Current())
}

func TestSession_StopDetachesListener(t *testing.T) {
	session := NewSession()

	calls := 0
	var mu sync.Mutex
	sub := session.Listen(func(*entity.Identity) {
		mu.Lock()
		defer mu.Unlock()
		calls++
	})
	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return calls == 1
	}, time.Second, 5*time.Millisecond)

	sub.Stop()
	sub.Stop()
	session.Set(&entity.Identity{ID: "u1"})

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, calls)
}
