package memstore

import (
	"context"
	"sync"
	"testing"
	"time"

	"luxe/internal/domain/repository"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cartPath = "artifacts/app/users/u1/cart"

type collectionRecorder struct {
	mu        sync.Mutex
	snapshots []*repository.CollectionSnapshot
	err       error
}

func (r *collectionRecorder) listen(snapshot *repository.CollectionSnapshot, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err != nil {
		r.err = err

		return
	}
	r.snapshots = append(r.snapshots, snapshot)
}

func (r *collectionRecorder) last() *repository.CollectionSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.snapshots) == 0 {
		return nil
	}

	return r.snapshots[len(r.snapshots)-1]
}

func (r *collectionRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.snapshots)
}

func (r *collectionRecorder) failure() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.err
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestStore_CreateResolvesServerTimestampAndNumbers(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	store := New(WithClock(fixedClock(now)))
	ctx := context.Background()

	id, err := store.Create(ctx, cartPath, repository.Fields{
		"productId": "p1",
		"quantity":  1,
		"price":     float32(2.5),
		"createdAt": repository.ServerTimestamp,
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	docs, err := store.List(ctx, cartPath)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, id, docs[0].ID)
	assert.Equal(t, cartPath+"/"+id, docs[0].Path)
	assert.Equal(t, int64(1), docs[0].Fields["quantity"])
	assert.Equal(t, 2.5, docs[0].Fields["price"])
	assert.Equal(t, now, docs[0].Fields["createdAt"])
}

func TestStore_UpdateIncrement(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.Create(ctx, cartPath, repository.Fields{"quantity": 1})
	require.NoError(t, err)

	require.NoError(t, store.Update(ctx, cartPath+"/"+id, repository.Fields{"quantity": repository.Increment{Delta: 2}}))
	require.NoError(t, store.Update(ctx, cartPath+"/"+id, repository.Fields{"quantity": repository.Increment{Delta: -1}}))

	docs, err := store.List(ctx, cartPath)
	require.NoError(t, err)
	assert.Equal(t, int64(2), docs[0].Fields["quantity"])
}

func TestStore_UpdateMissingDocument(t *testing.T) {
	store := New()

	err := store.Update(context.Background(), cartPath+"/missing", repository.Fields{"quantity": 1})
	assert.ErrorIs(t, err, repository.ErrDocumentNotFound)
}

func TestStore_DeleteIsIdempotent(t *testing.T) {
	store := New()
	ctx := context.Background()

	id, err := store.Create(ctx, cartPath, repository.Fields{"quantity": 1})
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, cartPath+"/"+id))
	require.NoError(t, store.Delete(ctx, cartPath+"/"+id))

	docs, err := store.List(ctx, cartPath)
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestStore_ReturnedFieldsAreCopies(t *testing.T) {
	store := New()
	ctx := context.Background()

	items := []map[string]any{{"productId": "p1", "quantity": 1}}
	_, err := store.Create(ctx, "artifacts/app/users/u1/orders", repository.Fields{"items": items})
	require.NoError(t, err)

	items[0]["quantity"] = 9

	docs, err := store.List(ctx, "artifacts/app/users/u1/orders")
	require.NoError(t, err)
	stored := docs[0].Fields["items"].([]any)
	assert.Equal(t, int64(1), stored[0].(map[string]any)["quantity"])
}

func TestStore_InvalidPaths(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Create(ctx, "artifacts/app", repository.Fields{})
	assert.Error(t, err)
	assert.Error(t, store.Set(ctx, "artifacts", repository.Fields{}))
	assert.Error(t, store.Delete(ctx, "artifacts//x/y"))
}

func TestStore_SubscribeCollectionStreamsChanges(t *testing.T) {
	store := New()
	ctx := context.Background()

	_, err := store.Create(ctx, cartPath, repository.Fields{"productId": "p1"})
	require.NoError(t, err)

	rec := &collectionRecorder{}
	sub, err := store.SubscribeCollection(ctx, cartPath, rec.listen)
	require.NoError(t, err)
	defer sub.Stop()

	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)
	first := rec.last()
	assert.Len(t, first.Documents, 1)
	require.Len(t, first.Changes, 1)
	assert.Equal(t, repository.ChangeAdded, first.Changes[0].Kind)

	id, err := store.Create(ctx, cartPath, repository.Fields{"productId": "p2"})
	require.NoError(t, err)
	require.NoError(t, store.Delete(ctx, cartPath+"/"+id))

	require.Eventually(t, func() bool { return rec.count() == 3 }, time.Second, 5*time.Millisecond)
	last := rec.last()
	assert.Len(t, last.Documents, 1)
	assert.Equal(t, repository.ChangeRemoved, last.Changes[0].Kind)
	assert.Equal(t, id, last.Changes[0].Document.ID)
}

func TestStore_SubscribeDocument(t *testing.T) {
	store := New()
	ctx := context.Background()
	path := "artifacts/app/users/u1/account/profile"

	var mu sync.Mutex
	var snapshots []*repository.DocumentSnapshot
	sub, err := store.SubscribeDocument(ctx, path, func(snapshot *repository.DocumentSnapshot, err error) {
		mu.Lock()
		defer mu.Unlock()
		snapshots = append(snapshots, snapshot)
	})
	require.NoError(t, err)
	defer sub.Stop()

	require.NoError(t, store.Set(ctx, path, repository.Fields{"name": "Ada"}))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()

		return len(snapshots) == 2
	}, time.Second, 5*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	assert.False(t, snapshots[0].Exists)
	assert.True(t, snapshots[1].Exists)
	assert.Equal(t, "Ada", snapshots[1].Document.Fields["name"])
}

func TestStore_StopEndsDelivery(t *testing.T) {
	store := New()
	ctx := context.Background()

	rec := &collectionRecorder{}
	sub, err := store.SubscribeCollection(ctx, cartPath, rec.listen)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	sub.Stop()
	sub.Stop()

	_, err = store.Create(ctx, cartPath, repository.Fields{"productId": "p1"})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestStore_ContextCancelStopsSubscription(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())

	rec := &collectionRecorder{}
	_, err := store.SubscribeCollection(ctx, cartPath, rec.listen)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	require.Eventually(t, func() bool {
		store.mu.Lock()
		defer store.mu.Unlock()

		return len(store.collSubs[cartPath]) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestStore_ListenerMayWriteBack(t *testing.T) {
	store := New()
	ctx := context.Background()
	path := "artifacts/app/users/u1/account/profile"

	sub, err := store.SubscribeDocument(ctx, path, func(snapshot *repository.DocumentSnapshot, err error) {
		if err == nil && !snapshot.Exists {
			_ = store.Set(ctx, path, repository.Fields{"name": "Guest"})
		}
	})
	require.NoError(t, err)
	defer sub.Stop()

	require.Eventually(t, func() bool {
		docs, err := store.List(ctx, "artifacts/app/users/u1/account")

		return err == nil && len(docs) == 1
	}, time.Second, 5*time.Millisecond)
}

func TestStore_WriteHookRejectsWrites(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("unavailable")

	store.SetWriteHook(func(op Operation, path string) error {
		if op == OpDelete {
			return boom
		}

		return nil
	})

	id, err := store.Create(ctx, cartPath, repository.Fields{"quantity": 1})
	require.NoError(t, err)

	err = store.Delete(ctx, cartPath+"/"+id)
	assert.ErrorIs(t, err, boom)

	store.SetWriteHook(nil)
	assert.NoError(t, store.Delete(ctx, cartPath+"/"+id))
}

func TestStore_BreakSubscriptions(t *testing.T) {
	store := New()
	ctx := context.Background()
	boom := errors.New("permission denied")

	rec := &collectionRecorder{}
	sub, err := store.SubscribeCollection(ctx, cartPath, rec.listen)
	require.NoError(t, err)
	defer sub.Stop()
	require.Eventually(t, func() bool { return rec.count() == 1 }, time.Second, 5*time.Millisecond)

	store.BreakSubscriptions(cartPath, boom)
	require.Eventually(t, func() bool { return rec.failure() != nil }, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, rec.failure(), boom)

	_, err = store.Create(ctx, cartPath, repository.Fields{"quantity": 1})
	require.NoError(t, err)
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 1, rec.count())
}

func TestStore_CanceledContextRejectsWrites(t *testing.T) {
	store := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Create(ctx, cartPath, repository.Fields{})
	assert.ErrorIs(t, err, context.Canceled)
}
