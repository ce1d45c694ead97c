package impl

import (
	"context"
	"testing"
	"time"

	"luxe/internal/domain/entity"
	"luxe/internal/domain/repository"
	"luxe/internal/infra/auth/memory"
	"luxe/internal/infra/persistence/memstore"
	"luxe/internal/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storefrontEnv struct {
	store      *memstore.Store
	provider   *memory.Provider
	session    usecase.SessionUsecase
	profile    usecase.ProfileUsecase
	catalog    usecase.CatalogUsecase
	cart       usecase.CartUsecase
	orders     usecase.OrderUsecase
	storefront *Storefront
}

func newStorefrontEnv(t *testing.T) *storefrontEnv {
	t.Helper()

	ctx := context.Background()
	env := &storefrontEnv{store: memstore.New(), provider: newTestProvider(t)}
	env.session = NewSessionService(env.provider, env.store, testLayout(), discardLogger())
	env.profile = NewProfileService(ctx, env.store, testLayout(), discardLogger())
	env.catalog = NewCatalogService(env.store, testLayout(), discardLogger())
	env.cart = NewCartService(ctx, env.store, testLayout(), discardLogger())
	env.orders = NewOrderService(ctx, env.store, testLayout(), discardLogger())
	env.storefront = NewStorefront(StorefrontParams{
		Session: env.session,
		Profile: env.profile,
		Catalog: env.catalog,
		Cart:    env.cart,
		Orders:  env.orders,
		Logger:  discardLogger(),
	})

	return env
}

func TestStorefront_IdentityDrivesSynchronizers(t *testing.T) {
	env := newStorefrontEnv(t)
	ctx := context.Background()
	product := seedProduct(t, env.store, "Leather Bag", 120, "Accessories")

	require.NoError(t, env.storefront.Start(ctx))
	t.Cleanup(env.storefront.Stop)

	require.Eventually(t, func() bool {
		return env.cart.Owner() != nil && len(env.catalog.Products()) == 1
	}, waitFor, pollEvery)
	guest := env.cart.Owner()
	assert.True(t, guest.Anonymous)
	assert.Nil(t, env.profile.Profile())

	_, err := env.cart.Add(ctx, product)
	require.NoError(t, err)
	require.Eventually(t, func() bool { return env.cart.Count() == 1 }, waitFor, pollEvery)

	member, err := env.session.Register(ctx, &usecase.RegisterInput{Name: "Ann", Email: "a@b.com", Password: testPassDef})
	require.NoError(t, err)

	// The registered identity has its own, empty cart and a Gold profile.
	require.Eventually(t, func() bool {
		owner := env.cart.Owner()
		profile := env.profile.Profile()

		return owner != nil && owner.ID == member.ID && profile != nil
	}, waitFor, pollEvery)
	assert.Empty(t, env.cart.Lines())
	assert.Equal(t, entity.MemberTierGold, env.profile.Profile().MemberTier)

	require.NoError(t, env.session.SignOut(ctx))
	require.Eventually(t, func() bool {
		owner := env.cart.Owner()

		return owner != nil && owner.Anonymous && owner.ID != guest.ID
	}, waitFor, pollEvery)
	assert.Nil(t, env.profile.Profile())
	assert.Empty(t, env.orders.Orders())
}

func TestStorefront_StopEndsEverySubscription(t *testing.T) {
	env := newStorefrontEnv(t)
	ctx := context.Background()

	require.NoError(t, env.storefront.Start(ctx))
	require.Eventually(t, func() bool { return env.cart.Owner() != nil }, waitFor, pollEvery)
	owner := env.cart.Owner()

	env.storefront.Stop()
	assert.Nil(t, env.cart.Owner())

	_, err := env.store.Create(ctx, testLayout().Cart(owner.ID), repository.Fields{"productId": "p1", "quantity": 1})
	require.NoError(t, err)
	seedProduct(t, env.store, "Desk Lamp", 45, "Home")
	time.Sleep(20 * time.Millisecond)

	assert.Empty(t, env.cart.Lines())
	assert.Empty(t, env.catalog.Products())
}
