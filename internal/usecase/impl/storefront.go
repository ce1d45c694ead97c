package impl

import (
	"context"
	"log/slog"
	"sync"

	"luxe/internal/domain/entity"
	"luxe/internal/usecase"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// StorefrontParams holds the synchronizers a Storefront composes.
type StorefrontParams struct {
	fx.In

	Session usecase.SessionUsecase
	Profile usecase.ProfileUsecase
	Catalog usecase.CatalogUsecase
	Cart    usecase.CartUsecase
	Orders  usecase.OrderUsecase
	Logger  *slog.Logger
}

// Storefront owns the lifetime of one storefront session: it feeds the session's
// identity into every per-identity synchronizer and tears all of them down on Stop.
type Storefront struct {
	session usecase.SessionUsecase
	profile usecase.ProfileUsecase
	catalog usecase.CatalogUsecase
	cart    usecase.CartUsecase
	orders  usecase.OrderUsecase
	logger  *slog.Logger

	mu      sync.Mutex
	unwatch func()
}

// NewStorefront is the constructor for Storefront.
func NewStorefront(params StorefrontParams) *Storefront {
	return &Storefront{
		session: params.Session,
		profile: params.Profile,
		catalog: params.Catalog,
		cart:    params.Cart,
		orders:  params.Orders,
		logger:  params.Logger,
	}
}

// Start opens the catalog subscription, then starts the session. Per-identity
// synchronizers are bound before the first identity can arrive.
func (s *Storefront) Start(ctx context.Context) error {
	if err := s.catalog.Start(ctx); err != nil {
		return errors.Wrap(err, "failed to start catalog")
	}

	s.mu.Lock()
	s.unwatch = s.session.WatchIdentity(s.bind)
	s.mu.Unlock()

	if err := s.session.Start(ctx); err != nil {
		s.Stop()

		return errors.Wrap(err, "failed to start session")
	}

	s.logger.Info("Storefront started")

	return nil
}

// Stop ends every subscription. No snapshot is published after Stop returns.
func (s *Storefront) Stop() {
	s.session.Stop()

	s.mu.Lock()
	unwatch := s.unwatch
	s.unwatch = nil
	s.mu.Unlock()
	if unwatch != nil {
		unwatch()
	}

	s.profile.Stop()
	s.cart.Stop()
	s.orders.Stop()
	s.catalog.Stop()

	s.logger.Info("Storefront stopped")
}

func (s *Storefront) bind(identity *entity.Identity) {
	s.profile.Bind(identity)
	s.cart.Bind(identity)
	s.orders.Bind(identity)
}
