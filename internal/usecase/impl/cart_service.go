package impl

import (
	"context"
	"log/slog"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/reactive"
	"luxe/internal/usecase"

	"github.com/pkg/errors"
)

// cartService implements the CartUsecase interface.
type cartService struct {
	ctx    context.Context
	store  repository.DocumentStore
	layout repository.Layout
	lines  *reactive.Value[entity.Cart]
	stream *userStream
	logger *slog.Logger
}

// NewCartService is the constructor for cartService.
func NewCartService(
	ctx context.Context,
	store repository.DocumentStore,
	layout repository.Layout,
	logger *slog.Logger,
) usecase.CartUsecase {
	srv := &cartService{
		ctx:    ctx,
		store:  store,
		layout: layout,
		lines:  reactive.NewValue[entity.Cart](nil),
		logger: logger,
	}
	srv.stream = newUserStream("cart", srv.subscribe, func() { srv.lines.Publish(nil) }, logger)

	return srv
}

func (srv *cartService) Bind(identity *entity.Identity) {
	srv.stream.bind(identity)
}

func (srv *cartService) Stop() {
	srv.stream.stop()
}

func (srv *cartService) Owner() *entity.Identity {
	return srv.stream.current()
}

func (srv *cartService) Lines() entity.Cart {
	return srv.lines.Get()
}

func (srv *cartService) Total() float64 {
	return srv.lines.Get().Total()
}

func (srv *cartService) Count() int64 {
	return srv.lines.Get().Count()
}

func (srv *cartService) Watch(fn func(entity.Cart)) func() {
	return srv.lines.Observe(fn)
}

func (srv *cartService) subscribe(identity *entity.Identity) (repository.Subscription, error) {
	return srv.store.SubscribeCollection(srv.ctx, srv.layout.Cart(identity.ID), func(snapshot *repository.CollectionSnapshot, err error) {
		if err != nil {
			srv.logger.Warn("Cart subscription failed", "identityID", identity.ID, "error", err)

			return
		}

		cart := make(entity.Cart, 0, len(snapshot.Documents))
		for _, doc := range snapshot.Documents {
			line, err := decodeCartLine(doc)
			if err != nil {
				srv.logger.Warn("Skipping undecodable cart line", "lineID", doc.ID, "error", err)

				continue
			}
			cart = append(cart, line)
		}

		srv.lines.Publish(cart)
	})
}

// Add increments the line already holding product in the last observed cart,
// or creates one with quantity 1.
func (srv *cartService) Add(ctx context.Context, product entity.Product) (*usecase.AddResult, error) {
	identity := srv.stream.current()
	if identity == nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "add to cart")
	}

	if line, ok := srv.lines.Get().FindByProduct(product.ID); ok {
		path := srv.layout.CartLine(identity.ID, line.ID)
		if err := srv.store.Update(ctx, path, repository.Fields{"quantity": repository.Increment{Delta: 1}}); err != nil {
			return nil, domainerrors.RemoteWriteError(err, "increment cart line")
		}

		srv.logger.Debug("Cart line incremented", "identityID", identity.ID, "lineID", line.ID)

		return &usecase.AddResult{LineID: line.ID, OpenCart: true}, nil
	}

	lineID, err := srv.store.Create(ctx, srv.layout.Cart(identity.ID), cartLineFields(entity.NewCartLine(product)))
	if err != nil {
		return nil, domainerrors.RemoteWriteError(err, "add cart line")
	}

	srv.logger.Debug("Cart line created", "identityID", identity.ID, "lineID", lineID, "productID", product.ID)

	return &usecase.AddResult{LineID: lineID, Created: true, OpenCart: true}, nil
}

// ChangeQuantity adds delta to a line, removing it when the result would not be positive.
// A line missing from the last observed cart is ignored.
func (srv *cartService) ChangeQuantity(ctx context.Context, lineID string, delta int64) error {
	identity := srv.stream.current()
	if identity == nil {
		return nil
	}

	line, ok := srv.lines.Get().FindByID(lineID)
	if !ok {
		srv.logger.Debug("Ignoring quantity change of unknown line", "lineID", lineID)

		return nil
	}

	if line.Quantity+delta <= 0 {
		return srv.Remove(ctx, lineID)
	}

	path := srv.layout.CartLine(identity.ID, lineID)
	if err := srv.store.Update(ctx, path, repository.Fields{"quantity": repository.Increment{Delta: delta}}); err != nil {
		return domainerrors.RemoteWriteError(err, "change cart quantity")
	}

	return nil
}

// Remove deletes a line. Removing an absent line succeeds.
func (srv *cartService) Remove(ctx context.Context, lineID string) error {
	identity := srv.stream.current()
	if identity == nil {
		return errors.Wrap(domainerrors.ErrUnauthenticated, "remove from cart")
	}

	if err := srv.store.Delete(ctx, srv.layout.CartLine(identity.ID, lineID)); err != nil {
		return domainerrors.RemoteWriteError(err, "remove cart line")
	}

	srv.logger.Debug("Cart line removed", "identityID", identity.ID, "lineID", lineID)

	return nil
}
