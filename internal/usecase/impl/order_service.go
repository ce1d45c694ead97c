package impl

import (
	"context"
	"log/slog"
	"slices"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/reactive"
	"luxe/internal/usecase"

	"github.com/pkg/errors"
)

// orderService implements the OrderUsecase interface.
type orderService struct {
	ctx    context.Context
	store  repository.DocumentStore
	layout repository.Layout
	orders *reactive.Value[[]entity.Order]
	stream *userStream
	logger *slog.Logger
}

// NewOrderService is the constructor for orderService.
func NewOrderService(
	ctx context.Context,
	store repository.DocumentStore,
	layout repository.Layout,
	logger *slog.Logger,
) usecase.OrderUsecase {
	srv := &orderService{
		ctx:    ctx,
		store:  store,
		layout: layout,
		orders: reactive.NewValue[[]entity.Order](nil),
		logger: logger,
	}
	srv.stream = newUserStream("orders", srv.subscribe, func() { srv.orders.Publish(nil) }, logger)

	return srv
}

func (srv *orderService) Bind(identity *entity.Identity) {
	srv.stream.bind(identity)
}

func (srv *orderService) Stop() {
	srv.stream.stop()
}

func (srv *orderService) Orders() []entity.Order {
	return srv.orders.Get()
}

func (srv *orderService) Watch(fn func([]entity.Order)) func() {
	return srv.orders.Observe(fn)
}

func (srv *orderService) Find(orderID string) (entity.Order, error) {
	for _, order := range srv.orders.Get() {
		if order.ID == orderID {
			return order, nil
		}
	}

	return entity.Order{}, errors.Wrapf(domainerrors.ErrNotFound, "order %s", orderID)
}

func (srv *orderService) subscribe(identity *entity.Identity) (repository.Subscription, error) {
	return srv.store.SubscribeCollection(srv.ctx, srv.layout.Orders(identity.ID), func(snapshot *repository.CollectionSnapshot, err error) {
		if err != nil {
			srv.logger.Warn("Order subscription failed", "identityID", identity.ID, "error", err)

			return
		}

		orders := make([]entity.Order, 0, len(snapshot.Documents))
		for _, doc := range snapshot.Documents {
			order, err := decodeOrder(doc)
			if err != nil {
				srv.logger.Warn("Skipping undecodable order", "orderID", doc.ID, "error", err)

				continue
			}
			orders = append(orders, order)
		}

		sortNewestFirst(orders)
		srv.orders.Publish(orders)
	})
}

// sortNewestFirst orders by creation time, descending. Ties keep store order.
func sortNewestFirst(orders []entity.Order) {
	slices.SortStableFunc(orders, func(a, b entity.Order) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
