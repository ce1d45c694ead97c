package impl

import (
	"context"
	stderrors "errors"
	"log/slog"
	"time"

	deliverycontext "luxe/internal/delivery/context"
	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// checkoutService implements the CheckoutUsecase interface.
type checkoutService struct {
	cart      usecase.CartUsecase
	orders    usecase.OrderUsecase
	store     repository.DocumentStore
	layout    repository.Layout
	publisher service.EventPublisher
	receipts  service.ReceiptCodeService
	validate  *validator.Validate
	logger    *slog.Logger
}

// NewCheckoutService is the constructor for checkoutService.
func NewCheckoutService(
	cart usecase.CartUsecase,
	orders usecase.OrderUsecase,
	store repository.DocumentStore,
	layout repository.Layout,
	publisher service.EventPublisher,
	receipts service.ReceiptCodeService,
	logger *slog.Logger,
) usecase.CheckoutUsecase {
	return &checkoutService{
		cart:      cart,
		orders:    orders,
		store:     store,
		layout:    layout,
		publisher: publisher,
		receipts:  receipts,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *checkoutService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.LoggerFrom(ctx, srv.logger)
}

// PlaceOrder creates an order from the cart snapshot taken at call time and then
// clears the cart. The steps are not atomic and nothing is rolled back: a failed
// cart clear leaves the order in place.
func (srv *checkoutService) PlaceOrder(ctx context.Context, input *usecase.CheckoutInput) (*usecase.CheckoutResult, error) {
	identity := srv.cart.Owner()
	if identity == nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "checkout")
	}

	if err := srv.validate.Struct(input); err != nil {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(err.Error()), "invalid checkout form")
	}

	snapshot := srv.cart.Lines()
	if len(snapshot) == 0 {
		return nil, errors.Wrap(domainerrors.ErrCartEmpty, "checkout")
	}
	total := snapshot.Total()

	// 1. Create the order
	orderID, err := srv.store.Create(ctx, srv.layout.Orders(identity.ID), orderFields(snapshot, total))
	if err != nil {
		return nil, domainerrors.RemoteWriteError(err, "create order")
	}

	srv.log(ctx).Info("Order created", "identityID", identity.ID, "orderID", orderID, "total", total)

	// 2. Clear the cart
	if err := srv.clearCart(ctx, identity, snapshot); err != nil {
		return nil, domainerrors.RemoteWriteError(err, "clear cart")
	}

	// 3. Notify fulfilment
	event := &service.OrderPlacedEvent{
		RequestID:  deliverycontext.RequestIDFrom(ctx),
		OrderID:    orderID,
		IdentityID: identity.ID,
		Total:      total,
		ItemCount:  snapshot.Count(),
		PlacedAt:   time.Now().UTC(),
	}
	if err := srv.publisher.PublishOrderPlaced(ctx, event); err != nil {
		srv.log(ctx).Warn("Failed to publish order placed event", "orderID", orderID, "error", err)
	}

	return &usecase.CheckoutResult{
		OrderID:  orderID,
		Total:    total,
		NextView: usecase.ViewOrders,
	}, nil
}

// clearCart deletes every line of snapshot independently; one failure does not
// stop the others. All failures are joined.
func (srv *checkoutService) clearCart(ctx context.Context, identity *entity.Identity, snapshot entity.Cart) error {
	var group errgroup.Group
	errs := make([]error, len(snapshot))

	for i, line := range snapshot {
		group.Go(func() error {
			if err := srv.store.Delete(ctx, srv.layout.CartLine(identity.ID, line.ID)); err != nil {
				errs[i] = errors.Wrapf(err, "line %s", line.ID)

				return errs[i]
			}

			return nil
		})
	}

	// Wait reports only the first failure.
	if err := group.Wait(); err == nil {
		return nil
	}

	return stderrors.Join(errs...)
}

// Receipt renders the receipt QR code of an order in the local order history.
func (srv *checkoutService) Receipt(_ context.Context, orderID string) ([]byte, error) {
	identity := srv.cart.Owner()
	if identity == nil {
		return nil, errors.Wrap(domainerrors.ErrUnauthenticated, "receipt")
	}

	order, err := srv.orders.Find(orderID)
	if err != nil {
		return nil, err
	}

	png, err := srv.receipts.GenerateReceiptQR(service.ReceiptCode{IdentityID: identity.ID, OrderID: order.ID})
	if err != nil {
		return nil, errors.Wrap(domainerrors.ErrInternalError, err.Error())
	}

	return png, nil
}

// VerifyReceipt checks a scanned receipt against the order history of the active
// identity. Receipts of other identities are reported as not found.
func (srv *checkoutService) VerifyReceipt(ctx context.Context, payload string) (entity.Order, error) {
	identity := srv.cart.Owner()
	if identity == nil {
		return entity.Order{}, errors.Wrap(domainerrors.ErrUnauthenticated, "verify receipt")
	}

	code, err := srv.receipts.ParseReceiptQR(payload)
	if err != nil {
		return entity.Order{}, errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(err.Error()), "invalid receipt")
	}

	if code.IdentityID != identity.ID {
		srv.log(ctx).Warn("Receipt of another identity", "identityID", identity.ID, "orderID", code.OrderID)

		return entity.Order{}, errors.WithStack(domainerrors.ErrNotFound.WithDetails("order"))
	}

	return srv.orders.Find(code.OrderID)
}
