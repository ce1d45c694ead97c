package handler

import (
	"net/http"

	"luxe/internal/delivery/http/response"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// OrderHandler runs checkout and serves the order history.
type OrderHandler struct {
	orders   usecase.OrderUsecase
	checkout usecase.CheckoutUsecase
}

// NewOrderHandler is the constructor for OrderHandler, injected by Fx.
func NewOrderHandler(orders usecase.OrderUsecase, checkout usecase.CheckoutUsecase) *OrderHandler {
	return &OrderHandler{
		orders:   orders,
		checkout: checkout,
	}
}

// Checkout places an order from the current cart.
func (h *OrderHandler) Checkout(c echo.Context) error {
	var input usecase.CheckoutInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid checkout input")
	}

	result, err := h.checkout.PlaceOrder(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, checkoutView{
		CheckoutResult: result,
		TotalDisplay:   formatMoney(result.Total),
	})
}

// ListOrders returns the order history, newest first.
func (h *OrderHandler) ListOrders(c echo.Context) error {
	return response.Success(c, http.StatusOK, newOrderViews(h.orders.Orders()))
}

// GetReceipt renders the receipt QR code of an order as PNG.
func (h *OrderHandler) GetReceipt(c echo.Context) error {
	png, err := h.checkout.Receipt(c.Request().Context(), c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return c.Blob(http.StatusOK, "image/png", png)
}

// VerifyReceipt resolves a scanned receipt payload to an order of the active identity.
func (h *OrderHandler) VerifyReceipt(c echo.Context) error {
	var input usecase.VerifyReceiptInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid receipt input")
	}
	if err := c.Validate(&input); err != nil {
		return errors.WithStack(err)
	}

	order, err := h.checkout.VerifyReceipt(c.Request().Context(), input.Payload)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, orderView{Order: order, TotalDisplay: formatMoney(order.Total)})
}
