package handler

import (
	"net/http"

	"luxe/internal/delivery/http/response"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CartHandler serves and mutates the cart of the active identity. Mutations
// answer 202: the new snapshot arrives through the cart subscription.
type CartHandler struct {
	cart    usecase.CartUsecase
	catalog usecase.CatalogUsecase
}

// NewCartHandler is the constructor for CartHandler, injected by Fx.
func NewCartHandler(cart usecase.CartUsecase, catalog usecase.CatalogUsecase) *CartHandler {
	return &CartHandler{
		cart:    cart,
		catalog: catalog,
	}
}

type addItemRequest struct {
	ProductID string `json:"productId" validate:"required"`
}

type changeQuantityRequest struct {
	Delta int64 `json:"delta" validate:"required"`
}

// GetCart returns the last observed cart with its totals.
func (h *CartHandler) GetCart(c echo.Context) error {
	return response.Success(c, http.StatusOK, newCartView(h.cart.Lines()))
}

// AddItem puts one unit of a catalog product into the cart.
func (h *CartHandler) AddItem(c echo.Context) error {
	var req addItemRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid cart input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	product, err := h.catalog.Find(req.ProductID)
	if err != nil {
		return errors.WithStack(err)
	}

	result, err := h.cart.Add(c.Request().Context(), product)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, result)
}

// ChangeQuantity adds delta to a line; a line reaching zero is removed.
func (h *CartHandler) ChangeQuantity(c echo.Context) error {
	var req changeQuantityRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid quantity input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	lineID := c.Param("id")
	if err := h.cart.ChangeQuantity(c.Request().Context(), lineID, req.Delta); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, map[string]string{"lineId": lineID})
}

// RemoveItem deletes a cart line.
func (h *CartHandler) RemoveItem(c echo.Context) error {
	lineID := c.Param("id")
	if err := h.cart.Remove(c.Request().Context(), lineID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusAccepted, map[string]string{"lineId": lineID})
}
