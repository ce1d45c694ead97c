package handler

import (
	"net/http"

	"luxe/internal/delivery/http/response"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProductHandler serves the catalog mirror.
type ProductHandler struct {
	catalog usecase.CatalogUsecase
}

// NewProductHandler is the constructor for ProductHandler, injected by Fx.
func NewProductHandler(catalog usecase.CatalogUsecase) *ProductHandler {
	return &ProductHandler{catalog: catalog}
}

// ListProducts filters the catalog by the q and category query parameters.
func (h *ProductHandler) ListProducts(c echo.Context) error {
	products := h.catalog.Filter(c.QueryParam("q"), c.QueryParam("category"))

	return response.Success(c, http.StatusOK, newProductViews(products))
}

// ListCategories returns "All" followed by every category in the catalog.
func (h *ProductHandler) ListCategories(c echo.Context) error {
	return response.Success(c, http.StatusOK, h.catalog.Categories())
}

// GetProduct returns one product of the catalog.
func (h *ProductHandler) GetProduct(c echo.Context) error {
	product, err := h.catalog.Find(c.Param("id"))
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, newProductView(product))
}

// CreateProduct lists a new product in the shared catalog.
func (h *ProductHandler) CreateProduct(c echo.Context) error {
	var input usecase.ListProductInput
	if err := c.Bind(&input); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid product input")
	}

	id, err := h.catalog.ListProduct(c.Request().Context(), &input)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, map[string]string{"id": id})
}
