package handler

import (
	"log/slog"
	"net/http"

	"luxe/internal/delivery/http/response"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// CatalogAdminHandler triggers the bulk catalog workflows.
type CatalogAdminHandler struct {
	admin  usecase.CatalogAdminUsecase
	logger *slog.Logger
}

// NewCatalogAdminHandler is the constructor for CatalogAdminHandler, injected by Fx.
func NewCatalogAdminHandler(admin usecase.CatalogAdminUsecase, logger *slog.Logger) *CatalogAdminHandler {
	return &CatalogAdminHandler{
		admin:  admin,
		logger: logger,
	}
}

// Seed inserts the demo catalog.
func (h *CatalogAdminHandler) Seed(c echo.Context) error {
	result, err := h.admin.Seed(c.Request().Context())
	if err != nil {
		h.logPartial("seed", result)

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result)
}

// Reset deletes every product and seeds the demo catalog again.
func (h *CatalogAdminHandler) Reset(c echo.Context) error {
	result, err := h.admin.Reset(c.Request().Context())
	if err != nil {
		h.logPartial("reset", result)

		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, result)
}

func (h *CatalogAdminHandler) logPartial(workflow string, result *usecase.SeedResult) {
	if result == nil {
		return
	}

	h.logger.Warn("Catalog workflow stopped partway",
		slog.String("workflow", workflow),
		slog.Int("deleted", result.Deleted),
		slog.Int("inserted", result.Inserted),
	)
}
