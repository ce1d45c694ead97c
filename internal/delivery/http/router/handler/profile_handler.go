package handler

import (
	"net/http"

	"luxe/internal/delivery/http/response"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// ProfileHandler serves the member card of the active identity.
type ProfileHandler struct {
	session usecase.SessionUsecase
	profile usecase.ProfileUsecase
}

// NewProfileHandler is the constructor for ProfileHandler, injected by Fx.
func NewProfileHandler(session usecase.SessionUsecase, profile usecase.ProfileUsecase) *ProfileHandler {
	return &ProfileHandler{
		session: session,
		profile: profile,
	}
}

// GetProfile returns the profile of a registered identity. Guests have none.
func (h *ProfileHandler) GetProfile(c echo.Context) error {
	identity := h.session.Identity()
	if identity == nil || identity.Anonymous {
		return errors.WithStack(domainerrors.ErrUnauthenticated)
	}

	profile := h.profile.Profile()
	if profile == nil {
		return errors.WithStack(domainerrors.ErrNotFound.WithDetails("profile"))
	}

	return response.Success(c, http.StatusOK, profile)
}
