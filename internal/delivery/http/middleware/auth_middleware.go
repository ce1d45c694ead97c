package middleware

import (
	"strings"

	deliverycontext "luxe/internal/delivery/context"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// IdentityIDKey is the echo context key holding the authenticated identity ID.
const IdentityIDKey = "identityID"

// AuthMiddleware requires the bearer ID token of the active storefront identity.
type AuthMiddleware struct {
	session usecase.SessionUsecase
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(session usecase.SessionUsecase) *AuthMiddleware {
	return &AuthMiddleware{session: session}
}

// Authenticate rejects requests without a valid ID token for the current identity.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
		if authHeader == "" {
			return errors.WithStack(domainerrors.ErrUnauthenticated.WithDetails("authorization header is missing"))
		}

		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found {
			return errors.WithStack(domainerrors.ErrUnauthenticated.WithDetails("invalid token format, must be Bearer token"))
		}

		identity, err := m.session.Authenticate(c.Request().Context(), strings.TrimSpace(token))
		if err != nil {
			return err
		}

		c.Set(IdentityIDKey, identity.ID)
		if scope := deliverycontext.Scope(c); scope != nil {
			scope.BindIdentity(identity.ID)
		}

		return next(c)
	}
}
