package middleware

import (
	"log/slog"

	deliverycontext "luxe/internal/delivery/context"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequestScopeMiddleware opens a RequestScope for every request. A client supplied
// X-Request-Id is kept so storefront and fulfilment logs can be joined.
type RequestScopeMiddleware struct {
	logger *slog.Logger
}

// NewRequestScopeMiddleware creates the middleware.
func NewRequestScopeMiddleware(logger *slog.Logger) *RequestScopeMiddleware {
	return &RequestScopeMiddleware{logger: logger}
}

// Process attaches the scope to the request context and echoes the request ID.
func (m *RequestScopeMiddleware) Process(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		requestID := c.Request().Header.Get(echo.HeaderXRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Response().Header().Set(echo.HeaderXRequestID, requestID)

		scope := deliverycontext.NewRequestScope(requestID, m.logger)
		c.SetRequest(c.Request().WithContext(deliverycontext.WithScope(c.Request().Context(), scope)))

		return next(c)
	}
}
