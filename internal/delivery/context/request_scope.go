// Package context carries per-request storefront state from the HTTP layer
// into use cases.
package context

import (
	"context"
	"log/slog"

	"github.com/labstack/echo/v4"
)

type scopeKey struct{}

// RequestScope is created once per request. IdentityID stays empty until the
// bearer token has been checked.
type RequestScope struct {
	RequestID  string
	IdentityID string
	Logger     *slog.Logger
}

// NewRequestScope starts a scope whose logger is tagged with the request ID.
func NewRequestScope(requestID string, logger *slog.Logger) *RequestScope {
	return &RequestScope{
		RequestID: requestID,
		Logger:    logger.With(slog.String("request_id", requestID)),
	}
}

// BindIdentity records the authenticated identity and tags later log lines with it.
func (s *RequestScope) BindIdentity(identityID string) {
	s.IdentityID = identityID
	s.Logger = s.Logger.With(slog.String("identity_id", identityID))
}

// WithScope attaches the scope to ctx.
func WithScope(ctx context.Context, scope *RequestScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope attached to ctx, or nil outside a request.
func ScopeFrom(ctx context.Context) *RequestScope {
	scope, _ := ctx.Value(scopeKey{}).(*RequestScope)

	return scope
}

// Scope returns the scope of an echo request, or nil when the request
// bypassed the scope middleware.
func Scope(c echo.Context) *RequestScope {
	return ScopeFrom(c.Request().Context())
}

// RequestID is the request ID echoed in response metadata.
func RequestID(c echo.Context) string {
	if scope := Scope(c); scope != nil {
		return scope.RequestID
	}

	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// RequestIDFrom returns the request ID in ctx, or "" for background work.
func RequestIDFrom(ctx context.Context) string {
	if scope := ScopeFrom(ctx); scope != nil {
		return scope.RequestID
	}

	return ""
}

// LoggerFrom returns the request logger in ctx, or fallback for background work.
func LoggerFrom(ctx context.Context, fallback *slog.Logger) *slog.Logger {
	if scope := ScopeFrom(ctx); scope != nil && scope.Logger != nil {
		return scope.Logger
	}

	return fallback
}
