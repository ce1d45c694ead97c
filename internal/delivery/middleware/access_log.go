package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"luxe/config"
	deliverycontext "luxe/internal/delivery/context"
	domainerrors "luxe/internal/domain/errors"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// AccessLogMiddleware writes one line per storefront request. Successful requests
// are only logged in debug mode; client and server failures always are.
type AccessLogMiddleware struct {
	logger *slog.Logger
	debug  bool
}

// NewAccessLogMiddleware creates the middleware.
func NewAccessLogMiddleware(logger *slog.Logger, cfg *config.Config) *AccessLogMiddleware {
	return &AccessLogMiddleware{
		logger: logger,
		debug:  cfg.Env.Debug,
	}
}

// Handle logs after the handler has run. The error is logged but still returned
// so the HTTP error handler renders it.
func (m *AccessLogMiddleware) Handle(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		status := c.Response().Status
		if err != nil {
			status = statusOf(err)
		}

		level := accessLevel(status)
		if level == slog.LevelDebug && !m.debug {
			return err
		}

		logger := deliverycontext.LoggerFrom(c.Request().Context(), m.logger)
		attrs := []slog.Attr{
			slog.String("method", c.Request().Method),
			// The route pattern keeps product and order IDs out of the message.
			slog.String("route", c.Path()),
			slog.Int("status", status),
			slog.Duration("latency", time.Since(start)),
			slog.Int64("bytes_out", c.Response().Size),
		}
		if err != nil {
			attrs = append(attrs, slog.Any("error", err))
		}

		logger.LogAttrs(c.Request().Context(), level, "Storefront request", attrs...)

		return err
	}
}

func accessLevel(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelDebug
	}
}

// statusOf is the status the HTTP error handler will write for err, which runs
// only after every middleware has returned.
func statusOf(err error) int {
	var appErr domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPCode()
	}
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Code
	}

	return http.StatusInternalServerError
}
