package handler

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"luxe/config"
	deliverycontext "luxe/internal/delivery/context"
	"luxe/internal/domain/entity"
	"luxe/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// Event names of the /events stream.
const (
	EventSession = "session"
	EventProfile = "profile"
	EventCatalog = "catalog"
	EventCart    = "cart"
	EventOrders  = "orders"
)

// EventsHandler streams every snapshot change of the storefront as server-sent events.
type EventsHandler struct {
	session   usecase.SessionUsecase
	profile   usecase.ProfileUsecase
	catalog   usecase.CatalogUsecase
	cart      usecase.CartUsecase
	orders    usecase.OrderUsecase
	heartbeat time.Duration
	logger    *slog.Logger

	closing   chan struct{}
	closeOnce sync.Once
}

// NewEventsHandler is the constructor for EventsHandler, injected by Fx.
func NewEventsHandler(
	session usecase.SessionUsecase,
	profile usecase.ProfileUsecase,
	catalog usecase.CatalogUsecase,
	cart usecase.CartUsecase,
	orders usecase.OrderUsecase,
	cfg *config.Config,
	logger *slog.Logger,
) *EventsHandler {
	return &EventsHandler{
		session:   session,
		profile:   profile,
		catalog:   catalog,
		cart:      cart,
		orders:    orders,
		heartbeat: cfg.HTTP.EventsHeartbeat,
		logger:    logger,
		closing:   make(chan struct{}),
	}
}

// Close ends every open stream. It runs when the server shuts down.
func (h *EventsHandler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}

// Stream sends the current snapshot of every stream, then one event per change.
// Changes arriving faster than the client reads are coalesced to the latest snapshot.
func (h *EventsHandler) Stream(c echo.Context) error {
	ctx := c.Request().Context()
	logger := deliverycontext.LoggerFrom(ctx, h.logger)
	pending := newSnapshotBuffer()

	// Observe first so nothing published before the initial snapshots is lost.
	cancels := []func(){
		h.session.Watch(func(view usecase.SessionView) { pending.put(EventSession, newSessionView(view)) }),
		h.profile.Watch(func(profile *entity.Profile) { pending.put(EventProfile, profile) }),
		h.catalog.Watch(func(products []entity.Product) { pending.put(EventCatalog, newProductViews(products)) }),
		h.cart.Watch(func(cart entity.Cart) { pending.put(EventCart, newCartView(cart)) }),
		h.orders.Watch(func(orders []entity.Order) { pending.put(EventOrders, newOrderViews(orders)) }),
	}
	defer func() {
		for _, cancel := range cancels {
			cancel()
		}
	}()

	pending.seed(EventSession, newSessionView(h.session.Current()))
	pending.seed(EventProfile, h.profile.Profile())
	pending.seed(EventCatalog, newProductViews(h.catalog.Products()))
	pending.seed(EventCart, newCartView(h.cart.Lines()))
	pending.seed(EventOrders, newOrderViews(h.orders.Orders()))

	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	logger.Debug("Event stream opened")
	defer logger.Debug("Event stream closed")

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-h.closing:
			return nil
		case <-pending.ready:
			for _, event := range pending.drain() {
				if err := writeEvent(res, event); err != nil {
					logger.Debug("Event stream write failed", slog.Any("error", err))

					return nil
				}
			}
			res.Flush()
		case <-ticker.C:
			if _, err := io.WriteString(res, ": ping\n\n"); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}

type snapshotEvent struct {
	name string
	data any
}

func writeEvent(w io.Writer, event snapshotEvent) error {
	payload, err := json.Marshal(event.data)
	if err != nil {
		return errors.Wrapf(err, "encode %s event", event.name)
	}

	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.name, payload)

	return errors.WithStack(err)
}

// snapshotBuffer keeps the latest undelivered snapshot per event name.
type snapshotBuffer struct {
	mu      sync.Mutex
	order   []string
	pending map[string]any
	ready   chan struct{}
}

func newSnapshotBuffer() *snapshotBuffer {
	return &snapshotBuffer{
		pending: make(map[string]any),
		ready:   make(chan struct{}, 1),
	}
}

// put replaces any undelivered snapshot of name.
func (b *snapshotBuffer) put(name string, data any) {
	b.store(name, data, true)
}

// seed queues data only if no newer snapshot of name is already waiting.
func (b *snapshotBuffer) seed(name string, data any) {
	b.store(name, data, false)
}

func (b *snapshotBuffer) store(name string, data any, replace bool) {
	b.mu.Lock()
	if _, ok := b.pending[name]; ok {
		if !replace {
			b.mu.Unlock()

			return
		}
	} else {
		b.order = append(b.order, name)
	}
	b.pending[name] = data
	b.mu.Unlock()

	select {
	case b.ready <- struct{}{}:
	default:
	}
}

func (b *snapshotBuffer) drain() []snapshotEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	events := make([]snapshotEvent, 0, len(b.order))
	for _, name := range b.order {
		events = append(events, snapshotEvent{name: name, data: b.pending[name]})
	}
	b.order = b.order[:0]
	clear(b.pending)

	return events
}
