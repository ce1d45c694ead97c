package service

import (
	"context"
	"time"
)

// OrderPlacedEvent is emitted after a checkout created its order.
type OrderPlacedEvent struct {
	RequestID  string    `json:"request_id,omitempty"` // For distributed tracing
	OrderID    string    `json:"order_id"`
	IdentityID string    `json:"identity_id"`
	Total      float64   `json:"total"`
	ItemCount  int64     `json:"item_count"`
	PlacedAt   time.Time `json:"placed_at"` // Client clock; the order's createdAt is server time.
}

// EventPublisher defines the interface for publishing storefront events to a message queue
type EventPublisher interface {
	// PublishOrderPlaced publishes an order event for downstream fulfilment
	PublishOrderPlaced(ctx context.Context, event *OrderPlacedEvent) error

	// Close releases any resources held by the publisher
	Close() error
}
