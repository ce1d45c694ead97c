package entity

import "time"

// OrderStatus is the fulfilment state of an order.
type OrderStatus string

const (
	// OrderStatusProcessing is the only status the storefront ever writes.
	OrderStatusProcessing OrderStatus = "Processing"
	// OrderStatusShipped is set by fulfilment, outside the storefront.
	OrderStatusShipped OrderStatus = "Shipped"
	// OrderStatusDelivered is set by fulfilment, outside the storefront.
	OrderStatusDelivered OrderStatus = "Delivered"
)

// String returns the string representation of the OrderStatus.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid checks if the OrderStatus is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered:
		return true
	default:
		return false
	}
}

// Order is an immutable record of a checkout.
type Order struct {
	ID        string      `firestore:"-" json:"id"`
	Items     []CartLine  `firestore:"items" json:"items"` // Verbatim cart snapshot at checkout.
	Total     float64     `firestore:"total" json:"total"`
	Status    OrderStatus `firestore:"status" json:"status"`
	CreatedAt time.Time   `firestore:"createdAt" json:"createdAt"` // Server time; zero until the store resolves it.
}
