package usecase

import (
	"context"

	"luxe/internal/domain/entity"
)

// OrderUsecase mirrors the order history of the active identity, newest first.
// Orders created at the same instant have no defined relative order.
type OrderUsecase interface {
	IdentityBinder
	Stop()

	Orders() []entity.Order
	Find(orderID string) (entity.Order, error)
	Watch(fn func([]entity.Order)) (cancel func())
}

// CheckoutUsecase turns the cart into an order.
type CheckoutUsecase interface {
	PlaceOrder(ctx context.Context, input *CheckoutInput) (*CheckoutResult, error)
	// Receipt renders the receipt QR code of an order of the active identity.
	Receipt(ctx context.Context, orderID string) ([]byte, error)
	// VerifyReceipt resolves a payload scanned from a receipt QR code to an order
	// of the active identity.
	VerifyReceipt(ctx context.Context, payload string) (entity.Order, error)
}

// ViewOrders is the view the caller should navigate to after checkout.
const ViewOrders = "orders"

// --- Input DTOs ---

// CheckoutInput carries the shipping and payment form. The fields are checked
// for presence only and never stored.
type CheckoutInput struct {
	FullName   string `json:"fullName" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	CardNumber string `json:"cardNumber" validate:"required"`
	CardExpiry string `json:"cardExpiry" validate:"required"`
	CardCVC    string `json:"cardCvc" validate:"required"`
}

// VerifyReceiptInput carries the text decoded from a receipt QR code.
type VerifyReceiptInput struct {
	Payload string `json:"payload" validate:"required"`
}

// --- Output DTOs ---

// CheckoutResult describes the order created by PlaceOrder.
type CheckoutResult struct {
	OrderID  string  `json:"orderId"`
	Total    float64 `json:"total"`
	NextView string  `json:"nextView"`
}
