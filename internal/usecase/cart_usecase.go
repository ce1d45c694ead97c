package usecase

import (
	"context"

	"luxe/internal/domain/entity"
)

// CartUsecase mirrors the cart of the active identity and mutates it. Mutations
// are dispatched on the last observed snapshot, never on a fresh read.
type CartUsecase interface {
	IdentityBinder
	Stop()

	// Owner returns the identity the cart snapshot belongs to.
	Owner() *entity.Identity
	Lines() entity.Cart
	Total() float64
	Count() int64
	Watch(fn func(entity.Cart)) (cancel func())

	Add(ctx context.Context, product entity.Product) (*AddResult, error)
	ChangeQuantity(ctx context.Context, lineID string, delta int64) error
	Remove(ctx context.Context, lineID string) error
}

// --- Output DTOs ---

// AddResult tells what Add did.
type AddResult struct {
	LineID  string `json:"lineId,omitempty"` // Empty when a new line was created; the store assigns it.
	Created bool   `json:"created"`
	// OpenCart asks the view layer to show the cart.
	OpenCart bool `json:"openCart"`
}
