package service

import (
	"context"

	"luxe/internal/domain/entity"
)

// CatalogSource supplies the demo catalog written by the seeding workflow.
type CatalogSource interface {
	// Load returns the products to seed, in insertion order. IDs and creation times are unset.
	Load(ctx context.Context) ([]entity.Product, error)
}
