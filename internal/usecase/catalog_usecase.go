package usecase

import (
	"context"

	"luxe/internal/domain/entity"
)

// CatalogUsecase mirrors the shared product collection. All filtering is local.
type CatalogUsecase interface {
	// Start opens the single catalog subscription.
	Start(ctx context.Context) error
	Stop()

	Products() []entity.Product
	Filter(query, category string) []entity.Product
	Categories() []string
	Find(productID string) (entity.Product, error)
	Watch(fn func([]entity.Product)) (cancel func())

	// ListProduct adds a product to the shared catalog and returns its ID.
	ListProduct(ctx context.Context, input *ListProductInput) (string, error)
}

// CatalogAdminUsecase runs the bulk catalog workflows.
type CatalogAdminUsecase interface {
	// Seed inserts the demo catalog.
	Seed(ctx context.Context) (*SeedResult, error)
	// Reset deletes every product and then seeds.
	Reset(ctx context.Context) (*SeedResult, error)
}

// --- Input DTOs ---

// ListProductInput defines the data required to list a product.
type ListProductInput struct {
	Name        string  `json:"name" validate:"required"`
	Price       float64 `json:"price" validate:"gt=0"`
	Category    string  `json:"category" validate:"required"`
	Image       string  `json:"image" validate:"omitempty,url"`
	Description string  `json:"description"`
}

// --- Output DTOs ---

// SeedResult reports what a bulk workflow wrote.
type SeedResult struct {
	Deleted    int      `json:"deleted"`
	Inserted   int      `json:"inserted"`
	ProductIDs []string `json:"productIds"`
}
