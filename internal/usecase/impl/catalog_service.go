package impl

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/reactive"
	"luxe/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// listedProductRating is the rating given to products listed through the form.
const listedProductRating = 5.0

// catalogService implements the CatalogUsecase interface.
type catalogService struct {
	mu  sync.Mutex
	sub repository.Subscription

	products *reactive.Value[[]entity.Product]

	store    repository.DocumentStore
	layout   repository.Layout
	validate *validator.Validate
	logger   *slog.Logger
}

// NewCatalogService is the constructor for catalogService.
func NewCatalogService(
	store repository.DocumentStore,
	layout repository.Layout,
	logger *slog.Logger,
) usecase.CatalogUsecase {
	return &catalogService{
		products: reactive.NewValue[[]entity.Product](nil),
		store:    store,
		layout:   layout,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// Start opens the catalog subscription for the lifetime of the storefront.
func (srv *catalogService) Start(ctx context.Context) error {
	srv.mu.Lock()
	defer srv.mu.Unlock()

	if srv.sub != nil {
		return errors.New("catalog already started")
	}

	sub, err := srv.store.SubscribeCollection(ctx, srv.layout.Products(), srv.onSnapshot)
	if err != nil {
		return errors.Wrap(err, "failed to subscribe to catalog")
	}
	srv.sub = sub

	return nil
}

func (srv *catalogService) Stop() {
	srv.mu.Lock()
	sub := srv.sub
	srv.sub = nil
	srv.mu.Unlock()

	if sub != nil {
		sub.Stop()
	}
}

func (srv *catalogService) onSnapshot(snapshot *repository.CollectionSnapshot, err error) {
	if err != nil {
		srv.logger.Warn("Catalog subscription failed", "error", err)

		return
	}

	products := make([]entity.Product, 0, len(snapshot.Documents))
	for _, doc := range snapshot.Documents {
		product, err := decodeProduct(doc)
		if err != nil {
			srv.logger.Warn("Skipping undecodable product", "productID", doc.ID, "error", err)

			continue
		}
		products = append(products, product)
	}

	srv.products.Publish(products)
	srv.logger.Debug("Catalog updated", "products", len(products), "changes", len(snapshot.Changes))
}

func (srv *catalogService) Products() []entity.Product {
	return srv.products.Get()
}

func (srv *catalogService) Watch(fn func([]entity.Product)) func() {
	return srv.products.Observe(fn)
}

// Filter matches products whose name contains query, ignoring case, within category.
// An empty query or the "All" category matches everything.
func (srv *catalogService) Filter(query, category string) []entity.Product {
	fold := cases.Fold()
	needle := fold.String(query)

	var matched []entity.Product
	for _, product := range srv.products.Get() {
		if category != "" && category != entity.CategoryAll && product.Category != category {
			continue
		}
		if needle != "" && !strings.Contains(fold.String(product.Name), needle) {
			continue
		}
		matched = append(matched, product)
	}

	return matched
}

// Categories returns "All" followed by every category in first-seen order.
func (srv *catalogService) Categories() []string {
	categories := []string{entity.CategoryAll}
	seen := make(map[string]struct{})
	for _, product := range srv.products.Get() {
		if _, ok := seen[product.Category]; ok || product.Category == "" {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}

	return categories
}

func (srv *catalogService) Find(productID string) (entity.Product, error) {
	for _, product := range srv.products.Get() {
		if product.ID == productID {
			return product, nil
		}
	}

	return entity.Product{}, errors.Wrapf(domainerrors.ErrNotFound, "product %s", productID)
}

// ListProduct writes a new product; it appears once the subscription observes it.
func (srv *catalogService) ListProduct(ctx context.Context, input *usecase.ListProductInput) (string, error) {
	if err := srv.validate.Struct(input); err != nil {
		return "", errors.Wrap(domainerrors.ErrValidationFailed.WithDetails(err.Error()), "invalid product")
	}

	product := entity.Product{
		Name:        strings.TrimSpace(input.Name),
		Price:       input.Price,
		Category:    strings.TrimSpace(input.Category),
		Image:       input.Image,
		Description: input.Description,
		Rating:      listedProductRating,
	}
	if product.Image == "" {
		product.Image = entity.DefaultProductImage
	}

	id, err := srv.store.Create(ctx, srv.layout.Products(), productFields(product))
	if err != nil {
		return "", domainerrors.RemoteWriteError(err, "list product")
	}

	srv.logger.Info("Product listed", "productID", id, "name", product.Name)

	return id, nil
}
