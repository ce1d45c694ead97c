package impl

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"luxe/config"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/usecase"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

// catalogAdminService implements the CatalogAdminUsecase interface.
type catalogAdminService struct {
	store       repository.DocumentStore
	layout      repository.Layout
	source      service.CatalogSource
	concurrency int
	validate    *validator.Validate
	logger      *slog.Logger
}

// NewCatalogAdminService is the constructor for catalogAdminService.
func NewCatalogAdminService(
	store repository.DocumentStore,
	layout repository.Layout,
	source service.CatalogSource,
	cfg *config.Config,
	logger *slog.Logger,
) usecase.CatalogAdminUsecase {
	concurrency := 1
	if cfg.Catalog != nil && cfg.Catalog.SeedConcurrency > 0 {
		concurrency = cfg.Catalog.SeedConcurrency
	}

	return &catalogAdminService{
		store:       store,
		layout:      layout,
		source:      source,
		concurrency: concurrency,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
		logger:      logger,
	}
}

// Seed inserts every demo product with at most concurrency writes in flight.
// The first failure stops further inserts; products already written stay.
func (srv *catalogAdminService) Seed(ctx context.Context) (*usecase.SeedResult, error) {
	products, err := srv.source.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load demo catalog")
	}

	for i := range products {
		if err := srv.validate.Struct(products[i]); err != nil {
			return nil, errors.Wrap(
				domainerrors.ErrValidationFailed.WithDetails(fmt.Sprintf("product %d (%s): %v", i, products[i].Name, err)),
				"invalid demo catalog",
			)
		}
	}

	srv.logger.Info("Seeding catalog", "products", len(products), "concurrency", srv.concurrency)

	var (
		mu  sync.Mutex
		ids = make([]string, len(products))
		n   int
	)

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(srv.concurrency)
	for i, product := range products {
		group.Go(func() error {
			if err := groupCtx.Err(); err != nil {
				return err
			}

			id, err := srv.store.Create(groupCtx, srv.layout.Products(), productFields(product))
			if err != nil {
				return errors.Wrapf(err, "insert %q", product.Name)
			}

			mu.Lock()
			ids[i] = id
			n++
			mu.Unlock()

			return nil
		})
	}

	result := &usecase.SeedResult{}
	if err := group.Wait(); err != nil {
		result.Inserted = n
		result.ProductIDs = compact(ids)
		srv.logger.Error("Catalog seeding stopped", "inserted", n, "total", len(products), "error", err)

		return result, domainerrors.PartialBulkError(err, fmt.Sprintf("seeded %d of %d products", n, len(products)))
	}

	result.Inserted = n
	result.ProductIDs = ids
	srv.logger.Info("Catalog seeded", "inserted", n)

	return result, nil
}

// Reset deletes every current product, in parallel, and then seeds.
// Nothing is transactional: re-running Reset is the recovery.
func (srv *catalogAdminService) Reset(ctx context.Context) (*usecase.SeedResult, error) {
	docs, err := srv.store.List(ctx, srv.layout.Products())
	if err != nil {
		return nil, domainerrors.PartialBulkError(err, "list products")
	}

	srv.logger.Info("Resetting catalog", "existing", len(docs))

	var (
		group   errgroup.Group
		mu      sync.Mutex
		deleted int
	)
	for _, doc := range docs {
		group.Go(func() error {
			if err := srv.store.Delete(ctx, srv.layout.Product(doc.ID)); err != nil {
				return errors.Wrapf(err, "delete %s", doc.ID)
			}

			mu.Lock()
			deleted++
			mu.Unlock()

			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return &usecase.SeedResult{Deleted: deleted},
			domainerrors.PartialBulkError(err, fmt.Sprintf("deleted %d of %d products", deleted, len(docs)))
	}

	result, err := srv.Seed(ctx)
	if result != nil {
		result.Deleted = deleted
	}

	return result, err
}

func compact(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != "" {
			out = append(out, id)
		}
	}

	return out
}
