// Package persistence selects the document store backing the storefront.
package persistence

import (
	"context"
	"log/slog"

	"luxe/config"
	"luxe/internal/domain/repository"
	"luxe/internal/infra/persistence/firestore"
	"luxe/internal/infra/persistence/memstore"

	"github.com/pkg/errors"
)

// Open returns the document store named in cfg.Store and a function releasing it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.DocumentStore, func() error, error) {
	switch cfg.Store.Provider {
	case config.StoreProviderMemory:
		logger.Info("Using in-memory document store")

		return memstore.New(), func() error { return nil }, nil

	case config.StoreProviderFirestore:
		store, err := firestore.New(ctx, cfg.Firebase, logger)
		if err != nil {
			return nil, nil, err
		}

		return store, store.Close, nil

	default:
		return nil, nil, errors.Errorf("unknown store provider: %s", cfg.Store.Provider)
	}
}
