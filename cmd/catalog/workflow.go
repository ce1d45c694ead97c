package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"luxe/config"
	"luxe/internal/domain/repository"
	"luxe/internal/infra/catalog"
	logs "luxe/internal/infra/log"
	"luxe/internal/infra/persistence"
	"luxe/internal/usecase"
	"luxe/internal/usecase/impl"

	"github.com/pkg/errors"
)

const (
	workflowSeed  = "seed"
	workflowReset = "reset"
)

type overrides struct {
	source      string
	key         string
	concurrency int
}

func (o overrides) apply(cfg *config.Config) {
	if o.source != "" {
		cfg.Catalog.Source = o.source
	}
	if o.key != "" {
		cfg.Catalog.Key = o.key
	}
	if o.concurrency > 0 {
		cfg.Catalog.SeedConcurrency = o.concurrency
	}
}

func runWorkflow(ctx context.Context, workflow string, opts overrides) error {
	cfg, err := config.New()
	if err != nil {
		return errors.Wrap(err, "failed to load config")
	}
	opts.apply(cfg)

	logger, err := logs.NewWithWriter(cfg, os.Stderr)
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	if cfg.Store.Provider == config.StoreProviderMemory {
		logger.Warn("The configured store is in memory; the catalog is discarded on exit")
	}

	store, closeStore, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return errors.Wrap(err, "failed to open document store")
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("Failed to close document store", slog.Any("error", err))
		}
	}()

	admin := impl.NewCatalogAdminService(
		store,
		repository.NewLayout(cfg.Store.AppID),
		catalog.NewSource(cfg, logger),
		cfg,
		logger,
	)

	var result *usecase.SeedResult
	switch workflow {
	case workflowSeed:
		result, err = admin.Seed(ctx)
	case workflowReset:
		result, err = admin.Reset(ctx)
	default:
		return errors.Errorf("unknown workflow: %s", workflow)
	}

	printResult(workflow, result)

	return err
}

func printResult(workflow string, result *usecase.SeedResult) {
	if result == nil {
		return
	}

	fmt.Printf("%s: deleted %d, inserted %d products\n", workflow, result.Deleted, result.Inserted)
	for _, id := range result.ProductIDs {
		fmt.Println("  " + id)
	}
}
