package main

import (
	"context"
	"log/slog"
	"os"

	"luxe/config"
	"luxe/internal/delivery"
	"luxe/internal/delivery/http"
	"luxe/internal/delivery/http/middleware"
	"luxe/internal/delivery/http/router/handler"
	"luxe/internal/domain/repository"
	"luxe/internal/domain/service"
	"luxe/internal/infra/auth"
	"luxe/internal/infra/auth/firebase"
	"luxe/internal/infra/auth/memory"
	"luxe/internal/infra/catalog"
	logs "luxe/internal/infra/log"
	"luxe/internal/infra/persistence"
	"luxe/internal/infra/pubsub"
	"luxe/internal/infra/qrcode"
	"luxe/internal/usecase/impl"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

type startServerParams struct {
	fx.In
	fx.Lifecycle

	Deliveries []delivery.Delivery `group:"deliveries"`
}

func main() {
	fx.New(
		injectInfra(),
		injectService(),
		injectUsecase(),
		injectDelivery(),
		injectMiddleware(),
		injectHandler(),
		fx.Invoke(
			startStorefront,
			startServer,
		),
	).Run()
}

func injectInfra() fx.Option {
	return fx.Options(
		fx.Provide(
			config.New,
			logs.New,
			context.Background,
			newDocumentStore,
			newLayout,
		),
		pubsub.Module,
	)
}

// newDocumentStore opens the configured document store and closes it on stop.
func newDocumentStore(lc fx.Lifecycle, ctx context.Context, cfg *config.Config, logger *slog.Logger) (repository.DocumentStore, error) {
	store, closeStore, err := persistence.Open(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return closeStore()
		},
	})

	return store, nil
}

func newLayout(cfg *config.Config) repository.Layout {
	return repository.NewLayout(cfg.Store.AppID)
}

func injectService() fx.Option {
	return fx.Options(
		fx.Provide(
			auth.NewBcryptHasher,
			auth.NewJWTService,
			newIdentityProvider,
			newReceiptCodeService,
			catalog.NewSource,
		),
	)
}

// newIdentityProvider picks the identity provider named in the configuration.
func newIdentityProvider(
	ctx context.Context,
	cfg *config.Config,
	hasher service.PasswordHasher,
	tokens service.TokenService,
	logger *slog.Logger,
) (service.IdentityProvider, error) {
	switch cfg.Auth.Provider {
	case config.AuthProviderMemory:
		logger.Info("Using in-process identity provider")

		return memory.New(cfg, hasher, tokens, logger), nil

	case config.AuthProviderFirebase:
		provider, err := firebase.New(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}

		return provider, nil

	default:
		return nil, errors.Errorf("unknown auth provider: %s", cfg.Auth.Provider)
	}
}

// newReceiptCodeService creates a QR code service with dependency injection
func newReceiptCodeService(cfg *config.Config) service.ReceiptCodeService {
	if cfg.QRCode == nil {
		// Use default values if not configured
		return qrcode.NewQRCodeService(256, "M")
	}

	return qrcode.NewQRCodeService(cfg.QRCode.Size, cfg.QRCode.ErrorCorrectionLevel)
}

func injectUsecase() fx.Option {
	return fx.Options(
		fx.Provide(
			impl.NewSessionService,
			impl.NewProfileService,
			impl.NewCatalogService,
			impl.NewCatalogAdminService,
			impl.NewCartService,
			impl.NewOrderService,
			impl.NewCheckoutService,
			impl.NewStorefront,
		),
	)
}

func injectMiddleware() fx.Option {
	return fx.Options(
		fx.Provide(
			middleware.NewAuthMiddleware,
		),
	)
}

func injectHandler() fx.Option {
	return fx.Options(
		fx.Provide(
			handler.NewSessionHandler,
			handler.NewProfileHandler,
			handler.NewProductHandler,
			handler.NewCartHandler,
			handler.NewOrderHandler,
			handler.NewCatalogAdminHandler,
			handler.NewEventsHandler,
		),
	)
}

func injectDelivery() fx.Option {
	return fx.Options(
		fx.Provide(
			fx.Annotate(
				http.NewServer,
				fx.ResultTags(`group:"deliveries"`),
			),
		),
	)
}

// startStorefront opens every subscription on start and closes them on stop.
// The synchronizers hold ctx for the life of the process, so they get the root context.
func startStorefront(lc fx.Lifecycle, ctx context.Context, storefront *impl.Storefront) {
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return storefront.Start(ctx)
		},
		OnStop: func(context.Context) error {
			storefront.Stop()

			return nil
		},
	})
}

func startServer(ctx context.Context, params startServerParams) {
	for _, delivery := range params.Deliveries {
		go func() {
			if err := delivery.Serve(ctx); err != nil {
				slog.Error("Failed to start server", slog.Any("error", err))
				os.Exit(1)
			}
		}()
	}
}
