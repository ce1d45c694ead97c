package pubsub

import (
	"context"
	"log/slog"

	"luxe/config"
	"luxe/internal/domain/service"
	"luxe/internal/infra/notification"

	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// discardPublisher drops order events when no transport is configured.
type discardPublisher struct {
	logger *slog.Logger
}

func (p *discardPublisher) PublishOrderPlaced(_ context.Context, event *service.OrderPlacedEvent) error {
	p.logger.Debug("Order events disabled, dropping event", slog.String("order_id", event.OrderID))

	return nil
}

func (p *discardPublisher) Close() error {
	return nil
}

// PublisherParams holds dependencies for EventPublisher, injected by Fx
type PublisherParams struct {
	fx.In

	Lc     fx.Lifecycle
	Ctx    context.Context
	Config *config.Config
	Logger *slog.Logger
}

// NewEventPublisher selects the order event transport named in the configuration
// and closes it when the application stops.
func NewEventPublisher(params PublisherParams) (service.EventPublisher, error) {
	cfg := params.Config.PubSub
	logger := params.Logger

	if cfg == nil || cfg.Provider == "" {
		logger.Info("Order event transport not configured, events are dropped")

		return &discardPublisher{logger: logger}, nil
	}

	publisher, err := openPublisher(params.Ctx, params.Config, logger)
	if err != nil {
		return nil, errors.Wrapf(err, "pubsub provider %q", cfg.Provider)
	}

	params.Lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			logger.Info("Closing order event publisher", slog.String("provider", cfg.Provider))

			return publisher.Close()
		},
	})

	return publisher, nil
}

func openPublisher(ctx context.Context, root *config.Config, logger *slog.Logger) (service.EventPublisher, error) {
	cfg := root.PubSub

	switch cfg.Provider {
	case config.PubSubProviderLocal:
		if cfg.LocalEndpoint == "" {
			return nil, errors.New("local endpoint is required")
		}

		return NewLocalHTTPPublisher(cfg.LocalEndpoint, cfg.TopicID, logger), nil

	case config.PubSubProviderGoogle:
		if cfg.ProjectID == "" {
			return nil, errors.New("project ID is required")
		}
		if cfg.TopicID == "" {
			return nil, errors.New("topic ID is required")
		}

		return NewGooglePubSubPublisher(ctx, cfg.ProjectID, cfg.TopicID, logger)

	case config.PubSubProviderFCM:
		return notification.NewOrderNotifier(ctx, root.Firebase, cfg.TopicID, logger)

	default:
		return nil, errors.New("unknown provider")
	}
}

// Module provides the Pub/Sub FX module
//
//nolint:gochecknoglobals
var Module = fx.Options(
	fx.Provide(NewEventPublisher),
)
