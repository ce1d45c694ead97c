package pubsub

import (
	"context"
	"fmt"
	"log/slog"

	"luxe/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// orderTopicPublisher publishes order events to a Google Cloud Pub/Sub topic.
type orderTopicPublisher struct {
	client    *pubsub.Client
	publisher *pubsub.Publisher
	topic     string
	logger    *slog.Logger
}

// NewGooglePubSubPublisher connects to the order topic, which must already exist.
func NewGooglePubSubPublisher(
	ctx context.Context,
	projectID, topicID string,
	logger *slog.Logger,
	opts ...option.ClientOption,
) (service.EventPublisher, error) {
	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "create pubsub client")
	}

	topic := fmt.Sprintf("projects/%s/topics/%s", projectID, topicID)
	if _, err := client.TopicAdminClient.GetTopic(ctx, &pubsubpb.GetTopicRequest{Topic: topic}); err != nil {
		_ = client.Close()

		return nil, errors.Wrapf(err, "order topic %s", topic)
	}

	publisher := client.Publisher(topicID)
	publisher.EnableMessageOrdering = true

	logger.Info("Order events go to Google Pub/Sub", slog.String("topic", topic))

	return &orderTopicPublisher{
		client:    client,
		publisher: publisher,
		topic:     topic,
		logger:    logger,
	}, nil
}

// PublishOrderPlaced waits until the server has accepted the event.
func (p *orderTopicPublisher) PublishOrderPlaced(ctx context.Context, event *service.OrderPlacedEvent) error {
	msg, err := newOrderMessage(event)
	if err != nil {
		return err
	}

	result := p.publisher.Publish(ctx, &pubsub.Message{
		Data:        msg.data,
		Attributes:  msg.attributes,
		OrderingKey: msg.orderingKey,
	})

	serverID, err := result.Get(ctx)
	if err != nil {
		// A failed ordering key stays paused until resumed.
		p.publisher.ResumePublish(msg.orderingKey)

		return errors.Wrapf(err, "publish order %s", event.OrderID)
	}

	p.logger.Info("Order event published",
		slog.String("order_id", event.OrderID),
		slog.String("identity_id", event.IdentityID),
		slog.String("server_id", serverID),
	)

	return nil
}

// Close flushes pending events and releases the client.
func (p *orderTopicPublisher) Close() error {
	p.publisher.Stop()

	return errors.WithStack(p.client.Close())
}
