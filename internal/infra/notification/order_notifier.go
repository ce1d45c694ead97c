// Package notification sends order confirmations to shoppers' devices through
// Firebase Cloud Messaging.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"luxe/config"
	"luxe/internal/domain/service"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

// messageSender is the part of *messaging.Client the notifier uses.
type messageSender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// orderNotifier implements EventPublisher by pushing each placed order to the
// FCM topic of the identity that placed it, "<prefix>-<identityID>".
type orderNotifier struct {
	client      messageSender
	topicPrefix string
	logger      *slog.Logger
}

// NewOrderNotifier creates a Firebase Cloud Messaging order notifier.
func NewOrderNotifier(ctx context.Context, cfg *config.FirebaseConfig, topicPrefix string, logger *slog.Logger) (service.EventPublisher, error) {
	if cfg == nil || cfg.ProjectID == "" {
		return nil, errors.New("firebase project ID is required for the fcm provider")
	}

	var opts []option.ClientOption
	if cfg.CredentialsPath != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsPath))
	}

	app, err := firebase.NewApp(ctx, &firebase.Config{ProjectID: cfg.ProjectID}, opts...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to initialize Firebase app")
	}

	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get messaging client")
	}

	logger.Info("FCM order notifier initialized", slog.String("topic_prefix", topicPrefix))

	return newOrderNotifier(client, topicPrefix, logger), nil
}

func newOrderNotifier(client messageSender, topicPrefix string, logger *slog.Logger) *orderNotifier {
	if topicPrefix == "" {
		topicPrefix = "orders"
	}

	return &orderNotifier{
		client:      client,
		topicPrefix: topicPrefix,
		logger:      logger,
	}
}

// PublishOrderPlaced sends the order confirmation push.
func (n *orderNotifier) PublishOrderPlaced(ctx context.Context, event *service.OrderPlacedEvent) error {
	messageID, err := n.client.Send(ctx, n.message(event))
	if err != nil {
		return errors.Wrap(err, "failed to send order notification")
	}

	n.logger.Debug("Order notification sent",
		slog.String("message_id", messageID),
		slog.String("order_id", event.OrderID),
	)

	return nil
}

func (n *orderNotifier) message(event *service.OrderPlacedEvent) *messaging.Message {
	return &messaging.Message{
		Topic: n.topicPrefix + "-" + event.IdentityID,
		Notification: &messaging.Notification{
			Title: "Order placed",
			Body:  fmt.Sprintf("Your order of %d items is being processed.", event.ItemCount),
		},
		Data: map[string]string{
			"event_type": "order.placed",
			"order_id":   event.OrderID,
			"total":      strconv.FormatFloat(event.Total, 'f', 2, 64),
		},
	}
}

// Close is a no-op; the messaging client holds no resources to release.
func (n *orderNotifier) Close() error {
	return nil
}
