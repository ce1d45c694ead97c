package pubsub

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"luxe/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// PushEnvelope is the body Pub/Sub push subscriptions deliver to HTTP endpoints.
type PushEnvelope struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		OrderingKey string            `json:"orderingKey,omitempty"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// localHTTPPublisher posts order events straight to a fulfilment endpoint in the
// push envelope format, so the receiver runs unchanged against real Pub/Sub.
type localHTTPPublisher struct {
	endpoint     string
	subscription string
	httpClient   *http.Client
	now          func() time.Time
	logger       *slog.Logger
}

// NewLocalHTTPPublisher creates a publisher for local development. The push
// subscription is named after topicID.
func NewLocalHTTPPublisher(endpoint, topicID string, logger *slog.Logger) service.EventPublisher {
	if topicID == "" {
		topicID = defaultOrderTopic
	}

	return &localHTTPPublisher{
		endpoint:     endpoint,
		subscription: "projects/local/subscriptions/" + topicID + "-fulfilment",
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		now:          time.Now,
		logger:       logger,
	}
}

// PublishOrderPlaced delivers the event; any non-2xx reply is a failure.
func (p *localHTTPPublisher) PublishOrderPlaced(ctx context.Context, event *service.OrderPlacedEvent) error {
	msg, err := newOrderMessage(event)
	if err != nil {
		return err
	}

	var envelope PushEnvelope
	envelope.Subscription = p.subscription
	envelope.Message.Data = base64.StdEncoding.EncodeToString(msg.data)
	envelope.Message.Attributes = msg.attributes
	envelope.Message.MessageID = msg.id
	envelope.Message.OrderingKey = msg.orderingKey
	envelope.Message.PublishTime = p.now().UTC().Format(time.RFC3339Nano)

	body, err := json.Marshal(envelope)
	if err != nil {
		return errors.Wrap(err, "encode push envelope")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return errors.WithStack(err)
	}
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if event.RequestID != "" {
		req.Header.Set(echo.HeaderXRequestID, event.RequestID)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "push order %s", event.OrderID)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.Errorf("push endpoint rejected order %s with status %d", event.OrderID, resp.StatusCode)
	}

	p.logger.Info("Order event pushed",
		slog.String("endpoint", p.endpoint),
		slog.String("order_id", event.OrderID),
		slog.Int64("item_count", event.ItemCount),
	)

	return nil
}

func (p *localHTTPPublisher) Close() error {
	p.httpClient.CloseIdleConnections()

	return nil
}
