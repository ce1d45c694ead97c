package pubsub

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"luxe/config"
	"luxe/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleEvent() *service.OrderPlacedEvent {
	return &service.OrderPlacedEvent{
		RequestID:  "req-1",
		OrderID:    "o1",
		IdentityID: "u1",
		Total:      130,
		ItemCount:  3,
		PlacedAt:   time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestNewOrderMessage(t *testing.T) {
	msg, err := newOrderMessage(sampleEvent())
	require.NoError(t, err)

	assert.Equal(t, "o1", msg.id)
	assert.Equal(t, "u1", msg.orderingKey)
	assert.Equal(t, map[string]string{
		"event_type":  "order.placed",
		"order_id":    "o1",
		"identity_id": "u1",
		"item_count":  "3",
		"request_id":  "req-1",
	}, msg.attributes)

	var event service.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(msg.data, &event))
	assert.Equal(t, *sampleEvent(), event)

	untraced := sampleEvent()
	untraced.RequestID = ""
	msg, err = newOrderMessage(untraced)
	require.NoError(t, err)
	assert.NotContains(t, msg.attributes, "request_id")

	for _, event := range []*service.OrderPlacedEvent{nil, {IdentityID: "u1"}, {OrderID: "o1"}} {
		_, err := newOrderMessage(event)
		assert.Error(t, err)
	}
}

func TestLocalHTTPPublisher_PushesOrderPlaced(t *testing.T) {
	var received PushEnvelope
	var requestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID = r.Header.Get("X-Request-Id")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&received))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, "", discardLogger())
	require.NoError(t, publisher.PublishOrderPlaced(context.Background(), sampleEvent()))

	assert.Equal(t, "req-1", requestID)
	assert.Equal(t, "projects/local/subscriptions/orders-fulfilment", received.Subscription)
	assert.Equal(t, "order.placed", received.Message.Attributes["event_type"])
	assert.Equal(t, "o1", received.Message.MessageID)
	assert.Equal(t, "u1", received.Message.OrderingKey)
	_, err := time.Parse(time.RFC3339Nano, received.Message.PublishTime)
	require.NoError(t, err)

	data, err := base64.StdEncoding.DecodeString(received.Message.Data)
	require.NoError(t, err)

	var event service.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(data, &event))
	assert.Equal(t, *sampleEvent(), event)
}

func TestLocalHTTPPublisher_NonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	publisher := NewLocalHTTPPublisher(server.URL, "storefront-orders", discardLogger())
	err := publisher.PublishOrderPlaced(context.Background(), sampleEvent())
	assert.ErrorContains(t, err, "500")
	assert.NoError(t, publisher.Close())
}

func TestNewEventPublisher(t *testing.T) {
	tests := []struct {
		name    string
		pubsub  *config.PubSubConfig
		wantErr bool
	}{
		{name: "not configured uses noop", pubsub: nil},
		{name: "empty provider uses noop", pubsub: &config.PubSubConfig{}},
		{name: "local", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderLocal, LocalEndpoint: "http://localhost:9999/push"}},
		{name: "local without endpoint", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderLocal}, wantErr: true},
		{name: "google without project", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderGoogle, TopicID: "orders"}, wantErr: true},
		{name: "google without topic", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderGoogle, ProjectID: "p"}, wantErr: true},
		{name: "fcm without firebase project", pubsub: &config.PubSubConfig{Provider: config.PubSubProviderFCM, TopicID: "orders"}, wantErr: true},
		{name: "unknown provider", pubsub: &config.PubSubConfig{Provider: "kafka"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lc := fxtest.NewLifecycle(t)
			publisher, err := NewEventPublisher(PublisherParams{
				Lc:     lc,
				Ctx:    context.Background(),
				Config: &config.Config{PubSub: tt.pubsub},
				Logger: discardLogger(),
			})
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			require.NotNil(t, publisher)

			lc.RequireStart()
			lc.RequireStop()
		})
	}
}

func TestDiscardPublisher(t *testing.T) {
	publisher := &discardPublisher{logger: discardLogger()}

	assert.NoError(t, publisher.PublishOrderPlaced(context.Background(), sampleEvent()))
	assert.NoError(t, publisher.Close())
}
