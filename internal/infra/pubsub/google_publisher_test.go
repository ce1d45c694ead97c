package pubsub

import (
	"context"
	"encoding/json"
	"testing"

	"luxe/internal/domain/service"

	"cloud.google.com/go/pubsub/v2"
	pubsubpb "cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func fakePubSubOptions(srv *pstest.Server) []option.ClientOption {
	return []option.ClientOption{
		option.WithEndpoint(srv.Addr),
		option.WithoutAuthentication(),
		option.WithGRPCDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
	}
}

func createOrderTopic(t *testing.T, srv *pstest.Server) {
	t.Helper()

	ctx := context.Background()
	admin, err := pubsub.NewClient(ctx, "luxe", fakePubSubOptions(srv)...)
	require.NoError(t, err)
	defer admin.Close()

	_, err = admin.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: "projects/luxe/topics/orders"})
	require.NoError(t, err)
}

func TestGooglePubSubPublisher_PublishesWithOrderingKey(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	createOrderTopic(t, srv)

	publisher, err := NewGooglePubSubPublisher(ctx, "luxe", "orders", discardLogger(), fakePubSubOptions(srv)...)
	require.NoError(t, err)

	require.NoError(t, publisher.PublishOrderPlaced(ctx, sampleEvent()))
	require.NoError(t, publisher.Close())

	messages := srv.Messages()
	require.Len(t, messages, 1)
	assert.Equal(t, "u1", messages[0].OrderingKey)
	assert.Equal(t, "order.placed", messages[0].Attributes["event_type"])
	assert.Equal(t, "3", messages[0].Attributes["item_count"])

	var event service.OrderPlacedEvent
	require.NoError(t, json.Unmarshal(messages[0].Data, &event))
	assert.Equal(t, *sampleEvent(), event)
}

func TestGooglePubSubPublisher_MissingTopic(t *testing.T) {
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	_, err := NewGooglePubSubPublisher(context.Background(), "luxe", "orders", discardLogger(), fakePubSubOptions(srv)...)
	assert.ErrorContains(t, err, "projects/luxe/topics/orders")
}

func TestGooglePubSubPublisher_RejectsIncompleteEvent(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	createOrderTopic(t, srv)

	publisher, err := NewGooglePubSubPublisher(ctx, "luxe", "orders", discardLogger(), fakePubSubOptions(srv)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })

	assert.Error(t, publisher.PublishOrderPlaced(ctx, &service.OrderPlacedEvent{OrderID: "o1"}))
	assert.Empty(t, srv.Messages())
}
