package pubsub

import (
	"encoding/json"
	"strconv"

	"luxe/internal/domain/service"

	"github.com/pkg/errors"
)

// Attributes carried by every order event; subscribers filter on event_type.
const (
	attrEventType  = "event_type"
	attrOrderID    = "order_id"
	attrIdentityID = "identity_id"
	attrItemCount  = "item_count"
	attrRequestID  = "request_id"

	eventTypeOrderPlaced = "order.placed"

	// defaultOrderTopic names the topic when none is configured.
	defaultOrderTopic = "orders"
)

// orderMessage is the transport-neutral form of an OrderPlacedEvent.
// Events of one identity share an ordering key so fulfilment sees them in order.
type orderMessage struct {
	id          string
	data        []byte
	attributes  map[string]string
	orderingKey string
}

func newOrderMessage(event *service.OrderPlacedEvent) (*orderMessage, error) {
	if event == nil || event.OrderID == "" || event.IdentityID == "" {
		return nil, errors.New("order event requires order and identity IDs")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.Wrapf(err, "encode order %s", event.OrderID)
	}

	attributes := map[string]string{
		attrEventType:  eventTypeOrderPlaced,
		attrOrderID:    event.OrderID,
		attrIdentityID: event.IdentityID,
		attrItemCount:  strconv.FormatInt(event.ItemCount, 10),
	}
	if event.RequestID != "" {
		attributes[attrRequestID] = event.RequestID
	}

	return &orderMessage{
		id:          event.OrderID,
		data:        data,
		attributes:  attributes,
		orderingKey: event.IdentityID,
	}, nil
}
