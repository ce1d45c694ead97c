package handler

import (
	"encoding/json"
	"testing"

	"luxe/internal/domain/entity"
	domainerrors "luxe/internal/domain/errors"
	"luxe/internal/usecase"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		amount float64
		want   string
	}{
		{amount: 0, want: "$0.00"},
		{amount: 130, want: "$130.00"},
		{amount: 45.5, want: "$45.50"},
		{amount: 1299, want: "$1,299.00"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatMoney(tt.amount))
	}
}

func TestNewCartView(t *testing.T) {
	view := newCartView(nil)
	assert.NotNil(t, view.Items)
	assert.Zero(t, view.Count)

	view = newCartView(entity.Cart{
		{ID: "l1", Price: 50, Quantity: 2},
		{ID: "l2", Price: 30, Quantity: 1},
	})
	assert.Equal(t, int64(3), view.Count)
	assert.Equal(t, 130.0, view.Total)
	assert.Equal(t, "$130.00", view.TotalDisplay)
}

func TestNewSessionView_RendersErrorCode(t *testing.T) {
	view := newSessionView(usecase.SessionView{
		State: usecase.SessionFailed,
		Err:   domainerrors.Wrap(domainerrors.ErrGuestAccessDenied, errors.New("admin-restricted-operation")),
	})

	require.NotNil(t, view.Error)
	assert.Equal(t, "GUEST_ACCESS_DENIED", view.Error.Code)
	assert.Equal(t, domainerrors.ErrGuestAccessDenied.Message(), view.Error.Message)
	assert.Nil(t, newSessionView(usecase.SessionView{State: usecase.SessionReady}).Error)
}

func TestNewSessionView_ExposesIDToken(t *testing.T) {
	view := newSessionView(usecase.SessionView{
		State:    usecase.SessionReady,
		Identity: &entity.Identity{ID: "u1", Anonymous: true, IDToken: "signed-token"},
	})

	payload, err := json.Marshal(view)
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"ready","identity":{"id":"u1","anonymous":true,"token":"signed-token"}}`, string(payload))
	assert.Nil(t, newIdentityView(nil))
}

func TestSnapshotBuffer_KeepsLatestPerName(t *testing.T) {
	buf := newSnapshotBuffer()

	buf.put(EventCart, 1)
	buf.put(EventOrders, "a")
	buf.put(EventCart, 2)
	buf.seed(EventCart, 0)
	buf.seed(EventProfile, nil)

	<-buf.ready
	events := buf.drain()
	require.Len(t, events, 3)
	assert.Equal(t, snapshotEvent{name: EventCart, data: 2}, events[0])
	assert.Equal(t, snapshotEvent{name: EventOrders, data: "a"}, events[1])
	assert.Equal(t, snapshotEvent{name: EventProfile, data: nil}, events[2])

	assert.Empty(t, buf.drain())
}
