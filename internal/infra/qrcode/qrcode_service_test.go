package qrcode

import (
	"bytes"
	"image/png"
	"testing"

	"luxe/internal/domain/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewQRCodeService(t *testing.T) {
	tests := []struct {
		name                 string
		size                 int
		errorCorrectionLevel string
	}{
		{"Low error correction", 256, "L"},
		{"Medium error correction", 256, "M"},
		{"High error correction", 256, "Q"},
		{"Highest error correction", 256, "H"},
		{"Default error correction", 256, "invalid"},
		{"Default size", 0, "M"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQRCodeService(tt.size, tt.errorCorrectionLevel)
			assert.NotNil(t, svc)
		})
	}
}

func TestQRCodeService_GenerateReceiptQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	qrBytes, err := svc.GenerateReceiptQR(service.ReceiptCode{IdentityID: "u1", OrderID: "o1"})
	require.NoError(t, err)
	require.NotEmpty(t, qrBytes)

	img, err := png.Decode(bytes.NewReader(qrBytes))
	require.NoError(t, err)
	assert.Equal(t, 256, img.Bounds().Dx())
}

func TestQRCodeService_GenerateReceiptQR_DifferentSizes(t *testing.T) {
	tests := []struct {
		name string
		size int
	}{
		{"Small QR", 128},
		{"Medium QR", 256},
		{"Large QR", 512},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewQRCodeService(tt.size, "M")
			qrBytes, err := svc.GenerateReceiptQR(service.ReceiptCode{IdentityID: "u1", OrderID: "o1"})
			require.NoError(t, err)

			img, err := png.Decode(bytes.NewReader(qrBytes))
			require.NoError(t, err)
			assert.Equal(t, tt.size, img.Bounds().Dx())
		})
	}
}

func TestQRCodeService_GenerateReceiptQR_RequiresIDs(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	_, err := svc.GenerateReceiptQR(service.ReceiptCode{OrderID: "o1"})
	assert.Error(t, err)
}

func TestQRCodeService_ParseReceiptQR(t *testing.T) {
	svc := NewQRCodeService(256, "M")

	tests := []struct {
		name    string
		payload string
		want    service.ReceiptCode
		wantErr bool
	}{
		{
			name:    "valid receipt",
			payload: `{"type":"receipt","identity_id":"u1","order_id":"o1"}`,
			want:    service.ReceiptCode{IdentityID: "u1", OrderID: "o1"},
		},
		{name: "wrong type", payload: `{"type":"subscription","identity_id":"u1","order_id":"o1"}`, wantErr: true},
		{name: "missing order", payload: `{"type":"receipt","identity_id":"u1"}`, wantErr: true},
		{name: "not json", payload: "invalid json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.ParseReceiptQR(tt.payload)
			if tt.wantErr {
				assert.Error(t, err)

				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
