package qrcode

import (
	"encoding/json"

	"luxe/internal/domain/service"

	"github.com/pkg/errors"
	"github.com/skip2/go-qrcode"
)

const receiptType = "receipt"

type qrcodeService struct {
	size                 int
	errorCorrectionLevel qrcode.RecoveryLevel
}

// receiptData is the JSON payload encoded in a receipt QR code
type receiptData struct {
	Type       string `json:"type"`
	IdentityID string `json:"identity_id"`
	OrderID    string `json:"order_id"`
}

// NewQRCodeService creates a new receipt QR code service instance
func NewQRCodeService(size int, errorCorrectionLevel string) service.ReceiptCodeService {
	// Set error correction level
	var level qrcode.RecoveryLevel
	switch errorCorrectionLevel {
	case "L":
		level = qrcode.Low
	case "M":
		level = qrcode.Medium
	case "Q":
		level = qrcode.High
	case "H":
		level = qrcode.Highest
	default:
		level = qrcode.Medium
	}

	if size <= 0 {
		size = 256
	}

	return &qrcodeService{
		size:                 size,
		errorCorrectionLevel: level,
	}
}

// GenerateReceiptQR generates a PNG QR code identifying an order
func (s *qrcodeService) GenerateReceiptQR(code service.ReceiptCode) ([]byte, error) {
	if code.IdentityID == "" || code.OrderID == "" {
		return nil, errors.New("receipt code requires identity and order IDs")
	}

	jsonData, err := json.Marshal(receiptData{
		Type:       receiptType,
		IdentityID: code.IdentityID,
		OrderID:    code.OrderID,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal receipt code")
	}

	qrCode, err := qrcode.New(string(jsonData), s.errorCorrectionLevel)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create QR code")
	}

	pngBytes, err := qrCode.PNG(s.size)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate PNG")
	}

	return pngBytes, nil
}

// ParseReceiptQR decodes the text scanned from a receipt QR code
func (s *qrcodeService) ParseReceiptQR(payload string) (service.ReceiptCode, error) {
	var data receiptData
	if err := json.Unmarshal([]byte(payload), &data); err != nil {
		return service.ReceiptCode{}, errors.Wrap(err, "receipt code is not valid JSON")
	}

	if data.Type != receiptType {
		return service.ReceiptCode{}, errors.Errorf("not a receipt code: type %q", data.Type)
	}
	if data.IdentityID == "" || data.OrderID == "" {
		return service.ReceiptCode{}, errors.New("receipt code lacks identity or order ID")
	}

	return service.ReceiptCode{IdentityID: data.IdentityID, OrderID: data.OrderID}, nil
}
