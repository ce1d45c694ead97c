package service

// ReceiptCode identifies an order on a printed or displayed receipt.
type ReceiptCode struct {
	IdentityID string `json:"identity_id"`
	OrderID    string `json:"order_id"`
}

// ReceiptCodeService defines the interface for order receipt QR code generation and parsing
type ReceiptCodeService interface {
	// GenerateReceiptQR renders the receipt code of an order as a PNG image
	GenerateReceiptQR(code ReceiptCode) ([]byte, error)

	// ParseReceiptQR decodes the payload scanned from a receipt QR code
	ParseReceiptQR(payload string) (ReceiptCode, error)
}
