package service

import (
	"fmt"

	"github.com/skip2/go-qrcode"
)

// DefaultQRGenerator encodes a link to the restaurant's review page, for
// printing on tables and receipts.
type DefaultQRGenerator struct {
	BaseURL string
}

func (g DefaultQRGenerator) Generate(restaurantID string) ([]byte, error) {
	qrData := fmt.Sprintf("%s/restaurants/%s", g.BaseURL, restaurantID)
	return qrcode.Encode(qrData, qrcode.Medium, 256)
}
