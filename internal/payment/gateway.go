// Package payment talks to the hosted payment provider: order creation and
// verification of the signature it returns after a successful payment.
package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"raydrip/internal/money"
)

// ProviderOrder is the provider-side order a payment is made against.
type ProviderOrder struct {
	ID       string       `json:"id"`
	Amount   money.Amount `json:"amount"`
	Currency string       `json:"currency"`
	Receipt  string       `json:"receipt"`
	Status   string       `json:"status"`
}

// Callback is what the provider UI hands back after a successful payment.
type Callback struct {
	PaymentID string `json:"razorpay_payment_id" binding:"required"`
	OrderID   string `json:"razorpay_order_id" binding:"required"`
	Signature string `json:"razorpay_signature" binding:"required"`
}

type Gateway interface {
	CreateOrder(ctx context.Context, amount money.Amount, currency, receipt string) (*ProviderOrder, error)
	VerifySignature(orderID, paymentID, signature string) bool
	KeyID() string
}

// Sign computes the hex HMAC-SHA256 of "orderID|paymentID".
func Sign(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature compares in constant time.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	expected := Sign(orderID, paymentID, secret)
	return hmac.Equal([]byte(expected), []byte(signature))
}

// Config selects and tunes the gateway.
type Config struct {
	KeyID     string
	KeySecret string
	APIURL    string
	Timeout   time.Duration
}

// New returns the live gateway when a key id is configured, otherwise the
// sandbox.
func New(cfg Config) Gateway {
	if cfg.KeyID == "" {
		return NewSandbox(cfg.KeySecret)
	}
	return NewRazorpay(cfg)
}
