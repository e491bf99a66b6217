package payment

import (
	"context"
	"log"

	"github.com/google/uuid"

	"raydrip/internal/money"
)

// Sandbox mints provider orders locally so the checkout flow runs without
// provider credentials. Signatures use the configured secret.
type Sandbox struct {
	secret string
}

func NewSandbox(secret string) *Sandbox {
	if secret == "" {
		secret = "sandbox-secret"
	}
	return &Sandbox{secret: secret}
}

func (s *Sandbox) KeyID() string { return "rzp_sandbox" }

func (s *Sandbox) CreateOrder(_ context.Context, amount money.Amount, currency, receipt string) (*ProviderOrder, error) {
	order := &ProviderOrder{
		ID:       "order_" + uuid.NewString(),
		Amount:   amount,
		Currency: currency,
		Receipt:  receipt,
		Status:   "created",
	}
	log.Printf("[PAYMENT] [DEBUG] sandbox order %s", order.ID)
	return order, nil
}

func (s *Sandbox) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifySignature(orderID, paymentID, signature, s.secret)
}

// Sign produces the signature the provider would return for a payment.
func (s *Sandbox) Sign(orderID, paymentID string) string {
	return Sign(orderID, paymentID, s.secret)
}
