package models

import (
	"time"

	"raydrip/internal/money"
)

// ShippingDetails captures the contact and delivery fields entered at checkout.
type ShippingDetails struct {
	Name    string `json:"name" bson:"name"`
	Email   string `json:"email" bson:"email"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// Order is immutable once placed. ID is the payment provider's order id.
type Order struct {
	ID        string          `json:"id"`
	Items     []CartItem      `json:"items"`
	Shipping  ShippingDetails `json:"shipping"`
	Total     money.Amount    `json:"total"`
	Currency  string          `json:"currency"`
	PlacedAt  time.Time       `json:"placedAt"`
	PaymentID string          `json:"paymentId,omitempty"`
}
