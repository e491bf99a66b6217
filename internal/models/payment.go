package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PaymentItem is the cart snapshot line stored with a payment.
type PaymentItem struct {
	ProductID string `bson:"productId" json:"productId"`
	Name      string `bson:"name" json:"name"`
	Size      string `bson:"size,omitempty" json:"size,omitempty"`
	Quantity  int    `bson:"quantity" json:"quantity"`
	UnitPrice int64  `bson:"unitPrice" json:"unitPrice"`
}

// PaymentRecord is the backend copy of a completed provider payment.
type PaymentRecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PaymentID string             `bson:"paymentId" json:"paymentId"`
	OrderID   string             `bson:"orderId" json:"orderId"`
	Signature string             `bson:"signature" json:"signature"`
	ClientID  string             `bson:"clientId,omitempty" json:"clientId,omitempty"`
	Shipping  ShippingDetails    `bson:"shipping" json:"shipping"`
	Items     []PaymentItem      `bson:"items" json:"items"`
	Total     int64              `bson:"total" json:"total"`
	Currency  string             `bson:"currency" json:"currency"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// PaymentItemsFromCart snapshots cart lines for a payment record.
func PaymentItemsFromCart(items []CartItem) []PaymentItem {
	out := make([]PaymentItem, 0, len(items))
	for _, item := range items {
		out = append(out, PaymentItem{
			ProductID: item.ID,
			Name:      item.Name,
			Size:      string(item.SelectedSize),
			Quantity:  item.Quantity,
			UnitPrice: int64(item.UnitPrice()),
		})
	}
	return out
}
