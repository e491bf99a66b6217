package database

import (
	"context"
	"errors"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"raydrip/internal/models"
)

var ErrPaymentNotFound = errors.New("payment not found")

// PaymentRepository keeps one record per provider order.
type PaymentRepository struct {
	coll *mongo.Collection
}

func NewPaymentRepository(db *mongo.Database) *PaymentRepository {
	return &PaymentRepository{coll: db.Collection(paymentsCollection)}
}

// RecordPayment inserts rec. A record that already exists for the order is
// treated as recorded.
func (r *PaymentRepository) RecordPayment(ctx context.Context, rec *models.PaymentRecord) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.InsertOne(ctx, rec)
	if mongo.IsDuplicateKeyError(err) {
		log.Printf("[PAYMENT] [INFO] order %s already recorded", rec.OrderID)
		return nil
	}
	return err
}

func (r *PaymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.PaymentRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var rec models.PaymentRecord
	err := r.coll.FindOne(ctx, bson.M{"orderId": orderID}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrPaymentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
