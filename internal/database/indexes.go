package database

import (
	"context"
	"log"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	accountsCollection = "users"
	paymentsCollection = "payments"
)

func EnsureAccountIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	emailIndex := mongo.IndexModel{
		Keys: bson.D{{Key: "email", Value: 1}},
		Options: options.Index().
			SetName("email_unique").
			SetUnique(true),
	}

	log.Println("EnsureAccountIndexes: creating email_unique index")
	if _, err := db.Collection(accountsCollection).Indexes().CreateOne(ctx, emailIndex); err != nil {
		log.Println("EnsureAccountIndexes: email index error:", err)
		return err
	}
	log.Println("EnsureAccountIndexes: email_unique index created")
	return nil
}

func EnsurePaymentIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "orderId", Value: 1}},
			Options: options.Index().
				SetName("orderId_unique").
				SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
			Options: options.Index().SetName("clientId_createdAt"),
		},
	}

	log.Println("EnsurePaymentIndexes: creating payment indexes")
	if _, err := db.Collection(paymentsCollection).Indexes().CreateMany(ctx, indexModels); err != nil {
		log.Println("EnsurePaymentIndexes: index error:", err)
		return err
	}
	log.Println("EnsurePaymentIndexes: payment indexes created")
	return nil
}
