package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is the storefront identity created by OTP sign-in or guest checkout.
// ID is the email or phone the user signed in with.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Orders    []Order   `json:"orders"`
	CreatedAt time.Time `json:"createdAt"`
}

// Account represents a password account of the backend user API.
type Account struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"passwordHash" json:"-"`
	Name         string             `bson:"name" json:"name"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
