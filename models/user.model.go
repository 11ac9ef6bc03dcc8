package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address represents a shipping address
type Address struct {
	Address    string `bson:"address" json:"address" validate:"required"`
	City       string `bson:"city" json:"city" validate:"required"`
	PostalCode string `bson:"postal_code" json:"postal_code" validate:"required"`
	Country    string `bson:"country" json:"country" validate:"required"`
}

// IsZero reports whether no field of the address has been filled in.
func (a Address) IsZero() bool {
	return a == Address{}
}

// IsComplete reports whether every field required at checkout is present.
func (a Address) IsComplete() bool {
	return a.Address != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// User represents a user in the system
type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password,omitempty" json:"-"`
	IsAdmin   bool               `bson:"is_admin" json:"is_admin"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
