package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderRequest represents an incoming order placement request.
// Buyer identity and price are never taken from the request body.
type OrderRequest struct {
	FoodID   string `json:"foodId"`
	Quantity int    `json:"quantity"`
}

// Order represents one purchase transaction against a FoodItem.
// Orders are immutable once created; the only mutation is deletion.
type Order struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id,omitempty"`
	FoodID     primitive.ObjectID `bson:"foodId" json:"foodId"`
	FoodName   string             `bson:"foodName,omitempty" json:"foodName,omitempty"`
	Quantity   int                `bson:"quantity" json:"quantity"`
	BuyerEmail string             `bson:"buyerEmail" json:"buyerEmail"`
	Price      float64            `bson:"price" json:"price"`
	Date       time.Time          `bson:"date" json:"date"`
}
