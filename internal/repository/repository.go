package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastetrail/restaurant-backend/internal/models"
)

var (
	ErrFoodNotFound      = errors.New("food not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// FoodRepository defines data access for the food catalog.
//
// The stock methods are atomic conditional updates: each one checks its
// precondition and applies the mutation in a single store operation, so
// concurrent callers never lose updates and quantity never goes negative.
type FoodRepository interface {
	Insert(ctx context.Context, food *models.FoodItem) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.FoodItem, error)
	// List returns all foods, optionally filtered by owner email.
	List(ctx context.Context, ownerEmail string) ([]models.FoodItem, error)
	// Update merges the given fields into the stored document.
	Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// TopByPurchases returns up to limit foods sorted by purchaseCount descending.
	TopByPurchases(ctx context.Context, limit int) ([]models.FoodItem, error)

	// ReserveStock decrements quantity and increments purchaseCount by qty,
	// iff the current quantity is at least qty. Returns ErrInsufficientStock
	// when stock is too low and ErrFoodNotFound when the food is absent.
	ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// ReleaseStock increments quantity by qty without touching purchaseCount.
	ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error
	// AdjustStock applies a signed delta to quantity, iff the result stays
	// non-negative. Does not touch purchaseCount.
	AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error
}

// OrderRepository defines data access for the order ledger.
type OrderRepository interface {
	Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error)
	ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}
