package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastetrail/restaurant-backend/internal/models"
	"github.com/tastetrail/restaurant-backend/internal/repository"
)

// OrderService handles order placement and cancellation, keeping the food
// catalog's stock bookkeeping consistent with the order ledger.
//
// The store has no multi-document transactions, so both two-step mutations
// run stock-first with a compensating rollback: the stock change is an
// atomic conditional update, and if the ledger write that follows fails,
// the stock change is reversed.
type OrderService struct {
	foods  repository.FoodRepository
	orders repository.OrderRepository
	log    *slog.Logger
}

// NewOrderService creates a new order service.
func NewOrderService(foods repository.FoodRepository, orders repository.OrderRepository, log *slog.Logger) *OrderService {
	return &OrderService{
		foods:  foods,
		orders: orders,
		log:    log,
	}
}

// PlaceOrder reserves stock for the requested food and records the order.
// Price and buyer identity are taken from the stored food and the verified
// session; client-supplied values for either are ignored.
func (s *OrderService) PlaceOrder(ctx context.Context, buyerEmail string, req models.OrderRequest) (*models.Order, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	foodID, err := primitive.ObjectIDFromHex(req.FoodID)
	if err != nil {
		return nil, ErrInvalidID
	}

	food, err := s.foods.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}

	// Single conditional decrement; concurrent orders against the same
	// food race on this operation, not on the read above.
	if err := s.foods.ReserveStock(ctx, foodID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, repository.ErrFoodNotFound):
			return nil, ErrFoodNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		default:
			return nil, fmt.Errorf("reserve stock: %w", err)
		}
	}

	order := &models.Order{
		FoodID:     foodID,
		FoodName:   food.Name,
		Quantity:   req.Quantity,
		BuyerEmail: buyerEmail,
		Price:      food.Price,
		Date:       time.Now().UTC(),
	}

	id, err := s.orders.Insert(ctx, order)
	if err != nil {
		if rbErr := s.foods.ReleaseStock(ctx, foodID, req.Quantity); rbErr != nil {
			s.log.Error("stock rollback failed after order insert failure",
				"food_id", foodID.Hex(), "quantity", req.Quantity, "error", rbErr)
		}
		return nil, fmt.Errorf("insert order: %w", err)
	}

	order.ID = id
	return order, nil
}

// CancelOrder deletes an order and restores the reserved stock. Only the
// buyer who placed the order may cancel it. purchaseCount is a historical
// sales metric and is not rolled back.
func (s *OrderService) CancelOrder(ctx context.Context, callerEmail, id string) error {
	orderID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("get order: %w", err)
	}
	if !sameIdentity(callerEmail, order.BuyerEmail) {
		return ErrForbidden
	}

	// Restock first, then delete the ledger entry; a deletion failure
	// reverses the restock. If the food has since been removed from the
	// catalog, the restock is skipped and cancellation still succeeds.
	restocked := true
	if err := s.foods.ReleaseStock(ctx, order.FoodID, order.Quantity); err != nil {
		if !errors.Is(err, repository.ErrFoodNotFound) {
			return fmt.Errorf("restore stock: %w", err)
		}
		restocked = false
		s.log.Debug("restock skipped, food no longer exists",
			"order_id", orderID.Hex(), "food_id", order.FoodID.Hex())
	}

	if err := s.orders.Delete(ctx, orderID); err != nil {
		if restocked {
			if rbErr := s.foods.AdjustStock(ctx, order.FoodID, -order.Quantity); rbErr != nil {
				s.log.Error("restock rollback failed after order delete failure",
					"order_id", orderID.Hex(), "error", rbErr)
			}
		}
		if errors.Is(err, repository.ErrOrderNotFound) {
			return ErrOrderNotFound
		}
		return fmt.Errorf("delete order: %w", err)
	}

	return nil
}

// ListOrders returns the caller's own orders. Listing another user's
// orders is forbidden.
func (s *OrderService) ListOrders(ctx context.Context, callerEmail, filterEmail string) ([]models.Order, error) {
	if filterEmail == "" {
		filterEmail = callerEmail
	}
	if !sameIdentity(callerEmail, filterEmail) {
		return nil, ErrForbidden
	}

	// Query by the verified identity; that is the value stored on orders.
	orders, err := s.orders.ListByBuyer(ctx, callerEmail)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}
