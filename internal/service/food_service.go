package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastetrail/restaurant-backend/internal/models"
	"github.com/tastetrail/restaurant-backend/internal/repository"
)

// topFoodsLimit caps the top-sellers listing.
const topFoodsLimit = 6

// protectedFoodFields are never writable through the partial-update path.
var protectedFoodFields = []string{"_id", "ownerEmail", "purchaseCount", "quantity", "createdAt"}

// FoodService handles business logic for the food catalog.
type FoodService struct {
	repo repository.FoodRepository
}

// NewFoodService creates a new food service.
func NewFoodService(repo repository.FoodRepository) *FoodService {
	return &FoodService{repo: repo}
}

// CreateFood persists a new catalog entry. Owner identity comes from the
// verified session, never from the payload.
func (s *FoodService) CreateFood(ctx context.Context, ownerEmail string, food *models.FoodItem) (*models.FoodItem, error) {
	if food.Name == "" || food.Price < 0 || food.Quantity < 0 {
		return nil, ErrInvalidFood
	}

	food.ID = primitive.NilObjectID
	food.OwnerEmail = ownerEmail
	food.PurchaseCount = 0
	food.CreatedAt = time.Now().UTC()

	id, err := s.repo.Insert(ctx, food)
	if err != nil {
		return nil, fmt.Errorf("create food: %w", err)
	}
	food.ID = id
	return food, nil
}

// GetFood returns a single catalog entry by its hex identifier.
func (s *FoodService) GetFood(ctx context.Context, id string) (*models.FoodItem, error) {
	foodID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	food, err := s.repo.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}
	return food, nil
}

// ListFoods returns the catalog, optionally filtered by owner email.
func (s *FoodService) ListFoods(ctx context.Context, ownerEmail string) ([]models.FoodItem, error) {
	foods, err := s.repo.List(ctx, ownerEmail)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}
	return foods, nil
}

// UpdateFood merges the supplied fields into a catalog entry. Only the
// owner may update; stock counters and identity fields are not patchable
// through this path.
func (s *FoodService) UpdateFood(ctx context.Context, callerEmail, id string, fields map[string]any) (*models.FoodItem, error) {
	foodID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}

	food, err := s.repo.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("get food: %w", err)
	}
	if !sameIdentity(callerEmail, food.OwnerEmail) {
		return nil, ErrForbidden
	}

	for _, k := range protectedFoodFields {
		delete(fields, k)
	}
	if name, ok := fields["name"]; ok {
		if str, ok := name.(string); !ok || str == "" {
			return nil, ErrInvalidFood
		}
	}
	if price, ok := fields["price"]; ok {
		if p, ok := price.(float64); !ok || p < 0 {
			return nil, ErrInvalidFood
		}
	}
	if len(fields) == 0 {
		return food, nil
	}

	if err := s.repo.Update(ctx, foodID, fields); err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("update food: %w", err)
	}

	updated, err := s.repo.GetByID(ctx, foodID)
	if err != nil {
		return nil, fmt.Errorf("reload food: %w", err)
	}
	return updated, nil
}

// DeleteFood removes a catalog entry. Only the owner may delete.
func (s *FoodService) DeleteFood(ctx context.Context, callerEmail, id string) error {
	foodID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrInvalidID
	}

	food, err := s.repo.GetByID(ctx, foodID)
	if err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("get food: %w", err)
	}
	if !sameIdentity(callerEmail, food.OwnerEmail) {
		return ErrForbidden
	}

	if err := s.repo.Delete(ctx, foodID); err != nil {
		if errors.Is(err, repository.ErrFoodNotFound) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("delete food: %w", err)
	}
	return nil
}

// AdjustStock applies a signed delta to a food's quantity: positive for
// restocking, negative for manual correction. purchaseCount is untouched.
func (s *FoodService) AdjustStock(ctx context.Context, id string, delta int) (*models.FoodItem, error) {
	foodID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrInvalidID
	}
	if delta == 0 {
		return nil, ErrInvalidDelta
	}

	if err := s.repo.AdjustStock(ctx, foodID, delta); err != nil {
		switch {
		case errors.Is(err, repository.ErrFoodNotFound):
			return nil, ErrFoodNotFound
		case errors.Is(err, repository.ErrInsufficientStock):
			return nil, ErrInsufficientStock
		default:
			return nil, fmt.Errorf("adjust stock: %w", err)
		}
	}

	food, err := s.repo.GetByID(ctx, foodID)
	if err != nil {
		return nil, fmt.Errorf("reload food: %w", err)
	}
	return food, nil
}

// TopFoods returns the best sellers by purchaseCount, at most six.
func (s *FoodService) TopFoods(ctx context.Context) ([]models.FoodItem, error) {
	foods, err := s.repo.TopByPurchases(ctx, topFoodsLimit)
	if err != nil {
		return nil, fmt.Errorf("top foods: %w", err)
	}
	return foods, nil
}
