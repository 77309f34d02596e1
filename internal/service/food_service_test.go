package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastetrail/restaurant-backend/internal/models"
	"github.com/tastetrail/restaurant-backend/internal/repository"
)

func TestFoodService_CreateFood(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		food    models.FoodItem
		wantErr error
	}{
		{
			name: "valid food",
			food: models.FoodItem{Name: "Chicken Waffle", Price: 12.99, Quantity: 15},
		},
		{
			name:    "missing name",
			food:    models.FoodItem{Price: 12.99, Quantity: 15},
			wantErr: ErrInvalidFood,
		},
		{
			name:    "negative price",
			food:    models.FoodItem{Name: "Chicken Waffle", Price: -1, Quantity: 15},
			wantErr: ErrInvalidFood,
		},
		{
			name:    "negative quantity",
			food:    models.FoodItem{Name: "Chicken Waffle", Price: 12.99, Quantity: -3},
			wantErr: ErrInvalidFood,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewFoodService(repository.NewMemoryFoodRepository())

			// Client-supplied values for server-owned fields must be overwritten.
			tt.food.OwnerEmail = "spoofed@example.com"
			tt.food.PurchaseCount = 99

			created, err := svc.CreateFood(ctx, "owner@example.com", &tt.food)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("CreateFood() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateFood() unexpected error = %v", err)
			}

			if created.ID.IsZero() {
				t.Error("created food has zero ID")
			}
			if created.OwnerEmail != "owner@example.com" {
				t.Errorf("ownerEmail = %q, want verified identity", created.OwnerEmail)
			}
			if created.PurchaseCount != 0 {
				t.Errorf("purchaseCount = %d, want 0 on creation", created.PurchaseCount)
			}
			if created.CreatedAt.IsZero() {
				t.Error("createdAt not assigned")
			}
		})
	}
}

func TestFoodService_CreateFood_PreservesExtraAttributes(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryFoodRepository()
	svc := NewFoodService(repo)

	food := models.FoodItem{
		Name: "Garden Salad", Price: 7.99, Quantity: 5,
		Extra: map[string]any{"category": "Salad", "image": "https://cdn.example.com/salad.jpg"},
	}
	created, err := svc.CreateFood(ctx, "owner@example.com", &food)
	if err != nil {
		t.Fatalf("CreateFood: %v", err)
	}

	stored, err := svc.GetFood(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("GetFood: %v", err)
	}
	if stored.Extra["category"] != "Salad" || stored.Extra["image"] != "https://cdn.example.com/salad.jpg" {
		t.Errorf("extra attributes not round-tripped: %v", stored.Extra)
	}
}

func TestFoodService_UpdateFood(t *testing.T) {
	ctx := context.Background()

	newRepoWithFood := func(t *testing.T) (*FoodService, primitive.ObjectID) {
		repo := repository.NewMemoryFoodRepository()
		svc := NewFoodService(repo)
		food := models.FoodItem{Name: "Margherita Pizza", Price: 14.99, Quantity: 10}
		created, err := svc.CreateFood(ctx, "owner@example.com", &food)
		if err != nil {
			t.Fatalf("CreateFood: %v", err)
		}
		return svc, created.ID
	}

	t.Run("owner merges supplied fields only", func(t *testing.T) {
		svc, id := newRepoWithFood(t)

		updated, err := svc.UpdateFood(ctx, "owner@example.com", id.Hex(), map[string]any{
			"price":       13.49,
			"description": "wood-fired",
		})
		if err != nil {
			t.Fatalf("UpdateFood: %v", err)
		}
		if updated.Price != 13.49 {
			t.Errorf("price = %v, want 13.49", updated.Price)
		}
		if updated.Name != "Margherita Pizza" {
			t.Errorf("name = %q, unsupplied field must not change", updated.Name)
		}
		if updated.Extra["description"] != "wood-fired" {
			t.Errorf("descriptive attribute not merged: %v", updated.Extra)
		}
	})

	t.Run("non-owner is forbidden and record unchanged", func(t *testing.T) {
		svc, id := newRepoWithFood(t)

		_, err := svc.UpdateFood(ctx, "intruder@example.com", id.Hex(), map[string]any{"price": 1.0})
		if !errors.Is(err, ErrForbidden) {
			t.Fatalf("UpdateFood() error = %v, want ErrForbidden", err)
		}

		food, _ := svc.GetFood(ctx, id.Hex())
		if food.Price != 14.99 {
			t.Errorf("price = %v, record must be unchanged after forbidden update", food.Price)
		}
	})

	t.Run("protected fields are not patchable", func(t *testing.T) {
		svc, id := newRepoWithFood(t)

		updated, err := svc.UpdateFood(ctx, "owner@example.com", id.Hex(), map[string]any{
			"ownerEmail":    "intruder@example.com",
			"purchaseCount": 500.0,
			"quantity":      999.0,
		})
		if err != nil {
			t.Fatalf("UpdateFood: %v", err)
		}
		if updated.OwnerEmail != "owner@example.com" {
			t.Errorf("ownerEmail = %q, must not be patchable", updated.OwnerEmail)
		}
		if updated.PurchaseCount != 0 || updated.Quantity != 10 {
			t.Errorf("stock counters changed through patch: quantity=%d purchaseCount=%d", updated.Quantity, updated.PurchaseCount)
		}
	})

	t.Run("invalid patched values", func(t *testing.T) {
		svc, id := newRepoWithFood(t)

		if _, err := svc.UpdateFood(ctx, "owner@example.com", id.Hex(), map[string]any{"price": -2.0}); !errors.Is(err, ErrInvalidFood) {
			t.Errorf("negative price error = %v, want ErrInvalidFood", err)
		}
		if _, err := svc.UpdateFood(ctx, "owner@example.com", id.Hex(), map[string]any{"name": ""}); !errors.Is(err, ErrInvalidFood) {
			t.Errorf("empty name error = %v, want ErrInvalidFood", err)
		}
	})

	t.Run("unknown food", func(t *testing.T) {
		svc, _ := newRepoWithFood(t)
		_, err := svc.UpdateFood(ctx, "owner@example.com", primitive.NewObjectID().Hex(), map[string]any{"price": 1.0})
		if !errors.Is(err, ErrFoodNotFound) {
			t.Errorf("UpdateFood() error = %v, want ErrFoodNotFound", err)
		}
	})
}

func TestFoodService_DeleteFood(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryFoodRepository()
	svc := NewFoodService(repo)

	created, err := svc.CreateFood(ctx, "owner@example.com", &models.FoodItem{Name: "Chocolate Waffle", Price: 11.99, Quantity: 4})
	if err != nil {
		t.Fatalf("CreateFood: %v", err)
	}

	if err := svc.DeleteFood(ctx, "intruder@example.com", created.ID.Hex()); !errors.Is(err, ErrForbidden) {
		t.Fatalf("DeleteFood() by non-owner error = %v, want ErrForbidden", err)
	}
	if _, err := svc.GetFood(ctx, created.ID.Hex()); err != nil {
		t.Fatalf("food missing after forbidden delete attempt: %v", err)
	}

	if err := svc.DeleteFood(ctx, "owner@example.com", created.ID.Hex()); err != nil {
		t.Fatalf("DeleteFood() by owner: %v", err)
	}
	if _, err := svc.GetFood(ctx, created.ID.Hex()); !errors.Is(err, ErrFoodNotFound) {
		t.Errorf("GetFood after delete error = %v, want ErrFoodNotFound", err)
	}
}

func TestFoodService_AdjustStock(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		stock     int
		delta     int
		id        func(seeded primitive.ObjectID) string
		wantErr   error
		wantStock int
	}{
		{name: "restock", stock: 3, delta: 7, wantStock: 10},
		{name: "manual correction", stock: 10, delta: -4, wantStock: 6},
		{name: "correction to zero", stock: 4, delta: -4, wantStock: 0},
		{name: "correction below zero", stock: 3, delta: -5, wantErr: ErrInsufficientStock, wantStock: 3},
		{name: "zero delta", stock: 3, delta: 0, wantErr: ErrInvalidDelta, wantStock: 3},
		{name: "malformed id", stock: 3, delta: 1, id: func(primitive.ObjectID) string { return "xyz" }, wantErr: ErrInvalidID, wantStock: 3},
		{name: "unknown food", stock: 3, delta: 1, id: func(primitive.ObjectID) string { return primitive.NewObjectID().Hex() }, wantErr: ErrFoodNotFound, wantStock: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := repository.NewMemoryFoodRepository()
			svc := NewFoodService(repo)
			seeded, err := repo.Insert(ctx, &models.FoodItem{Name: "Greek Salad", Price: 9.49, Quantity: tt.stock, PurchaseCount: 2})
			if err != nil {
				t.Fatalf("seed food: %v", err)
			}

			id := seeded.Hex()
			if tt.id != nil {
				id = tt.id(seeded)
			}

			_, err = svc.AdjustStock(ctx, id, tt.delta)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("AdjustStock() error = %v, want %v", err, tt.wantErr)
				}
			} else if err != nil {
				t.Fatalf("AdjustStock() unexpected error = %v", err)
			}

			food, err := repo.GetByID(ctx, seeded)
			if err != nil {
				t.Fatalf("reload food: %v", err)
			}
			if food.Quantity != tt.wantStock {
				t.Errorf("quantity = %d, want %d", food.Quantity, tt.wantStock)
			}
			if food.PurchaseCount != 2 {
				t.Errorf("purchaseCount = %d, manual adjustment must not touch it", food.PurchaseCount)
			}
		})
	}
}

func TestFoodService_TopFoods(t *testing.T) {
	ctx := context.Background()
	repo := repository.NewMemoryFoodRepository()
	svc := NewFoodService(repo)

	counts := []int{3, 12, 0, 7, 7, 25, 1, 9}
	for i, c := range counts {
		_, err := repo.Insert(ctx, &models.FoodItem{
			Name:          fmt.Sprintf("Dish %d", i),
			Price:         9.99,
			Quantity:      10,
			PurchaseCount: c,
		})
		if err != nil {
			t.Fatalf("seed food: %v", err)
		}
	}

	top, err := svc.TopFoods(ctx)
	if err != nil {
		t.Fatalf("TopFoods: %v", err)
	}

	if len(top) != 6 {
		t.Fatalf("TopFoods returned %d items, want 6", len(top))
	}
	for i := 1; i < len(top); i++ {
		if top[i-1].PurchaseCount < top[i].PurchaseCount {
			t.Fatalf("TopFoods not sorted descending at %d: %d < %d", i, top[i-1].PurchaseCount, top[i].PurchaseCount)
		}
	}
	if top[0].PurchaseCount != 25 {
		t.Errorf("top seller purchaseCount = %d, want 25", top[0].PurchaseCount)
	}

	// Ties keep insertion order: the two foods with purchaseCount 7.
	var tied []string
	for _, f := range top {
		if f.PurchaseCount == 7 {
			tied = append(tied, f.Name)
		}
	}
	if len(tied) != 2 || tied[0] != "Dish 3" || tied[1] != "Dish 4" {
		t.Errorf("tie-break not deterministic: %v", tied)
	}
}
