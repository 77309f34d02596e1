package repository

import (
	"context"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tastetrail/restaurant-backend/internal/models"
)

// MemoryFoodRepository implements FoodRepository with in-memory storage.
// The mutex makes the conditional stock updates atomic, matching the
// single-operation semantics of the document store.
type MemoryFoodRepository struct {
	mu    sync.Mutex
	foods map[primitive.ObjectID]models.FoodItem
	order []primitive.ObjectID // insertion order, keeps listings deterministic
}

// NewMemoryFoodRepository creates an empty in-memory food repository.
func NewMemoryFoodRepository() *MemoryFoodRepository {
	return &MemoryFoodRepository{
		foods: make(map[primitive.ObjectID]models.FoodItem),
	}
}

func copyFood(f models.FoodItem) models.FoodItem {
	if f.Extra != nil {
		extra := make(map[string]any, len(f.Extra))
		for k, v := range f.Extra {
			extra[k] = v
		}
		f.Extra = extra
	}
	return f
}

func (r *MemoryFoodRepository) Insert(ctx context.Context, food *models.FoodItem) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := food.ID
	if id.IsZero() {
		id = primitive.NewObjectID()
	}

	stored := copyFood(*food)
	stored.ID = id
	r.foods[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *MemoryFoodRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FoodItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.foods[id]
	if !ok {
		return nil, ErrFoodNotFound
	}
	out := copyFood(food)
	return &out, nil
}

func (r *MemoryFoodRepository) List(ctx context.Context, ownerEmail string) ([]models.FoodItem, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	foods := []models.FoodItem{}
	for _, id := range r.order {
		food, ok := r.foods[id]
		if !ok {
			continue
		}
		if ownerEmail != "" && food.OwnerEmail != ownerEmail {
			continue
		}
		foods = append(foods, copyFood(food))
	}
	return foods, nil
}

func (r *MemoryFoodRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.foods[id]
	if !ok {
		return ErrFoodNotFound
	}

	for k, v := range fields {
		switch k {
		case "name":
			if s, ok := v.(string); ok {
				food.Name = s
			}
		case "price":
			if p, ok := v.(float64); ok {
				food.Price = p
			}
		default:
			if food.Extra == nil {
				food.Extra = make(map[string]any)
			}
			food.Extra[k] = v
		}
	}

	r.foods[id] = copyFood(food)
	return nil
}

func (r *MemoryFoodRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.foods[id]; !ok {
		return ErrFoodNotFound
	}
	delete(r.foods, id)
	return nil
}

func (r *MemoryFoodRepository) TopByPurchases(ctx context.Context, limit int) ([]models.FoodItem, error) {
	foods, err := r.List(ctx, "")
	if err != nil {
		return nil, err
	}

	// Stable sort over insertion order keeps ties deterministic.
	sort.SliceStable(foods, func(i, j int) bool {
		return foods[i].PurchaseCount > foods[j].PurchaseCount
	})

	if len(foods) > limit {
		foods = foods[:limit]
	}
	return foods, nil
}

func (r *MemoryFoodRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.foods[id]
	if !ok {
		return ErrFoodNotFound
	}
	if food.Quantity < qty {
		return ErrInsufficientStock
	}

	food.Quantity -= qty
	food.PurchaseCount += qty
	r.foods[id] = food
	return nil
}

func (r *MemoryFoodRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.foods[id]
	if !ok {
		return ErrFoodNotFound
	}

	food.Quantity += qty
	r.foods[id] = food
	return nil
}

func (r *MemoryFoodRepository) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	food, ok := r.foods[id]
	if !ok {
		return ErrFoodNotFound
	}
	if food.Quantity+delta < 0 {
		return ErrInsufficientStock
	}

	food.Quantity += delta
	r.foods[id] = food
	return nil
}

// MemoryOrderRepository implements OrderRepository with in-memory storage.
type MemoryOrderRepository struct {
	mu     sync.Mutex
	orders map[primitive.ObjectID]models.Order
	order  []primitive.ObjectID

	// FailInsert forces Insert to return the given error; used by tests to
	// exercise the compensating rollback path.
	FailInsert error
}

// NewMemoryOrderRepository creates an empty in-memory order repository.
func NewMemoryOrderRepository() *MemoryOrderRepository {
	return &MemoryOrderRepository{
		orders: make(map[primitive.ObjectID]models.Order),
	}
}

func (r *MemoryOrderRepository) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailInsert != nil {
		return primitive.NilObjectID, r.FailInsert
	}

	id := order.ID
	if id.IsZero() {
		id = primitive.NewObjectID()
	}

	stored := *order
	stored.ID = id
	r.orders[id] = stored
	r.order = append(r.order, id)
	return id, nil
}

func (r *MemoryOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return nil, ErrOrderNotFound
	}
	return &order, nil
}

func (r *MemoryOrderRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	orders := []models.Order{}
	for _, id := range r.order {
		order, ok := r.orders[id]
		if !ok {
			continue
		}
		if order.BuyerEmail == buyerEmail {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (r *MemoryOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.orders[id]; !ok {
		return ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}
