package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/tastetrail/restaurant-backend/internal/models"
)

const (
	foodsCollection  = "foods"
	ordersCollection = "orders"
)

// Connect opens a client against the given connection string and verifies
// the deployment is reachable with a primary read.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, fmt.Errorf("connect: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client, nil
}

// MongoFoodRepository implements FoodRepository over the foods collection.
type MongoFoodRepository struct {
	coll *mongo.Collection
}

// NewMongoFoodRepository creates a food repository bound to db.
func NewMongoFoodRepository(db *mongo.Database) *MongoFoodRepository {
	return &MongoFoodRepository{coll: db.Collection(foodsCollection)}
}

func (r *MongoFoodRepository) Insert(ctx context.Context, food *models.FoodItem) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, food)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert food: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoFoodRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.FoodItem, error) {
	var food models.FoodItem
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&food)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrFoodNotFound
		}
		return nil, fmt.Errorf("find food: %w", err)
	}
	return &food, nil
}

func (r *MongoFoodRepository) List(ctx context.Context, ownerEmail string) ([]models.FoodItem, error) {
	filter := bson.M{}
	if ownerEmail != "" {
		filter["ownerEmail"] = ownerEmail
	}

	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list foods: %w", err)
	}

	foods := []models.FoodItem{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("decode foods: %w", err)
	}
	return foods, nil
}

func (r *MongoFoodRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]any) error {
	if len(fields) == 0 {
		return nil
	}

	set := bson.M{}
	for k, v := range fields {
		set[k] = v
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("update food: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *MongoFoodRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete food: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *MongoFoodRepository) TopByPurchases(ctx context.Context, limit int) ([]models.FoodItem, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "purchaseCount", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("top foods: %w", err)
	}

	foods := []models.FoodItem{}
	if err := cursor.All(ctx, &foods); err != nil {
		return nil, fmt.Errorf("decode foods: %w", err)
	}
	return foods, nil
}

// ReserveStock is a single conditional update: the quantity check lives in
// the filter, so two concurrent reservations against the same food cannot
// both pass a stale read.
func (r *MongoFoodRepository) ReserveStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "quantity": bson.M{"$gte": qty}},
		bson.M{"$inc": bson.M{"quantity": -qty, "purchaseCount": qty}},
	)
	if err != nil {
		return fmt.Errorf("reserve stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, id)
	}
	return nil
}

func (r *MongoFoodRepository) ReleaseStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"quantity": qty}},
	)
	if err != nil {
		return fmt.Errorf("release stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrFoodNotFound
	}
	return nil
}

func (r *MongoFoodRepository) AdjustStock(ctx context.Context, id primitive.ObjectID, delta int) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}

	res, err := r.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"quantity": delta}})
	if err != nil {
		return fmt.Errorf("adjust stock: %w", err)
	}
	if res.MatchedCount == 0 {
		return r.missReason(ctx, id)
	}
	return nil
}

// missReason disambiguates a conditional-update miss into missing food vs
// insufficient stock with a follow-up point read.
func (r *MongoFoodRepository) missReason(ctx context.Context, id primitive.ObjectID) error {
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Err()
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrFoodNotFound
		}
		return fmt.Errorf("find food: %w", err)
	}
	return ErrInsufficientStock
}

// MongoOrderRepository implements OrderRepository over the orders collection.
type MongoOrderRepository struct {
	coll *mongo.Collection
}

// NewMongoOrderRepository creates an order repository bound to db.
func NewMongoOrderRepository(db *mongo.Database) *MongoOrderRepository {
	return &MongoOrderRepository{coll: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepository) Insert(ctx context.Context, order *models.Order) (primitive.ObjectID, error) {
	res, err := r.coll.InsertOne(ctx, order)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("insert order: %w", err)
	}
	return res.InsertedID.(primitive.ObjectID), nil
}

func (r *MongoOrderRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Order, error) {
	var order models.Order
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order: %w", err)
	}
	return &order, nil
}

func (r *MongoOrderRepository) ListByBuyer(ctx context.Context, buyerEmail string) ([]models.Order, error) {
	cursor, err := r.coll.Find(ctx, bson.M{"buyerEmail": buyerEmail})
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

func (r *MongoOrderRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrOrderNotFound
	}
	return nil
}
