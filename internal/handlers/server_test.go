package handlers

import (
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"

	"github.com/tastetrail/restaurant-backend/internal/auth"
	"github.com/tastetrail/restaurant-backend/internal/middleware"
	"github.com/tastetrail/restaurant-backend/internal/repository"
	"github.com/tastetrail/restaurant-backend/internal/service"
	"github.com/tastetrail/restaurant-backend/pkg/logger"
)

const testSecret = "test-secret"

// newTestServer wires the full route table over in-memory repositories,
// mirroring the wiring in cmd/server.
func newTestServer(t *testing.T) (*chi.Mux, *repository.MemoryFoodRepository, *repository.MemoryOrderRepository) {
	t.Helper()

	log := logger.New("error")
	foods := repository.NewMemoryFoodRepository()
	orders := repository.NewMemoryOrderRepository()

	foodService := service.NewFoodService(foods)
	orderService := service.NewOrderService(foods, orders, log)

	foodHandler := NewFoodHandler(foodService, log)
	orderHandler := NewOrderHandler(orderService, log)

	verifier := auth.NewJWTVerifier(testSecret)

	r := chi.NewRouter()
	r.Get("/foods", foodHandler.ListFoods)
	r.Get("/foods/{foodId}", foodHandler.GetFood)
	r.Get("/topFoods", foodHandler.TopFoods)

	r.Group(func(r chi.Router) {
		r.Use(middleware.BearerAuth(verifier))

		r.Post("/foods", foodHandler.CreateFood)
		r.Put("/foods/{foodId}", foodHandler.UpdateFood)
		r.Patch("/foods/{foodId}", foodHandler.UpdateFood)
		r.Delete("/foods/{foodId}", foodHandler.DeleteFood)
		r.Patch("/foods/{foodId}/stock", foodHandler.AdjustStock)

		r.Get("/orders", orderHandler.ListOrders)
		r.Post("/orders", orderHandler.CreateOrder)
		r.Delete("/orders/{orderId}", orderHandler.DeleteOrder)
	})

	return r, foods, orders
}

// signToken issues a bearer token for the given identity.
func signToken(t *testing.T, email string) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"email": email})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}
