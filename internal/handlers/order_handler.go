package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tastetrail/restaurant-backend/internal/auth"
	"github.com/tastetrail/restaurant-backend/internal/models"
	"github.com/tastetrail/restaurant-backend/internal/service"
)

// OrderHandler handles order ledger HTTP requests
type OrderHandler struct {
	service *service.OrderService
	log     *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(service *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service: service,
		log:     log,
	}
}

// CreateOrder handles POST /orders
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	var req models.OrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	order, err := h.service.PlaceOrder(r.Context(), email, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid food ID", h.log)
		case errors.Is(err, service.ErrInvalidQuantity):
			WriteError(w, http.StatusBadRequest, "Quantity must be positive", h.log)
		case errors.Is(err, service.ErrFoodNotFound):
			WriteError(w, http.StatusNotFound, "Food not found", h.log)
		case errors.Is(err, service.ErrInsufficientStock):
			WriteError(w, http.StatusConflict, "Not enough stock to fulfil the order", h.log)
		default:
			h.log.Error("failed to place order", "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	h.log.Info("order placed", "order_id", order.ID.Hex(), "food_id", order.FoodID.Hex(),
		"quantity", order.Quantity, "buyer", email)
	WriteJSON(w, http.StatusCreated, order, h.log)
}

// ListOrders handles GET /orders
// Callers may only list their own orders; ?email= must match the identity.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	orders, err := h.service.ListOrders(r.Context(), email, r.URL.Query().Get("email"))
	if err != nil {
		if errors.Is(err, service.ErrForbidden) {
			WriteError(w, http.StatusForbidden, "You may only list your own orders", h.log)
			return
		}
		h.log.Error("failed to list orders", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, orders, h.log)
}

// DeleteOrder handles DELETE /orders/{orderId}
// Buyer-only; restores the food's stock when the food still exists.
func (h *OrderHandler) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	orderID := chi.URLParam(r, "orderId")

	if err := h.service.CancelOrder(r.Context(), email, orderID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid order ID", h.log)
		case errors.Is(err, service.ErrOrderNotFound):
			WriteError(w, http.StatusNotFound, "Order not found", h.log)
		case errors.Is(err, service.ErrForbidden):
			WriteError(w, http.StatusForbidden, "Only the buyer may cancel this order", h.log)
		default:
			h.log.Error("failed to cancel order", "order_id", orderID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	h.log.Info("order cancelled", "order_id", orderID, "buyer", email)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "order deleted"}, h.log)
}
