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

// FoodHandler handles food catalog HTTP requests
type FoodHandler struct {
	service *service.FoodService
	log     *slog.Logger
}

// NewFoodHandler creates a new food handler
func NewFoodHandler(service *service.FoodService, log *slog.Logger) *FoodHandler {
	return &FoodHandler{
		service: service,
		log:     log,
	}
}

// ListFoods handles GET /foods
// Optional ?email= filters by owner.
func (h *FoodHandler) ListFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.service.ListFoods(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.log.Error("failed to list foods", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, foods, h.log)
}

// GetFood handles GET /foods/{foodId}
func (h *FoodHandler) GetFood(w http.ResponseWriter, r *http.Request) {
	foodID := chi.URLParam(r, "foodId")

	food, err := h.service.GetFood(r.Context(), foodID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid food ID", h.log)
		case errors.Is(err, service.ErrFoodNotFound):
			WriteError(w, http.StatusNotFound, "Food not found", h.log)
		default:
			h.log.Error("failed to get food", "food_id", foodID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, food, h.log)
}

// CreateFood handles POST /foods
func (h *FoodHandler) CreateFood(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	var food models.FoodItem
	if err := json.NewDecoder(r.Body).Decode(&food); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	created, err := h.service.CreateFood(r.Context(), email, &food)
	if err != nil {
		if errors.Is(err, service.ErrInvalidFood) {
			WriteError(w, http.StatusBadRequest, "Food requires a name and non-negative price and quantity", h.log)
			return
		}
		h.log.Error("failed to create food", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	h.log.Info("food created", "food_id", created.ID.Hex(), "owner", email)
	WriteJSON(w, http.StatusCreated, created, h.log)
}

// UpdateFood handles PUT and PATCH /foods/{foodId}
// Partial update: only supplied fields change. Owner-only.
func (h *FoodHandler) UpdateFood(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	foodID := chi.URLParam(r, "foodId")

	var fields map[string]any
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body", h.log)
		return
	}

	updated, err := h.service.UpdateFood(r.Context(), email, foodID, fields)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid food ID", h.log)
		case errors.Is(err, service.ErrInvalidFood):
			WriteError(w, http.StatusBadRequest, "Invalid food payload", h.log)
		case errors.Is(err, service.ErrFoodNotFound):
			WriteError(w, http.StatusNotFound, "Food not found", h.log)
		case errors.Is(err, service.ErrForbidden):
			WriteError(w, http.StatusForbidden, "Only the owner may modify this food", h.log)
		default:
			h.log.Error("failed to update food", "food_id", foodID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, updated, h.log)
}

// DeleteFood handles DELETE /foods/{foodId}
// Owner-only.
func (h *FoodHandler) DeleteFood(w http.ResponseWriter, r *http.Request) {
	email, ok := auth.Identity(r.Context())
	if !ok {
		WriteError(w, http.StatusUnauthorized, "Unauthorized", h.log)
		return
	}

	foodID := chi.URLParam(r, "foodId")

	if err := h.service.DeleteFood(r.Context(), email, foodID); err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid food ID", h.log)
		case errors.Is(err, service.ErrFoodNotFound):
			WriteError(w, http.StatusNotFound, "Food not found", h.log)
		case errors.Is(err, service.ErrForbidden):
			WriteError(w, http.StatusForbidden, "Only the owner may delete this food", h.log)
		default:
			h.log.Error("failed to delete food", "food_id", foodID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	h.log.Info("food deleted", "food_id", foodID, "owner", email)
	WriteJSON(w, http.StatusOK, map[string]string{"message": "food deleted"}, h.log)
}

// stockRequest is the body for manual stock adjustments.
type stockRequest struct {
	Delta *int `json:"delta"`
}

// AdjustStock handles PATCH /foods/{foodId}/stock
// Positive delta restocks, negative delta corrects; stock never goes negative.
func (h *FoodHandler) AdjustStock(w http.ResponseWriter, r *http.Request) {
	foodID := chi.URLParam(r, "foodId")

	var req stockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Delta == nil {
		WriteError(w, http.StatusBadRequest, "Body must contain an integer delta", h.log)
		return
	}

	food, err := h.service.AdjustStock(r.Context(), foodID, *req.Delta)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidID):
			WriteError(w, http.StatusBadRequest, "Invalid food ID", h.log)
		case errors.Is(err, service.ErrInvalidDelta):
			WriteError(w, http.StatusBadRequest, "Delta must be a non-zero integer", h.log)
		case errors.Is(err, service.ErrFoodNotFound):
			WriteError(w, http.StatusNotFound, "Food not found", h.log)
		case errors.Is(err, service.ErrInsufficientStock):
			WriteError(w, http.StatusConflict, "Adjustment would make stock negative", h.log)
		default:
			h.log.Error("failed to adjust stock", "food_id", foodID, "error", err)
			WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		}
		return
	}

	WriteJSON(w, http.StatusOK, food, h.log)
}

// TopFoods handles GET /topFoods
func (h *FoodHandler) TopFoods(w http.ResponseWriter, r *http.Request) {
	foods, err := h.service.TopFoods(r.Context())
	if err != nil {
		h.log.Error("failed to query top foods", "error", err)
		WriteError(w, http.StatusInternalServerError, "Internal server error", h.log)
		return
	}

	WriteJSON(w, http.StatusOK, foods, h.log)
}
