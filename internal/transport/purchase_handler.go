package transport

import (
	"net/http"

	"carmine/internal/domain"
	"carmine/internal/middleware"
	"carmine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PurchasesResponse is a buyer's purchase history, newest first.
type PurchasesResponse struct {
	Purchases []domain.PurchaseRecord `json:"purchases"`
	Count     int                     `json:"count"`
}

// PurchaseHandler serves the purchase history of the authenticated user
type PurchaseHandler struct {
	purchases service.PurchaseService
	logger    *zap.Logger
}

func NewPurchaseHandler(purchases service.PurchaseService, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		purchases: purchases,
		logger:    logger,
	}
}

func (h *PurchaseHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.With(authMiddleware).Get("/api/purchases", h.List)
}

// List returns the caller's purchases
func (h *PurchaseHandler) List(w http.ResponseWriter, r *http.Request) {
	userIDStr, ok := middleware.GetUserID(r.Context())
	if !ok {
		middleware.RespondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid user ID")
		return
	}

	records, err := h.purchases.ListForUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("Failed to list purchases", zap.Error(err), zap.String("user_id", userIDStr))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list purchases")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, PurchasesResponse{
		Purchases: records,
		Count:     len(records),
	})
}
