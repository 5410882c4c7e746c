package transport

import (
	"errors"
	"net/http"

	"carmine/internal/domain"
	"carmine/internal/middleware"
	"carmine/internal/payment"
	"carmine/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CheckoutRequest is the payment form submitted for a car.
type CheckoutRequest struct {
	UserID         string            `json:"userId" validate:"omitempty,uuid"`
	CardNumber     string            `json:"cardNumber" validate:"required,cardnumber"`
	ExpirationDate string            `json:"expirationDate" validate:"required,cardexpiry"`
	CVV            string            `json:"cvv" validate:"required,cvv"`
	CarDetails     domain.CarDetails `json:"carDetails" validate:"required"`
}

// CheckoutResponse wraps a committed purchase.
type CheckoutResponse struct {
	Success bool                    `json:"success"`
	Data    *service.CheckoutResult `json:"data"`
}

// CheckoutHandler handles car purchases
type CheckoutHandler struct {
	checkout service.CheckoutService
	logger   *zap.Logger
}

// NewCheckoutHandler creates a new CheckoutHandler
func NewCheckoutHandler(checkout service.CheckoutService, logger *zap.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		logger:   logger,
	}
}

// RegisterRoutes registers the checkout route. A bearer token is optional;
// when present it decides the buyer.
func (h *CheckoutHandler) RegisterRoutes(r chi.Router, optionalAuthMiddleware func(http.Handler) http.Handler) {
	r.With(optionalAuthMiddleware).Post("/api/checkout", h.Checkout)
}

// Checkout validates the payment form, charges it and records the purchase
func (h *CheckoutHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if middleware.IsValidationError(err) {
			respondWithInvalidPayment(w, middleware.FormatValidationErrors(err))
			return
		}
		middleware.RespondWithFailure(w, http.StatusBadRequest, "invalid request body", nil)
		return
	}

	if problem := domain.PriceProblem(req.CarDetails.Price); problem != "" {
		respondWithInvalidPayment(w, []middleware.ValidationError{
			{Field: "price", Message: problem},
		})
		return
	}

	userID, status, msg := resolveBuyer(r, req.UserID)
	if status != 0 {
		middleware.RespondWithFailure(w, status, msg, nil)
		return
	}

	result, err := h.checkout.Checkout(r.Context(), service.CheckoutRequest{
		UserID: userID,
		Card: payment.Card{
			Number:         req.CardNumber,
			ExpirationDate: req.ExpirationDate,
			CVV:            req.CVV,
		},
		Car: req.CarDetails,
	})
	if err != nil {
		h.respondWithCheckoutError(w, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, CheckoutResponse{Success: true, Data: result})
}

func (h *CheckoutHandler) respondWithCheckoutError(w http.ResponseWriter, err error) {
	var cardErr *payment.ValidationError
	switch {
	case errors.As(err, &cardErr):
		fields := make([]middleware.ValidationError, len(cardErr.Fields))
		for i, f := range cardErr.Fields {
			fields[i] = middleware.ValidationError{Field: f.Field, Message: f.Message}
		}
		respondWithInvalidPayment(w, fields)
	case errors.Is(err, service.ErrPaymentDeclined):
		middleware.RespondWithFailure(w, http.StatusPaymentRequired, "payment declined", nil)
	default:
		// Gateway and persistence failures look the same to the buyer
		h.logger.Error("Checkout failed", zap.Error(err))
		middleware.RespondWithFailure(w, http.StatusInternalServerError, "payment failed", nil)
	}
}

func respondWithInvalidPayment(w http.ResponseWriter, fields []middleware.ValidationError) {
	middleware.RespondWithFailure(w, http.StatusBadRequest, "invalid payment details", map[string]interface{}{
		"validation_errors": fields,
	})
}

// resolveBuyer picks the buyer from the bearer token, falling back to the
// userId in the body. A non-zero status means the request must be rejected.
func resolveBuyer(r *http.Request, bodyUserID string) (uuid.UUID, int, string) {
	tokenUserID, authenticated := middleware.GetUserID(r.Context())

	switch {
	case authenticated && bodyUserID != "" && bodyUserID != tokenUserID:
		return uuid.Nil, http.StatusForbidden, "cannot purchase on behalf of another user"
	case authenticated:
		id, err := uuid.Parse(tokenUserID)
		if err != nil {
			return uuid.Nil, http.StatusUnauthorized, "invalid token"
		}
		return id, 0, ""
	case bodyUserID == "":
		return uuid.Nil, http.StatusBadRequest, "userId is required"
	default:
		// Already checked by the uuid tag
		return uuid.MustParse(bodyUserID), 0, ""
	}
}
