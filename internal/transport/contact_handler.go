package transport

import (
	"net/http"
	"strconv"

	"carmine/internal/middleware"
	"carmine/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ContactRequest is a message for the support inbox
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=255"`
	Subject string `json:"subject" validate:"required,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactHandler handles support inbox requests
type ContactHandler struct {
	contacts service.ContactService
	logger   *zap.Logger
}

func NewContactHandler(contacts service.ContactService, logger *zap.Logger) *ContactHandler {
	return &ContactHandler{
		contacts: contacts,
		logger:   logger,
	}
}

// RegisterRoutes registers the public contact form and the admin inbox
func (h *ContactHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Post("/api/contact", h.Submit)

	r.Route("/api/admin", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Use(middleware.RequireAdmin(h.logger))
		r.Get("/contact-messages", h.List)
	})
}

// Submit stores a contact message
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, validationErrors)
			return
		}
		middleware.RespondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	msg, err := h.contacts.Submit(r.Context(), req.Name, req.Email, req.Subject, req.Message)
	if err != nil {
		h.logger.Error("Failed to save contact message", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to send message")
		return
	}

	h.logger.Info("Contact message received", zap.String("message_id", msg.ID.String()))
	middleware.RespondWithJSON(w, http.StatusCreated, msg)
}

// List returns one page of the inbox, newest first
func (h *ContactHandler) List(w http.ResponseWriter, r *http.Request) {
	page, err := queryInt(r, "page", 1)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "page must be a number")
		return
	}
	pageSize, err := queryInt(r, "page_size", service.DefaultPageSize)
	if err != nil {
		middleware.RespondWithError(w, http.StatusBadRequest, "page_size must be a number")
		return
	}

	result, err := h.contacts.List(r.Context(), page, pageSize)
	if err != nil {
		h.logger.Error("Failed to list contact messages", zap.Error(err))
		middleware.RespondWithError(w, http.StatusInternalServerError, "failed to list messages")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, result)
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}
