package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/aDolgosheev/bank-card-management/internal/service"
	"github.com/aDolgosheev/bank-card-management/internal/utils"
	"github.com/sirupsen/logrus"
)

// Handler serves the HTTP API on top of the card, transaction, user and auth
// services.
type Handler struct {
	auth  *service.AuthService
	users *service.UserService
	cards *service.CardService
	txns  *service.TransactionService
	log   *logrus.Logger
}

// NewHandler initializes a new handler
func NewHandler(auth *service.AuthService, users *service.UserService, cards *service.CardService, txns *service.TransactionService, log *logrus.Logger) *Handler {
	return &Handler{auth: auth, users: users, cards: cards, txns: txns, log: log}
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			h.log.Errorf("Failed to encode response: %v", err)
		}
	}
}

type errorResponse struct {
	Error string `json:"error"`
}

// respondError maps an error to the HTTP status for its kind.
func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrDuplicateCard), errors.Is(err, repository.ErrDuplicateEmail):
		status = http.StatusConflict
	case errors.Is(err, service.ErrAccessDenied):
		status = http.StatusForbidden
	case errors.Is(err, service.ErrInvalidState):
		status = http.StatusBadRequest
	case errors.Is(err, service.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, utils.ErrCipher):
		status = http.StatusInternalServerError
	}

	if status == http.StatusInternalServerError {
		h.log.Errorf("Internal error: %v", err)
		h.respondJSON(w, status, errorResponse{Error: "internal server error"})
		return
	}
	h.respondJSON(w, status, errorResponse{Error: err.Error()})
}

func (h *Handler) badRequest(w http.ResponseWriter, message string) {
	h.respondJSON(w, http.StatusBadRequest, errorResponse{Error: message})
}

// pagination extracts limit/offset query parameters with defaults.
func pagination(r *http.Request) (limit, offset int) {
	limit, offset = 20, 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

func pathID(vars map[string]string, name string) (int64, error) {
	return strconv.ParseInt(vars[name], 10, 64)
}
