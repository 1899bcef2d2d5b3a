package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/aDolgosheev/bank-card-management/internal/middleware"
	"github.com/aDolgosheev/bank-card-management/internal/models"
	"github.com/aDolgosheev/bank-card-management/internal/repository"
	"github.com/aDolgosheev/bank-card-management/internal/service"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type createCardRequest struct {
	CardNumber     string          `json:"card_number"`
	CardholderName string          `json:"cardholder_name"`
	ExpirationDate string          `json:"expiration_date"` // YYYY-MM-DD
	InitialBalance decimal.Decimal `json:"initial_balance"`
	UserID         int64           `json:"user_id"`
}

type updateCardStatusRequest struct {
	Status models.CardStatus `json:"status"`
}

// CreateCard issues a new card. Administrators only.
func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	var req createCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}
	if req.CardNumber == "" || req.CardholderName == "" {
		h.badRequest(w, "card_number and cardholder_name are required")
		return
	}
	expiration, err := time.Parse("2006-01-02", req.ExpirationDate)
	if err != nil {
		h.badRequest(w, "expiration_date must be formatted as YYYY-MM-DD")
		return
	}

	card, err := h.cards.CreateCard(r.Context(), service.CreateCardParams{
		CardNumber:     req.CardNumber,
		CardholderName: req.CardholderName,
		ExpirationDate: expiration,
		InitialBalance: req.InitialBalance,
		UserID:         req.UserID,
	})
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, card)
}

// ListCards returns all cards. Administrators only.
func (h *Handler) ListCards(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	limit, offset := pagination(r)
	cards, err := h.cards.GetAllCards(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cards)
}

// FilterCards returns cards matching the query parameters. Non-administrators
// are always scoped to their own cards.
func (h *Handler) FilterCards(w http.ResponseWriter, r *http.Request) {
	principal, err := h.users.GetUserByEmail(r.Context(), middleware.PrincipalEmail(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}

	filter, err := cardFilterFromQuery(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if !principal.IsAdmin() {
		filter.UserID = &principal.ID
	}

	limit, offset := pagination(r)
	cards, err := h.cards.FilterCards(r.Context(), *filter, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cards)
}

// GetCard returns a card by id if the principal may view it.
func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid card id")
		return
	}

	if err := h.cards.ValidateCardAccess(r.Context(), middleware.PrincipalEmail(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}

	card, err := h.cards.GetCardByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, card)
}

// UpdateCardStatus changes a card's status. Administrators only.
func (h *Handler) UpdateCardStatus(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid card id")
		return
	}

	var req updateCardStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	card, err := h.cards.UpdateCardStatus(r.Context(), id, req.Status)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, card)
}

// DeleteCard removes a card. Administrators only.
func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid card id")
		return
	}

	if err := h.cards.DeleteCard(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}

// GetUserCards returns all cards owned by a user. Accessible to the user
// themselves or an administrator.
func (h *Handler) GetUserCards(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(mux.Vars(r), "userId")
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}

	if err := h.users.ValidateUserAccess(r.Context(), middleware.PrincipalEmail(r.Context()), userID); err != nil {
		h.respondError(w, err)
		return
	}

	cards, err := h.cards.GetUserCards(r.Context(), userID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cards)
}

// RequestCardBlock blocks a card at its owner's request.
func (h *Handler) RequestCardBlock(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	userID, err := pathID(vars, "userId")
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}
	cardID, err := pathID(vars, "cardId")
	if err != nil {
		h.badRequest(w, "invalid card id")
		return
	}

	if err := h.users.ValidateUserAccess(r.Context(), middleware.PrincipalEmail(r.Context()), userID); err != nil {
		h.respondError(w, err)
		return
	}

	if err := h.cards.RequestCardBlock(r.Context(), userID, cardID); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, map[string]string{"message": "card blocked"})
}

func cardFilterFromQuery(r *http.Request) (*repository.CardFilter, error) {
	filter := &repository.CardFilter{}
	q := r.URL.Query()

	if v := q.Get("status"); v != "" {
		status := models.CardStatus(v)
		if !status.Valid() {
			return nil, errInvalidFilter("status")
		}
		filter.Status = &status
	}
	if v := q.Get("min_balance"); v != "" {
		min, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errInvalidFilter("min_balance")
		}
		filter.MinBalance = &min
	}
	if v := q.Get("max_balance"); v != "" {
		max, err := decimal.NewFromString(v)
		if err != nil {
			return nil, errInvalidFilter("max_balance")
		}
		filter.MaxBalance = &max
	}
	if v := q.Get("cardholder_name"); v != "" {
		filter.CardholderName = &v
	}
	if v := q.Get("user_id"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errInvalidFilter("user_id")
		}
		filter.UserID = &userID
	}
	return filter, nil
}

type errInvalidFilter string

func (e errInvalidFilter) Error() string { return "invalid filter parameter: " + string(e) }
