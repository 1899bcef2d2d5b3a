package handler

import (
	"encoding/json"
	"net/http"

	"github.com/aDolgosheev/bank-card-management/internal/middleware"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

type createTransactionRequest struct {
	SourceCardID int64           `json:"source_card_id"`
	TargetCardID int64           `json:"target_card_id"`
	Amount       decimal.Decimal `json:"amount"`
}

// CreateTransaction executes a transfer between two of the principal's cards.
func (h *Handler) CreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.badRequest(w, "invalid request body")
		return
	}

	txn, err := h.txns.CreateTransaction(r.Context(), req.SourceCardID, req.TargetCardID, req.Amount,
		middleware.PrincipalEmail(r.Context()))
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, txn)
}

// ListTransactions returns all transfer records. Administrators only.
func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	limit, offset := pagination(r)
	txns, err := h.txns.GetAllTransactions(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txns)
}

// GetTransaction returns a transfer record by id if the principal may view it.
func (h *Handler) GetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid transaction id")
		return
	}

	if err := h.txns.ValidateTransactionAccess(r.Context(), middleware.PrincipalEmail(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}

	txn, err := h.txns.GetTransactionByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txn)
}

// GetCardTransactions returns a card's transfer history, covering transfers
// where the card was the source or the target.
func (h *Handler) GetCardTransactions(w http.ResponseWriter, r *http.Request) {
	cardID, err := pathID(mux.Vars(r), "cardId")
	if err != nil {
		h.badRequest(w, "invalid card id")
		return
	}

	if err := h.cards.ValidateCardAccess(r.Context(), middleware.PrincipalEmail(r.Context()), cardID); err != nil {
		h.respondError(w, err)
		return
	}

	limit, offset := pagination(r)
	txns, err := h.txns.GetCardTransactions(r.Context(), cardID, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txns)
}

// GetUserCardTransactions returns a card's transfer history scoped to its
// owner. Accessible to the user themselves or an administrator.
func (h *Handler) GetUserCardTransactions(w http.ResponseWriter, r *http.Request) {
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

	limit, offset := pagination(r)
	txns, err := h.txns.GetUserCardTransactions(r.Context(), userID, cardID, limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, txns)
}
