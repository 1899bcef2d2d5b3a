package handler

import (
	"net/http"

	"github.com/aDolgosheev/bank-card-management/internal/middleware"
	"github.com/gorilla/mux"
)

// ListUsers returns all users. Administrators only.
func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	limit, offset := pagination(r)
	users, err := h.users.GetAllUsers(r.Context(), limit, offset)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, users)
}

// GetUser returns a user by id. Accessible to the user themselves or an
// administrator.
func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}

	if err := h.users.ValidateUserAccess(r.Context(), middleware.PrincipalEmail(r.Context()), id); err != nil {
		h.respondError(w, err)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, user)
}

// DeleteUser removes a user. Administrators only.
func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.users.EnsureAdmin(r.Context(), middleware.PrincipalEmail(r.Context())); err != nil {
		h.respondError(w, err)
		return
	}

	id, err := pathID(mux.Vars(r), "id")
	if err != nil {
		h.badRequest(w, "invalid user id")
		return
	}

	if err := h.users.DeleteUser(r.Context(), id); err != nil {
		h.respondError(w, err)
		return
	}
	h.respondJSON(w, http.StatusNoContent, nil)
}
