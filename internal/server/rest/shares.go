package rest

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/fileshare/internal/common"
)

type createShareRequest struct {
	FileID             string `json:"file_id" validate:"required"`
	SharedWithUsername string `json:"shared_with_username" validate:"required"`
	Permission         string `json:"permission" validate:"required,oneof=view download"`
}

// handleCreateShare (POST /api/shares/)
func (h *Handler) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	var req createShareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "file_id, shared_with_username and a valid permission are required")
		return
	}

	info, err := h.shares.Create(r.Context(), user, req.FileID, req.SharedWithUsername, req.Permission)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to share file")
		return
	}

	h.respondJSON(w, http.StatusCreated, h.toShareDTO(info))
}

// handleListShares (GET /api/shares/) returns the shares granted to the
// caller as a bare JSON array.
func (h *Handler) handleListShares(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	received, err := h.shares.ListReceived(r.Context(), user)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch shared files")
		return
	}

	out := make([]shareDTO, 0, len(received))
	for _, info := range received {
		out = append(out, h.toShareDTO(info))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleDeleteShare (DELETE /api/shares/{id}/)
func (h *Handler) handleDeleteShare(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	if err := h.shares.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "Failed to revoke share")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
