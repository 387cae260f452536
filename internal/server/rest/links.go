package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/fileshare/internal/common"
)

type createLinkRequest struct {
	FileID     string    `json:"file_id" validate:"required"`
	ExpiresAt  time.Time `json:"expires_at" validate:"required"`
	Permission string    `json:"permission" validate:"required,oneof=view download"`
	MaxAccess  int       `json:"max_access" validate:"gte=0"`
}

// handleCreateLink (POST /api/links/)
func (h *Handler) handleCreateLink(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	var req createLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "file_id, expires_at and a valid permission are required")
		return
	}

	link, err := h.links.Create(r.Context(), user, req.FileID, req.ExpiresAt, req.Permission, req.MaxAccess)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to create shareable link")
		return
	}

	h.respondJSON(w, http.StatusCreated, h.toLinkDTO(link))
}

// handleListLinks (GET /api/links/) returns the caller's links as a bare
// JSON array.
func (h *Handler) handleListLinks(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	links, err := h.links.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch links")
		return
	}

	out := make([]linkDTO, 0, len(links))
	for _, l := range links {
		out = append(out, h.toLinkDTO(l))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleDeleteLink (DELETE /api/links/{id}/)
func (h *Handler) handleDeleteLink(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	if err := h.links.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete link")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleResolveLink (GET /api/links/{id}/download/) is the only
// unauthenticated file path: the server decrypts the content itself and
// serves the plaintext as an attachment.
func (h *Handler) handleResolveLink(w http.ResponseWriter, r *http.Request) {
	file, plaintext, err := h.links.Resolve(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to resolve link")
		return
	}

	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(plaintext)
}
