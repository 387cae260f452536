package rest

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avolkov/fileshare/internal/common"
)

// Multipart uploads are buffered up to this size in memory.
const maxUploadMemory = 32 << 20

// handleListFiles (GET /api/files/) returns the caller's files plus files
// shared with them, newest first, as a bare JSON array.
func (h *Handler) handleListFiles(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	files, err := h.files.List(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to fetch files")
		return
	}

	out := make([]fileDTO, 0, len(files))
	for _, f := range files {
		out = append(out, h.toFileDTO(f))
	}
	h.respondJSON(w, http.StatusOK, out)
}

// handleUploadFile (POST /api/files/) accepts a multipart form with the
// ciphertext under "file", the base64 data key under "key", and name, size,
// and content_type fields.
func (h *Handler) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid multipart payload")
		return
	}

	name := r.FormValue("name")
	if name == "" {
		h.respondError(w, http.StatusBadRequest, "File name is required")
		return
	}
	// Names are later echoed in Content-Disposition headers; a name with a
	// directory part could steer a downloading client outside its working
	// directory.
	if name == "." || name == ".." || strings.ContainsAny(name, `/\`) {
		h.respondError(w, http.StatusBadRequest, "File name must not contain path separators")
		return
	}

	key, err := base64.StdEncoding.DecodeString(r.FormValue("key"))
	if err != nil || len(key) == 0 {
		h.respondError(w, http.StatusBadRequest, "A base64-encoded encryption key is required")
		return
	}

	size, err := strconv.ParseInt(r.FormValue("size"), 10, 64)
	if err != nil || size < 0 {
		h.respondError(w, http.StatusBadRequest, "A non-negative size is required")
		return
	}

	part, _, err := r.FormFile("file")
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "File content is required")
		return
	}
	defer part.Close()

	file, err := h.files.Upload(r.Context(), user, name, part, key, size, r.FormValue("content_type"))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to upload file")
		return
	}

	h.respondJSON(w, http.StatusCreated, h.toFileDTO(file))
}

// handleDownloadFile (GET /api/files/{id}/download/) streams the ciphertext
// and hands over the data key in a response header.
func (h *Handler) handleDownloadFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	file, content, key, err := h.files.Download(r.Context(), user, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to download file")
		return
	}

	w.Header().Set(common.EncryptionKeyHeader, base64.StdEncoding.EncodeToString(key))
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(content)
}

// handleDeleteFile (DELETE /api/files/{id}/)
func (h *Handler) handleDeleteFile(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	if err := h.files.Delete(r.Context(), user, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, r, err, "Failed to delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
