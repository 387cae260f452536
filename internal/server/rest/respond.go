package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/fileshare/internal/common"
)

type errorBody struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any) {
	response, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error(context.Background(), "failed to serialize response", "error", err)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"Internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func (h *Handler) respondError(w http.ResponseWriter, code int, message string) {
	h.respondJSON(w, code, errorBody{Error: message})
}

func (h *Handler) respondErrorCode(w http.ResponseWriter, code int, message, errCode string) {
	h.respondJSON(w, code, errorBody{Error: message, Code: errCode})
}

// respondServiceError maps the service sentinels onto HTTP statuses, with
// fallback as the message for errors that carry no useful text of their own.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		h.respondError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, common.ErrorForbidden):
		h.respondError(w, http.StatusForbidden, "You do not have permission to perform this action")
	case errors.Is(err, common.ErrorAlreadyExists):
		h.respondError(w, http.StatusConflict, err.Error())
	case errors.Is(err, common.ErrorUnauthorized):
		h.respondError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, common.ErrLinkExpired):
		h.respondError(w, http.StatusForbidden, "This link has expired")
	default:
		h.logger.Error(r.Context(), fallback, "error", err)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
