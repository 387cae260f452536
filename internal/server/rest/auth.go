package rest

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/avolkov/fileshare/internal/common"
)

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
	OTPCode  string `json:"otp_code"`
}

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=64"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// handleLogin (POST /api/auth/login/)
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Username and password are required")
		return
	}

	user, token, err := h.users.Login(r.Context(), req.Username, req.Password, req.OTPCode)
	if err != nil {
		if errors.Is(err, common.ErrSecondFactorRequired) {
			h.respondErrorCode(w, http.StatusUnauthorized,
				"One-time code required", common.OTPRequiredCode)
			return
		}
		h.respondServiceError(w, r, err, "Login failed")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{
		"user":  toUserDTO(user),
		"token": token,
	})
}

// handleRegister (POST /api/auth/register/)
func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid registration data: "+err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			h.respondError(w, http.StatusConflict, "A user with that username or email already exists")
			return
		}
		h.respondServiceError(w, r, err, "Registration failed")
		return
	}

	h.respondJSON(w, http.StatusCreated, map[string]any{
		"message": "Account created",
		"user":    toUserDTO(user),
	})
}

// handleValidate (GET /api/auth/validate/)
func (h *Handler) handleValidate(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]any{"user": toUserDTO(user)})
}

// handleEnableOTP (POST /api/auth/otp/)
func (h *Handler) handleEnableOTP(w http.ResponseWriter, r *http.Request) {
	user, ok := userFromContext(r.Context())
	if !ok {
		h.respondErrorCode(w, http.StatusUnauthorized, "Token is invalid or expired", common.TokenNotValidCode)
		return
	}

	secret, err := h.users.EnableOTP(r.Context(), user.ID)
	if err != nil {
		h.respondServiceError(w, r, err, "Failed to enable second factor")
		return
	}

	h.respondJSON(w, http.StatusOK, map[string]string{"secret": secret})
}
