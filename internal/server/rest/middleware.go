package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/avolkov/fileshare/internal/common"
	"github.com/avolkov/fileshare/internal/server/auth"
	"github.com/avolkov/fileshare/internal/server/models"
)

type contextKey string

const userContextKey = contextKey("user")

// authMiddleware validates the bearer token and loads its user into the
// request context. Rejections carry the token_not_valid code so the client
// can tear its session down.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" || !strings.HasPrefix(header, common.BearerPrefix) {
			h.respondErrorCode(w, http.StatusUnauthorized,
				"Authentication credentials were not provided", common.TokenNotValidCode)
			return
		}

		userID, err := auth.GetUserIDFromToken(strings.TrimPrefix(header, common.BearerPrefix), h.jwtSecret)
		if err != nil {
			h.respondErrorCode(w, http.StatusUnauthorized,
				"Token is invalid or expired", common.TokenNotValidCode)
			return
		}

		user, err := h.users.GetByID(r.Context(), userID)
		if err != nil {
			h.respondErrorCode(w, http.StatusUnauthorized,
				"Token is invalid or expired", common.TokenNotValidCode)
			return
		}

		ctx := context.WithValue(r.Context(), userContextKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// userFromContext returns the authenticated user placed by authMiddleware.
func userFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
