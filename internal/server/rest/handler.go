// Package rest exposes the service over the JSON HTTP API the client
// consumes. Error responses use the {"error": "..."} envelope; invalid-token
// rejections additionally carry the token_not_valid code.
package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/avolkov/fileshare/internal/logging"
	"github.com/avolkov/fileshare/internal/server/config"
	"github.com/avolkov/fileshare/internal/server/service"
)

// Handler bundles the services behind the HTTP surface.
type Handler struct {
	users  *service.UserService
	files  *service.FileService
	shares *service.ShareService
	links  *service.LinkService

	validate  *validator.Validate
	jwtSecret []byte
	baseURL   string
	logger    logging.Logger
}

func NewHandler(
	users *service.UserService,
	files *service.FileService,
	shares *service.ShareService,
	links *service.LinkService,
	cfg *config.Config,
	logger logging.Logger,
) *Handler {
	return &Handler{
		users:     users,
		files:     files,
		shares:    shares,
		links:     links,
		validate:  validator.New(),
		jwtSecret: []byte(cfg.SecretKey),
		baseURL:   cfg.HTTP.BaseURL,
		logger:    logger,
	}
}

// Routes configures and returns the chi router.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Encryption-Key", "Content-Disposition"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.handleLogin)
		r.Post("/auth/register", h.handleRegister)
		r.Get("/links/{id}/download", h.handleResolveLink)

		r.Group(func(r chi.Router) {
			r.Use(h.authMiddleware)

			r.Get("/auth/validate", h.handleValidate)
			r.Post("/auth/otp", h.handleEnableOTP)

			r.Get("/files", h.handleListFiles)
			r.Post("/files", h.handleUploadFile)
			r.Get("/files/{id}/download", h.handleDownloadFile)
			r.Delete("/files/{id}", h.handleDeleteFile)

			r.Get("/shares", h.handleListShares)
			r.Post("/shares", h.handleCreateShare)
			r.Delete("/shares/{id}", h.handleDeleteShare)

			r.Get("/links", h.handleListLinks)
			r.Post("/links", h.handleCreateLink)
			r.Delete("/links/{id}", h.handleDeleteLink)
		})
	})

	return r
}
