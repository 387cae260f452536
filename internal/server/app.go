// Package server initializes and runs the REST API server: repositories,
// blob storage, services, the HTTP surface, and graceful shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/avolkov/fileshare/internal/cryptox"
	"github.com/avolkov/fileshare/internal/logging"
	"github.com/avolkov/fileshare/internal/server/config"
	"github.com/avolkov/fileshare/internal/server/repository"
	"github.com/avolkov/fileshare/internal/server/rest"
	"github.com/avolkov/fileshare/internal/server/service"
	"github.com/avolkov/fileshare/internal/server/storage"
)

// masterKeySalt is the fixed derivation context for the key-wrapping key.
// Changing it invalidates every stored wrapped key.
var masterKeySalt = []byte("fileshare-master-key-v1")

type App struct {
	config *config.Config
	logger logging.Logger
	router http.Handler

	closeRepos func() error
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewJSON(os.Stdout, slog.Level(cfg.LogLevel))

	repos, closeRepos, err := buildRepositories(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	blobs, err := buildBlobStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	masterKey := cryptox.DeriveMasterKey([]byte(cfg.SecretKey), masterKeySalt)

	userService := service.NewUserService(repos.Users(), cfg)
	fileService := service.NewFileService(repos, blobs, masterKey)
	shareService := service.NewShareService(repos)
	linkService := service.NewLinkService(repos, fileService)

	handler := rest.NewHandler(userService, fileService, shareService, linkService, cfg, logger)

	return &App{
		config:     cfg,
		logger:     logger,
		router:     handler.Routes(),
		closeRepos: closeRepos,
	}, nil
}

func buildRepositories(ctx context.Context, cfg *config.Config, logger logging.Logger) (repository.Manager, func() error, error) {
	if cfg.Database.DSN == "" {
		logger.Warn(ctx, "no database DSN configured, using in-memory repositories")
		return repository.NewMemoryManager(), func() error { return nil }, nil
	}

	pg, err := repository.NewPostgresManager(ctx, cfg.Database.DSN)
	if err != nil {
		return nil, nil, fmt.Errorf("db init error: %w", err)
	}
	return pg, pg.Close, nil
}

func buildBlobStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (storage.BlobStore, error) {
	if cfg.Storage.Endpoint == "" {
		logger.Warn(ctx, "no object storage endpoint configured, using in-memory blob store")
		return storage.NewMemoryStore(), nil
	}

	client, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		Secure: cfg.Storage.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client error: %w", err)
	}

	store, err := storage.NewMinioStore(ctx, client, cfg.Storage.Bucket)
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}
	return store, nil
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
func (app *App) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    app.config.HTTP.Addr,
		Handler: app.router,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	if err := app.closeRepos(); err != nil {
		app.logger.Error(ctx, "closing repositories", "error", err)
	}

	app.logger.Info(ctx, "shutdown complete")
	return nil
}
