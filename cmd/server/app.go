package main

import (
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/phrazzld/roster-api/internal/api"
	"github.com/phrazzld/roster-api/internal/config"
	"github.com/phrazzld/roster-api/internal/platform/postgres"
	"github.com/phrazzld/roster-api/internal/service/auth"
	"github.com/phrazzld/roster-api/internal/store"
)

// application holds the wired dependencies of the running server.
// Everything is constructed once at startup and passed by reference; no
// component reaches for ambient global state.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	userStore   store.UserStore
	jwtService  auth.JWTService
	hasher      *auth.BcryptHasher
	authHandler *api.AuthHandler
	userHandler *api.UserHandler
}

// newApplication wires services and handlers from the loaded configuration
// and an open database connection.
func newApplication(cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to create JWT service: %w", err)
	}

	hasher := auth.NewBcryptHasher(0) // 0 selects bcrypt.DefaultCost
	userStore := postgres.NewPostgresUserStore(db, hasher, logger)

	userHandler, err := api.NewUserHandler(userStore)
	if err != nil {
		return nil, fmt.Errorf("failed to create user handler: %w", err)
	}

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		userStore:   userStore,
		jwtService:  jwtService,
		hasher:      hasher,
		authHandler: api.NewAuthHandler(userStore, jwtService, hasher),
		userHandler: userHandler,
	}, nil
}

// cleanup releases resources held by the application.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("failed to close database connection", "error", err)
		}
	}
}
