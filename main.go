package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/isdelr/taskapi/internal/api"
	"github.com/isdelr/taskapi/internal/auth"
	"github.com/isdelr/taskapi/internal/config"
	"github.com/isdelr/taskapi/internal/database"
	"github.com/isdelr/taskapi/internal/logger"
	"github.com/isdelr/taskapi/internal/repositories/repomanager"
	"github.com/isdelr/taskapi/internal/services"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Init("info", false)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logger.Init(cfg.LogLevel, cfg.IsProduction())

	dialect, err := database.ParseDialect(cfg.DatabaseDriver)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid database driver")
	}

	// Set up database
	ctx := context.Background()
	db, err := database.New(ctx, dialect, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Str("driver", string(dialect)).Msg("Failed to initialize database")
	}
	defer db.Close()

	repos := repomanager.NewSQLRepositoryManager(dialect)
	if err := repos.RunMigrations(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("Failed to apply database migrations")
	}

	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(cfg.SecretKey),
		Algorithm: cfg.JWTAlgorithm,
		TTL:       cfg.AccessTokenTTL,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize token service")
	}

	// Set up services
	userService := services.NewUserService(db, repos, auth.NewPasswordHasher(cfg.BcryptCost), tokens)
	eventService := services.NewEventService(db, repos)
	taskService := services.NewTaskService(db, repos, eventService)

	// Set up router
	router := api.NewRouter(api.Dependencies{
		AllowedOrigins: cfg.AllowedOrigins,
		Guard:          auth.NewGuard(tokens, userService),
		DB:             db,
		Users:          userService,
		Tasks:          taskService,
		Events:         eventService,
	})

	// Set up server
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info().Int("port", cfg.ServerPort).Str("driver", string(dialect)).Msg("Server starting")
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}
