package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/dfryer1193/imagevault/internal/middleware"
	"github.com/dfryer1193/imagevault/internal/rest"
	"github.com/dfryer1193/imagevault/shared/config"
	"github.com/dfryer1193/imagevault/shared/db/sqlite"
	"github.com/dfryer1193/imagevault/vault/application"
	"github.com/dfryer1193/imagevault/vault/persistence"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

func main() {
	cfg := config.Load()

	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(level)
	}

	database := sqlite.NewSQLiteDB(cfg.SQLite)
	if err := database.Connect(); err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	vaultRepo := persistence.NewVaultRepository(database.DB())

	// No learned transform is wired in; renditions fall back to plain resize.
	vaultService := application.NewVaultService(vaultRepo, nil)

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger())
	router.Use(gin.CustomRecovery(middleware.HandlePanics()))

	handler := rest.NewVaultHandler(vaultService, database)
	rest.NewApi(router, handler)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	go func() {
		log.Info().Int("port", cfg.Port).Msg("Starting vault server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt)
	<-quit

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to shutdown server")
	}

	log.Info().Msg("Server stopped")
}
