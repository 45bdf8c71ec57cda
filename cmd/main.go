package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/riftops/clash-coordinator/config"
	"github.com/riftops/clash-coordinator/db"
	"github.com/riftops/clash-coordinator/handlers"
	"github.com/riftops/clash-coordinator/notify"
	"github.com/riftops/clash-coordinator/repositories"
	api "github.com/riftops/clash-coordinator/routes"
	"github.com/riftops/clash-coordinator/services"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("configuration loaded", slog.Int("port", cfg.ServerPort))

	dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
	if err != nil {
		logger.Error("failed to connect to database", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := dbConn.Close(); err != nil {
			logger.Error("failed to close database connection", slog.Any("error", err))
		}
	}()
	logger.Info("database connection established")

	hub := notify.NewHub(logger)
	publisher := notify.NewHubPublisher(hub)

	teamRepo := repositories.NewPostgresTeamRepository(dbConn)
	tentativeRepo := repositories.NewPostgresTentativeRepository(dbConn)
	assignmentRepo := repositories.NewPostgresAssignmentRepository(dbConn)
	tournamentRepo := repositories.NewPostgresTournamentRepository(dbConn)
	playerRepo := repositories.NewPostgresPlayerRepository(dbConn)
	logger.Info("repositories initialized")

	tournamentService := services.NewTournamentService(tournamentRepo, logger)
	rosterService := services.NewRosterService(
		teamRepo,
		tentativeRepo,
		assignmentRepo,
		playerRepo,
		tournamentService,
		publisher,
		logger,
	)
	logger.Info("services initialized")

	rosterHandler := handlers.NewRosterHandler(rosterService)
	tournamentHandler := handlers.NewTournamentHandler(tournamentService)
	webSocketHandler := handlers.NewWebSocketHandler(hub, logger)

	router := chi.NewRouter()
	api.SetupRoutes(
		router,
		rosterHandler,
		tournamentHandler,
		webSocketHandler,
		[]byte(cfg.JWTSecretKey),
		cfg.CORSAllowedOrigins,
	)
	logger.Info("routes configured")

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		hub.Run(ctx)
		return nil
	})

	g.Go(func() error {
		ticker := time.NewTicker(cfg.CleanupInterval)
		defer ticker.Stop()
		logger.Info("tournament cleanup scheduler started", slog.Duration("interval", cfg.CleanupInterval))

		if _, err := tournamentService.CleanupEnded(ctx); err != nil {
			logger.Error("scheduler: initial cleanup failed", slog.Any("error", err))
		}
		for {
			select {
			case <-ticker.C:
				if _, err := tournamentService.CleanupEnded(ctx); err != nil {
					logger.Error("scheduler: periodic cleanup failed", slog.Any("error", err))
				}
			case <-ctx.Done():
				return nil
			}
		}
	})

	g.Go(func() error {
		logger.Info("starting server", slog.String("address", server.Addr))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			return server.Close()
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("server error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("application exited")
}
