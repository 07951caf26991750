// File: app/app.go
package app

import (
	"context"
	"database/sql"
	"fmt"
	"go-todo-api/config"
	"go-todo-api/db"
	_ "go-todo-api/docs"
	"go-todo-api/handler"
	"go-todo-api/logger"
	"go-todo-api/repository"
	"go-todo-api/router"
	"go-todo-api/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
)

// App holds the wired layers of the service.
type App struct {
	DB     *sql.DB
	Router http.Handler
	Ledger *service.RevocationLedger
}

// NewApp wires repositories, services, handlers and the router on top of an
// open database. cache may be nil.
func NewApp(cfg config.Config, database *sql.DB, cache service.ICacheClient) (*App, error) {
	tokens, err := service.NewTokenIssuer(cfg.JWT.Format, cfg.JWT.SecretKey, cfg.JWT.TTL)
	if err != nil {
		return nil, fmt.Errorf("token issuer: %w", err)
	}

	// Credential store
	userRepo := repository.NewUserRepository()
	credentials := service.NewCredentialService(database, userRepo, cfg.Auth.BcryptCost)

	// Revocation ledger
	revokedRepo := repository.NewRevokedTokenRepository()
	ledger := service.NewRevocationLedger(database, revokedRepo, cache)

	// Todos
	todoRepo := repository.NewTodoRepository()
	todos := service.NewTodoService(db.NewBunDB(database), todoRepo)

	guard := handler.NewAccessGuard(tokens, ledger)
	userHandler := handler.NewUserHandler(credentials, tokens, ledger, cfg.Auth.LegacyNotFoundStatus)
	todoHandler := handler.NewTodoHandler(todos)

	r := router.NewRouter(router.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Swagger:        cfg.Server.Swagger,
	}, guard, userHandler, todoHandler)

	return &App{DB: database, Router: r, Ledger: ledger}, nil
}

func Run() {
	config.LoadConfig(".")
	cfg := config.AppConfig
	logger.Init(cfg.Log.Level)
	logger.Log.Info("Configuration loaded successfully")

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error running migrations: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var cache service.ICacheClient
	if cfg.Redis.Enabled {
		client, err := db.ConnectRedis(ctx)
		if err != nil {
			logger.Log.WithError(err).Warn("Redis unavailable, revocation checks will use the database only")
		} else {
			defer client.Close()
			cache = client
		}
	}

	application, err := NewApp(cfg, database, cache)
	if err != nil {
		logger.Log.Fatalf("Error wiring application: %v", err)
	}

	go application.Ledger.RunPruner(ctx, cfg.Ledger.PruneInterval)

	// --- Start the Server with Graceful Shutdown ---
	port := cfg.Server.Port
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      application.Router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
