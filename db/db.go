package db

import (
	"database/sql"
	"fmt"
	"go-todo-api/config"
	"go-todo-api/logger"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	cfg := config.AppConfig.Database

	connStr := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name, cfg.SSLMode)

	safeConnStr := fmt.Sprintf("host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Name, cfg.SSLMode)

	logger.Log.WithField("connection", safeConnStr).Info("Attempting to connect to the database")

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		logger.Log.WithError(err).Error("Failed to open database connection")
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
		db.SetMaxIdleConns(cfg.MaxOpenConns / 5)
	}

	if err = db.Ping(); err != nil {
		logger.Log.WithError(err).Error("Failed to ping database")
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Log.Info("Database connection established successfully")
	return db, nil
}
