package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/tendant/simple-signup/internal/config"
	"github.com/tendant/simple-signup/internal/notification"
	"github.com/tendant/simple-signup/pkg/auth"
	"github.com/tendant/simple-signup/pkg/repository"
	"github.com/tendant/simple-signup/signupsvc"
)

func main() {
	// Load .env file if present (ignore error if not found)
	_ = godotenv.Load()

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Connect to database
	var db *sql.DB
	if !cfg.InMemory {
		db, err = repository.NewDB(repository.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			DBName:   cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		})
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		logger.Info("connected to database")
	}

	// Shared code store
	var redisClient redis.UniversalClient
	if cfg.HasRedis() {
		redisClient = repository.NewRedisClient(repository.RedisConfig{
			Addrs:    cfg.RedisAddrs,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Cluster:  cfg.RedisCluster,
		})
		defer redisClient.Close()
		logger.Info("redis code store enabled", "addrs", cfg.RedisAddrs)
	}

	reserved := auth.DefaultReservedNames()
	if cfg.ReservedNamesFile != "" {
		reserved, err = auth.LoadReservedNames(cfg.ReservedNamesFile)
		if err != nil {
			logger.Error("failed to load reserved names", "error", err)
			os.Exit(1)
		}
	}

	smsClient := notification.NewSMSClient(notification.SMSConfig{
		APIURL: cfg.SMS.APIURL,
		APIKey: cfg.SMS.APIKey,
		Sender: cfg.SMS.Sender,
		DryRun: cfg.SMS.DryRun,
	}, logger)

	// Initialize email service if configured
	var welcome auth.WelcomeNotifier
	if cfg.HasSMTP() {
		welcome = notification.NewEmailService(notification.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			User:     cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
			FromName: cfg.SMTPFromName,
		})
		logger.Info("email service enabled")
	}

	svc, err := signupsvc.New(signupsvc.Config{
		DB:              db,
		Redis:           redisClient,
		TicketSecret:    cfg.TicketSecret,
		TicketIssuer:    cfg.TicketIssuer,
		TicketTTL:       cfg.TicketTTL,
		SMS:             smsClient,
		Welcome:         welcome,
		Reserved:        reserved,
		OTP:             cfg.OTP,
		PasswordPolicy:  cfg.PasswordPolicy,
		RateLimit:       cfg.RateLimit,
		SecurityHeaders: cfg.SecurityHeaders,
		Validation:      cfg.Validation,
		Logger:          logger,
	})
	if err != nil {
		logger.Error("failed to initialize signup service", "error", err)
		os.Exit(1)
	}

	// Create HTTP server
	addr := fmt.Sprintf("%s:%d", cfg.ServerAddr, cfg.ServerPort)
	server := &http.Server{
		Addr:         addr,
		Handler:      svc.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("starting server", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
