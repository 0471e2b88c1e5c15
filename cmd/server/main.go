// Package main provides the API server entry point for the tier badge service.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/tier-badge/internal/api"
	"github.com/tier-badge/internal/audit"
	"github.com/tier-badge/internal/config"
	"github.com/tier-badge/internal/logging"
	"github.com/tier-badge/internal/service"
	"github.com/tier-badge/internal/storage"
	"github.com/tier-badge/internal/zkproof"
)

func main() {
	fmt.Println("Tier Badge API Server")
	log.Println("Server starting...")

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize structured logging
	logLevel := logging.ParseLogLevel(cfg.Logging.Level)
	logFormat := logging.ParseLogFormat(cfg.Logging.Format)
	logging.InitGlobalLogger(logLevel, logFormat)

	logger := logging.GetGlobalLogger()
	logger.WithFields(map[string]interface{}{
		"level":  cfg.Logging.Level,
		"format": cfg.Logging.Format,
	}).Info("Structured logging initialized")

	// Load the verifying key before touching any backend: a bad key file
	// means nothing else matters.
	verifier, err := zkproof.NewGroth16Verifier(cfg.Verifier.VerifyingKeyPath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to load verifying key")
	}
	logger.WithField("path", cfg.Verifier.VerifyingKeyPath).Info("Verifying key loaded")

	// Initialize database connections
	logger.Info("Connecting to databases...")

	postgres, err := storage.NewPostgresDB(&cfg.Database.Postgres)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Postgres")
	}
	defer postgres.Close()

	redis, err := storage.NewRedisCache(&cfg.Database.Redis)
	if err != nil {
		logger.WithError(err).Fatal("Failed to connect to Redis")
	}
	defer redis.Close()

	logger.Info("Database connections established")

	// Initialize repositories
	badgeRepo := storage.NewBadgeRepository(postgres)
	nullifierIndex := storage.NewNullifierIndex(redis)
	badgeCache := storage.NewBadgeCache(redis, cfg.Cache.TTL)

	// Audit pipeline: always log, optionally fan out to ClickHouse and AMQP
	emitters := []audit.Emitter{audit.NewLogEmitter(logger)}

	clickhouse, err := storage.NewClickHouseDB(&cfg.Database.ClickHouse)
	if err != nil {
		logger.WithError(err).Warn("ClickHouse unavailable, audit events will not be retained")
	} else {
		defer clickhouse.Close()
		emitters = append(emitters, audit.NewClickHouseEmitter(clickhouse))
	}

	if cfg.Audit.AMQPEnabled {
		amqpEmitter, err := audit.NewAMQPEmitter(cfg.Audit.AMQPURL, cfg.Audit.Exchange, cfg.Audit.RoutingKey)
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to AMQP broker")
		}
		defer amqpEmitter.Close()
		emitters = append(emitters, amqpEmitter)
	}

	// Initialize services
	logger.Info("Initializing services...")

	badgeService := service.NewBadgeService(
		verifier,
		badgeRepo,
		nullifierIndex,
		badgeCache,
		audit.NewMultiEmitter(emitters...),
		clock.New(),
		cfg.Badge.StorageDeposit,
		logger,
	)

	logger.Info("Services initialized")

	// Create server configuration
	serverConfig := &api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     15 * time.Second,
		WriteTimeout:    15 * time.Second,
		IdleTimeout:     60 * time.Second,
		ShutdownTimeout: 10 * time.Second,
		RequestsPerSec:  cfg.RateLimit.RequestsPerSecond,
		Burst:           cfg.RateLimit.Burst,
	}

	server := api.NewServer(serverConfig, badgeService)

	// Start server in a goroutine
	go func() {
		if err := server.Start(); err != nil {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	logger.WithFields(map[string]interface{}{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("Server started successfully")

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), serverConfig.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}
