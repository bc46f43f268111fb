/*
Package main is the entry point for the messenger snapshot server.

It is responsible for loading configuration, initializing the global logging system,
opening the configured document backend, starting the backup scheduler,
setting up the HTTP server, and gracefully handling operating system interrupt
signals (SIGINT, SIGTERM) to ensure a smooth server shutdown.
*/
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"messenger/internal/app/db"
	"messenger/internal/app/storage"
	"messenger/internal/configs"
	"messenger/internal/handler"
	"messenger/internal/pkg/logx"
)

func main() {
	// Load configuration from environment variables
	cfg, err := configs.LoadServerConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize global logger
	logx.InitGlobalLogger(cfg.IsDevelopment())
	logx.Logger().Info().
		Str("environment", cfg.Environment).
		Int("port", cfg.Port).
		Str("backend", cfg.Backend).
		Strs("allowed_origins", cfg.AllowedOrigins).
		Bool("images", cfg.ImagesEnabled()).
		Msg("Configuration loaded successfully")

	// Create a context that listens for the interrupt signal from the OS.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	documents, closeDocuments, err := openDocuments(ctx, cfg)
	if err != nil {
		logx.Fatal(err, "Failed to open document backend", "backend", cfg.Backend)
	}
	defer closeDocuments()

	deps := &handler.AppDeps{
		Config:    cfg,
		Documents: documents,
	}

	if cfg.ImagesEnabled() {
		objects, err := storage.NewObjectStore(ctx, s3Config(cfg))
		if err != nil {
			logx.Fatal(err, "Failed to initialize image storage")
		}
		deps.Objects = objects
	}

	if cfg.BackupCron != "" {
		backup, err := storage.NewBackup(documents, storage.BackupConfig{
			Cron: cfg.BackupCron,
			Dir:  cfg.BackupDir,
			Keep: cfg.BackupKeep,
		})
		if err != nil {
			logx.Fatal(err, "Failed to configure backups")
		}
		go backup.Run(ctx)
	}

	// Setup HTTP server and routes
	router, stopRouter := handler.Router(deps)
	defer stopRouter()

	serverAddr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logx.Info(fmt.Sprintf("Snapshot server starting on http://localhost%s", serverAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logx.Fatal(err, "Server failed to start")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server with a timeout of 5 seconds.
	<-ctx.Done()
	logx.Info("Received shutdown signal. Starting graceful shutdown...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logx.Fatal(err, "Server forced to shutdown")
	}

	logx.Info("Server gracefully stopped.")
}

// openDocuments builds the configured DocumentStore and its cleanup function.
func openDocuments(ctx context.Context, cfg *configs.ServerConfig) (storage.DocumentStore, func(), error) {
	switch cfg.Backend {
	case configs.BackendPostgres:
		pool, err := db.NewPool(ctx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, err
		}
		docs, err := db.NewDocumentStore(ctx, pool, db.DefaultDocumentID, cfg.HistoryLimit)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		return docs, pool.Close, nil

	case configs.BackendRedis:
		docs, err := storage.NewRedisStore(ctx, cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, cfg.DocumentKey)
		if err != nil {
			return nil, nil, err
		}
		return docs, func() { _ = docs.Close() }, nil

	case configs.BackendS3:
		docs, err := storage.NewS3DocumentStore(ctx, s3Config(cfg), cfg.DocumentKey)
		if err != nil {
			return nil, nil, err
		}
		return docs, func() {}, nil

	default:
		docs, err := storage.NewFileStore(cfg.DocumentPath)
		if err != nil {
			return nil, nil, err
		}
		return docs, func() {}, nil
	}
}

func s3Config(cfg *configs.ServerConfig) storage.ServiceConfig {
	return storage.ServiceConfig{
		S3BucketName:      cfg.S3BucketName,
		S3Endpoint:        cfg.S3Endpoint,
		S3AccessKeyID:     cfg.S3AccessKeyID,
		S3SecretAccessKey: cfg.S3SecretAccessKey,
	}
}
