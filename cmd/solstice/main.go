package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rowanhale/solstice/internal/database"
	"github.com/rowanhale/solstice/internal/email"
	"github.com/rowanhale/solstice/internal/logging"
	"github.com/rowanhale/solstice/internal/server"
)

func main() {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logging.Setup(os.Getenv("SOLSTICE_LOG_LEVEL"))

	port := os.Getenv("SOLSTICE_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("SOLSTICE_DB_PATH")
	if dbPath == "" {
		dbPath = "solstice.db"
	}

	baseURL := os.Getenv("SOLSTICE_BASE_URL")
	if baseURL == "" {
		baseURL = fmt.Sprintf("http://localhost:%s", port)
	}

	db, err := database.Open(dbPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	postmarkToken := os.Getenv("SOLSTICE_POSTMARK_TOKEN")
	fromEmail := os.Getenv("SOLSTICE_FROM_EMAIL")
	emailClient := email.NewClient(postmarkToken, fromEmail, baseURL)
	if !emailClient.Configured() {
		slog.Warn("mail transport not configured; magic links will be returned in responses")
	}

	cfg := server.Config{
		BaseURL:     baseURL,
		AdminEmail:  os.Getenv("SOLSTICE_ADMIN_EMAIL"),
		EmailClient: emailClient,
	}

	srv := server.New(db, cfg, logger)

	httpServer := &http.Server{
		Addr:              ":" + port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Background cleanup goroutine
	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	defer cleanupCancel()
	go func() {
		ticker := time.NewTicker(1 * time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired sessions", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired sessions", "count", n)
				}
				if n, err := srv.MagicLinkStore().DeleteExpired(); err != nil {
					slog.Error("cleanup expired magic links", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up expired magic links", "count", n)
				}
				if n, err := srv.GrantStore().DeleteStale(); err != nil {
					slog.Error("cleanup stale grants", "error", err)
				} else if n > 0 {
					slog.Info("cleaned up stale grants", "count", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupCtx.Done():
				return
			}
		}
	}()

	go func() {
		slog.Info("solstice starting", "addr", ":"+port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down")
	cleanupCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
