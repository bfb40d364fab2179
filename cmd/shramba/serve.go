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

	"github.com/spf13/cobra"

	"github.com/erazemk/shramba/internal/api"
	"github.com/erazemk/shramba/internal/dedup"
	"github.com/erazemk/shramba/internal/store"
)

var (
	serveAddr    string
	serveAccount string
	serveUser    string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	Long: `Run the JSON API. If the database does not exist yet it is created with a
first account and admin user, and the generated password is printed once.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Flags().Changed("addr") {
			cfg.Addr = serveAddr
		}
		ctx := context.Background()

		// Check if DB exists, auto-init if not.
		if _, err := os.Stat(cfg.DBPath); os.IsNotExist(err) {
			if err := initDatabase(ctx, serveAccount, serveUser); err != nil {
				return fmt.Errorf("initializing database: %w", err)
			}
			fmt.Println()
		}

		database, err := openDB()
		if err != nil {
			return err
		}
		defer database.Close()

		slog.Info("database ready", "path", cfg.DBPath)

		if n, err := store.PurgeExpiredTokens(ctx, database, time.Now()); err != nil {
			slog.Warn("failed to purge revoked tokens", "error", err)
		} else if n > 0 {
			slog.Info("purged expired token revocations", "count", n)
		}

		// Load JWT secret from database (auto-generated on first run).
		jwtSecret, err := store.GetJWTSecret(ctx, database)
		if err != nil {
			return fmt.Errorf("getting JWT secret: %w", err)
		}

		engine, err := dedup.New(database, cfg.Dedup)
		if err != nil {
			return err
		}

		handler := api.LoggingMiddleware(api.NewRouter(database, jwtSecret, engine, cfg.TokenTTL))

		server := &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       30 * time.Second,
			WriteTimeout:      60 * time.Second,
			IdleTimeout:       120 * time.Second,
		}

		// Graceful shutdown on SIGINT/SIGTERM.
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		go func() {
			sig := <-quit
			slog.Info("shutdown signal received", "signal", sig.String())

			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil {
				slog.Error("server forced to shutdown", "error", err)
			}
		}()

		slog.Info("server started", "addr", cfg.Addr,
			"candidate_threshold", cfg.Dedup.CandidateThreshold)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

		slog.Info("server stopped, closing database")
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVarP(&serveAddr, "addr", "a", "", "listen address (default: :8080)")
	serveCmd.Flags().StringVar(&serveAccount, "account", "Restaurant", "account name on first run")
	serveCmd.Flags().StringVarP(&serveUser, "user", "u", "Admin", "admin username on first run")
	rootCmd.AddCommand(serveCmd)
}
