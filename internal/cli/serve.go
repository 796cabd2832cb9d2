package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Shivanand-hulikatti/guestlist/internal/config"
	"github.com/Shivanand-hulikatti/guestlist/internal/handler"
	"github.com/Shivanand-hulikatti/guestlist/internal/ratelimit"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := rootOpts.load()
			if err != nil {
				return err
			}
			logger := newLogger(cfg.Log, cfg.Production(), cmd.ErrOrStderr())
			slog.SetDefault(logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.close()

	if cfg.Auth.AdminEmail != "" && cfg.Auth.AdminPassword != "" {
		if err := a.auth.SeedAdmin(ctx, cfg.Auth.AdminEmail, cfg.Auth.AdminPassword); err != nil {
			return fmt.Errorf("seed admin: %w", err)
		}
		logger.Info("admin seeded from config", "email", cfg.Auth.AdminEmail)
	}

	opts := handler.RouterOptions{
		CORSOrigin: cfg.Server.CORSOrigin,
		Metrics:    cfg.Metrics,
		WebDir:     cfg.Server.WebDir,
	}
	if cfg.Redis.URL != "" {
		rdb, err := ratelimit.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return err
		}
		defer rdb.Close()
		opts.SignupLimiter = ratelimit.New(rdb, "signup", cfg.Redis.SignupLimit, cfg.Redis.Window)
		opts.AuthLimiter = ratelimit.New(rdb, "auth", cfg.Redis.AuthLimit, cfg.Redis.Window)
		logger.Info("rate limiting enabled", "signup", cfg.Redis.SignupLimit, "auth", cfg.Redis.AuthLimit, "window", cfg.Redis.Window)
	}

	h := handler.New(a.gigs, a.auth, a.signer, cfg.Production(), logger)
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      handler.NewRouter(h, opts),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run in background goroutine so we can wait for the shutdown signal.
	errc := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr, "env", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	logger.Info("server stopped")
	return nil
}
