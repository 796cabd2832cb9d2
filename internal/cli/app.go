package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Shivanand-hulikatti/guestlist/internal/auth"
	"github.com/Shivanand-hulikatti/guestlist/internal/config"
	"github.com/Shivanand-hulikatti/guestlist/internal/database"
	"github.com/Shivanand-hulikatti/guestlist/internal/mail"
	"github.com/Shivanand-hulikatti/guestlist/internal/memstore"
	"github.com/Shivanand-hulikatti/guestlist/internal/repository"
	"github.com/Shivanand-hulikatti/guestlist/internal/service"
)

// app is the wired service layer shared by every command.
type app struct {
	gigs   *service.GigService
	auth   *service.AuthService
	signer *auth.Signer
	close  func()
}

// stores picks the storage backend named in the config.
type stores struct {
	gigs   service.GigStore
	guests service.GuestStore
	admins service.AdminStore
	close  func()
}

func openStores(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*stores, error) {
	if cfg.Driver == "memory" {
		logger.Warn("using in-memory store, data is lost on exit")
		mem := memstore.New()
		return &stores{
			gigs:   mem.Gigs(),
			guests: mem.Guests(),
			admins: mem.Admins(),
			close:  func() {},
		}, nil
	}

	pool, err := database.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	if err := database.Migrate(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database: %w", err)
	}
	logger.Info("connected to postgres", "host", cfg.Host, "db", cfg.DBName)

	return &stores{
		gigs:   repository.NewGigRepository(pool),
		guests: repository.NewGuestRepository(pool),
		admins: repository.NewAdminRepository(pool),
		close:  pool.Close,
	}, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := openStores(ctx, cfg.Database, logger)
	if err != nil {
		return nil, err
	}

	signer := auth.NewSigner(cfg.Auth.SessionSecret)
	gigs := service.NewGigService(st.gigs, st.guests, service.GigOptions{
		BaseURL:           cfg.Server.BaseURL,
		BatchGuestCap:     cfg.Import.DefaultGuestCap,
		BatchMaxPerSignup: cfg.Import.DefaultMaxPerSignup,
		Logger:            logger,
	})
	authSvc := service.NewAuthService(st.admins, signer, mail.New(cfg.Mail, logger), cfg.Server.BaseURL, logger)

	return &app{gigs: gigs, auth: authSvc, signer: signer, close: st.close}, nil
}
