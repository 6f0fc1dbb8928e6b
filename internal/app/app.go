package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/labstack/echo/v4"

	"github.com/majalleh/portal/config"
	"github.com/majalleh/portal/internal/db"
	"github.com/majalleh/portal/internal/portal"
	"github.com/majalleh/portal/internal/rest"
)

type App struct {
	DB     *db.Repository
	Logger *slog.Logger
	Echo   *echo.Echo
	Config *config.Config
}

func New(cfg *config.Config, dbConnect *pg.DB, logger *slog.Logger) *App {
	database := db.New(dbConnect)

	sessions := rest.Sessions{
		Secret:     []byte(cfg.Auth.Secret),
		CookieName: cfg.Auth.CookieName,
		TTL:        time.Duration(cfg.Auth.SessionMinutes) * time.Minute,
	}
	if sessions.CookieName == "" {
		sessions.CookieName = "portal_session"
	}
	if sessions.TTL == 0 {
		sessions.TTL = 12 * time.Hour
	}

	handler := rest.NewHandler(
		portal.NewManager(database),
		sessions,
		logger,
		cfg.App.Debug,
	)

	return &App{
		DB:     database,
		Logger: logger,
		Echo:   handler.RegisterRoutes(),
		Config: cfg,
	}
}

func (a *App) Run(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	return a.Echo.Start(addr)
}

func (a *App) GracefulShutdown(ctx context.Context) error {
	err := a.Echo.Shutdown(ctx)
	if err == http.ErrServerClosed {
		return nil
	}
	return err
}
