package rest

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	apiPrefix = "/api"

	// The magazines resource is method-routed: a single path handles all
	// four verbs.
	magazinesPath = "/magazines"
	articlesPath  = "/articles"
	settingsPath  = "/settings"
	loginPath     = "/auth/login"
	logoutPath    = "/auth/logout"

	healthPath = "/health"
)

// RegisterRoutes builds the echo instance with all routes attached.
func (h *Handler) RegisterRoutes() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(h.loggingMiddleware)

	e.GET(healthPath, h.handleHealth)

	api := e.Group(apiPrefix)
	api.GET(magazinesPath, h.ListMagazines)
	api.POST(magazinesPath, h.CreateMagazine, h.requireAdmin)
	api.PUT(magazinesPath, h.UpdateMagazine, h.requireAdmin)
	api.DELETE(magazinesPath, h.DeleteMagazine, h.requireAdmin)

	api.GET(articlesPath, h.ListArticles)
	api.GET(settingsPath, h.GetSettings)

	api.POST(loginPath, h.Login)
	api.POST(logoutPath, h.Logout)

	return e
}

func (h *Handler) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		h.log.Info("HTTP request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", c.Request().RemoteAddr,
		)

		return nil
	}
}
