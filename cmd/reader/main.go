package main

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/namsral/flag"

	"github.com/majalleh/portal/internal/client"
	"github.com/majalleh/portal/internal/view"
)

var (
	flServer = flag.String("server", "http://localhost:8080", "portal server base URL")
	flCache  = flag.String("cache", "reader-cache/portal.db", "path to local cache database")
	flListen = flag.String("listen", ":8090", "address to serve the reader UI on")
	flSync   = flag.Duration("sync", 5*time.Minute, "interval between server syncs")
	flDebug  = flag.Bool("debug", false, "enable debug mode")
	lg       *slog.Logger
)

func main() {
	flag.Parse()

	lg = newLogger(*flDebug)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := client.OpenStore(*flCache)
	exitOnError(err)
	defer store.Close()

	dm, err := client.New(store, *flServer, lg)
	exitOnError(err)

	page, err := url.Parse(*flServer)
	exitOnError(err)

	controller := view.NewController(dm, view.NewRenderer(page), lg)

	exitOnError(dm.Init(ctx))
	dm.SyncFromServer(ctx)
	controller.LoadMagazines(ctx)

	go syncLoop(ctx, dm, *flSync)

	e := newEcho(ctx, dm, controller)
	go func() {
		if err := e.Start(*flListen); err != nil && err != http.ErrServerClosed {
			lg.Error("reader server failed", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	lg.Info("reader stopping")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		lg.Error("reader shutdown failed", "error", err)
	}
}

func syncLoop(ctx context.Context, dm *client.DataManager, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dm.SyncFromServer(ctx)
		}
	}
}

func newEcho(ctx context.Context, dm *client.DataManager, controller *view.Controller) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.GET("/sections/:name", func(c echo.Context) error {
		return c.HTML(http.StatusOK, controller.SectionHTML(c.Param("name")))
	})

	e.POST("/search", func(c echo.Context) error {
		controller.SetSearchTerm(c.FormValue("q"))
		return c.NoContent(http.StatusAccepted)
	})

	e.POST("/filter", func(c echo.Context) error {
		controller.SetFilter(c.FormValue("category"))
		return c.HTML(http.StatusOK, controller.SectionHTML(view.SectionArticles))
	})

	e.POST("/favorites/:id/toggle", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.NoContent(http.StatusBadRequest)
		}
		if dm.IsFavorite(id) {
			err = dm.RemoveFavorite(c.Request().Context(), id)
		} else {
			err = dm.AddFavorite(c.Request().Context(), id)
		}
		if err != nil {
			return c.NoContent(http.StatusInternalServerError)
		}
		return c.HTML(http.StatusOK, controller.SectionHTML(view.SectionFavorites))
	})

	e.POST("/magazines", func(c echo.Context) error {
		month, _ := strconv.Atoi(c.FormValue("month"))
		year, _ := strconv.Atoi(c.FormValue("year"))

		_, err := dm.AddMagazine(c.Request().Context(), client.Magazine{
			Title:       c.FormValue("title"),
			Month:       month,
			Year:        year,
			Description: c.FormValue("description"),
			CoverImage:  c.FormValue("coverImage"),
			PDFURL:      c.FormValue("pdfUrl"),
		})
		if err != nil {
			return c.NoContent(http.StatusBadGateway)
		}
		return c.HTML(http.StatusOK, controller.SectionHTML(view.SectionMagazines))
	})

	e.POST("/magazines/:id/delete", func(c echo.Context) error {
		id, err := strconv.Atoi(c.Param("id"))
		if err != nil {
			return c.NoContent(http.StatusBadRequest)
		}
		if err := dm.DeleteMagazine(c.Request().Context(), id); err != nil {
			return c.NoContent(http.StatusBadGateway)
		}
		return c.HTML(http.StatusOK, controller.SectionHTML(view.SectionMagazines))
	})

	e.POST("/sync", func(c echo.Context) error {
		dm.SyncFromServer(ctx)
		controller.LoadMagazines(ctx)
		return c.NoContent(http.StatusAccepted)
	})

	e.POST("/login", func(c echo.Context) error {
		ok := dm.AdminLogin(c.Request().Context(),
			c.FormValue("username"), c.FormValue("password"))
		if !ok {
			return c.NoContent(http.StatusUnauthorized)
		}
		controller.LoadMagazines(c.Request().Context())
		return c.NoContent(http.StatusOK)
	})

	return e
}

func newLogger(debug bool) *slog.Logger {
	logLevel := slog.LevelInfo
	if debug {
		logLevel = slog.LevelDebug
	}

	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func exitOnError(err error) {
	if err != nil {
		lg.Error("reader init failed", "error", err)
		os.Exit(1)
	}
}
