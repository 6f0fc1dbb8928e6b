package view

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/majalleh/portal/internal/client"
)

const defaultSearchDelay = 300 * time.Millisecond

const (
	SectionHome      = "home"
	SectionArticles  = "articles"
	SectionMagazines = "magazines"
	SectionFavorites = "favorites"
)

// Controller reacts to data manager events and keeps per-section rendered
// HTML current. Each event re-renders only the sections it affects.
type Controller struct {
	dm       *client.DataManager
	renderer *Renderer
	log      *slog.Logger

	// searchDelay is how long typing must pause before the article list
	// re-renders with the new term.
	searchDelay time.Duration

	mu          sync.Mutex
	section     string
	filter      string
	searchTerm  string
	searchTimer *time.Timer
	rendered    map[string]string
	settings    client.Settings
}

func NewController(dm *client.DataManager, renderer *Renderer, log *slog.Logger) *Controller {
	c := &Controller{
		dm:          dm,
		renderer:    renderer,
		log:         log,
		searchDelay: defaultSearchDelay,
		section:     SectionHome,
		filter:      client.CategoryAll,
		rendered:    make(map[string]string),
	}

	dm.Subscribe(c.onEvent)
	return c
}

// SetSearchDelay overrides the typing pause before search re-renders.
func (c *Controller) SetSearchDelay(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.searchDelay = d
}

func (c *Controller) onEvent(ev client.Event) {
	switch ev.Type {
	case client.EventInitialized:
		c.renderArticles()
		c.renderFavorites()
		c.renderMagazinesFromCache()
		c.applySettings()
	case client.EventArticlesUpdated:
		c.renderArticles()
		c.renderFavorites()
	case client.EventMagazinesUpdated:
		c.renderMagazinesFromCache()
	case client.EventSettingsUpdated:
		c.applySettings()
	case client.EventFavoritesUpdated:
		c.renderArticles()
		c.renderFavorites()
	case client.EventSyncComplete:
		c.log.Debug("sync complete", "success", ev.Success)
	}
}

// SectionHTML returns the current rendered fragment for a section.
func (c *Controller) SectionHTML(section string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rendered[section]
}

func (c *Controller) ShowSection(section string) {
	c.mu.Lock()
	c.section = section
	c.mu.Unlock()
}

func (c *Controller) ActiveSection() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.section
}

func (c *Controller) Settings() client.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetFilter switches the active category and re-renders the article list.
func (c *Controller) SetFilter(category string) {
	c.mu.Lock()
	c.filter = category
	c.mu.Unlock()
	c.renderArticles()
}

// SetSearchTerm schedules an article re-render after the typing pause.
// Each call resets the pause.
func (c *Controller) SetSearchTerm(term string) {
	c.mu.Lock()
	c.searchTerm = strings.TrimSpace(term)
	if c.searchTimer != nil {
		c.searchTimer.Stop()
	}
	c.searchTimer = time.AfterFunc(c.searchDelay, c.renderArticles)
	c.mu.Unlock()
}

func (c *Controller) renderArticles() {
	c.mu.Lock()
	term := c.searchTerm
	filter := c.filter
	c.mu.Unlock()

	var articles []client.Article
	if term != "" {
		articles = c.dm.SearchArticles(term)
	} else {
		articles = c.dm.ArticlesByCategory(filter)
	}

	html := c.articleCards(articles, "مقاله‌ای یافت نشد")

	c.mu.Lock()
	c.rendered[SectionArticles] = html
	c.mu.Unlock()
}

func (c *Controller) renderFavorites() {
	html := c.articleCards(c.dm.Favorites(), "هنوز مقاله‌ای را نشان نکرده‌اید")

	c.mu.Lock()
	c.rendered[SectionFavorites] = html
	c.mu.Unlock()
}

func (c *Controller) articleCards(articles []client.Article, emptyMessage string) string {
	if len(articles) == 0 {
		html, err := c.renderer.EmptyState(emptyMessage)
		if err != nil {
			c.log.Error("render empty state failed", "error", err)
			return ""
		}
		return html
	}

	var sb strings.Builder
	for _, a := range articles {
		card, err := c.renderer.ArticleCard(a, c.dm.IsFavorite(a.ID))
		if err != nil {
			c.log.Error("render article card failed", "article_id", a.ID, "error", err)
			continue
		}
		sb.WriteString(card)
	}
	return sb.String()
}

// LoadMagazines renders the magazine grid, asking the server first. A failed
// fetch, a non-OK status, an unreadable body or an empty list all fall back
// to the local cache without surfacing an error.
func (c *Controller) LoadMagazines(ctx context.Context) {
	magazines, ok := c.fetchMagazines(ctx)
	if !ok {
		magazines = c.dm.AllMagazines()
	}
	c.renderMagazines(magazines)
}

func (c *Controller) renderMagazinesFromCache() {
	c.renderMagazines(c.dm.AllMagazines())
}

func (c *Controller) fetchMagazines(ctx context.Context) ([]client.Magazine, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.dm.BaseURL()+"/api/magazines", nil)
	if err != nil {
		c.log.Warn("magazine fetch failed, using cache", "error", err)
		return nil, false
	}

	resp, err := c.dm.HTTPClient().Do(req)
	if err != nil {
		c.log.Warn("magazine fetch failed, using cache", "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("magazine fetch failed, using cache", "status", resp.StatusCode)
		return nil, false
	}

	var magazines []client.Magazine
	if err := json.NewDecoder(resp.Body).Decode(&magazines); err != nil {
		c.log.Warn("magazine list unreadable, using cache", "error", err)
		return nil, false
	}

	// An empty list means the server had no data for us, not that every
	// issue is gone.
	if len(magazines) == 0 {
		c.log.Warn("magazine list empty, using cache")
		return nil, false
	}

	return magazines, true
}

func (c *Controller) renderMagazines(magazines []client.Magazine) {
	admin := c.dm.CheckAdminAuth()

	var html string
	if len(magazines) == 0 {
		empty, err := c.renderer.EmptyState("هنوز شماره‌ای منتشر نشده است")
		if err != nil {
			c.log.Error("render empty state failed", "error", err)
		}
		html = empty
	} else {
		var sb strings.Builder
		for _, m := range magazines {
			card, err := c.renderer.MagazineCard(m, admin)
			if err != nil {
				c.log.Error("render magazine card failed", "magazine_id", m.ID, "error", err)
				continue
			}
			sb.WriteString(card)
		}
		html = sb.String()
	}

	c.mu.Lock()
	c.rendered[SectionMagazines] = html
	c.mu.Unlock()
}

func (c *Controller) applySettings() {
	settings := c.dm.Settings()

	c.mu.Lock()
	c.settings = settings
	c.mu.Unlock()
}
