package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// The original client never set a request timeout; 10 seconds is the
	// documented choice here.
	requestTimeout = 10 * time.Second

	kvSettings  = "settings"
	kvAdminAuth = "adminAuth"

	CategoryAll = "all"
)

// DataManager owns the locally persisted cache of articles, magazines,
// favorites, settings and the admin flag, and the typed event bus consumers
// subscribe to. Server data is pulled in by SyncFromServer; the cache is the
// fallback source of truth whenever the server is unreachable.
type DataManager struct {
	store   *Store
	http    *http.Client
	baseURL string
	log     *slog.Logger
	bus     bus

	mu        sync.RWMutex
	articles  []Article
	magazines []Magazine
	favorites map[int]struct{}
	settings  Settings
	admin     bool
}

func New(store *Store, baseURL string, log *slog.Logger) (*DataManager, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	return &DataManager{
		store: store,
		http: &http.Client{
			Timeout: requestTimeout,
			Jar:     jar,
		},
		baseURL:   strings.TrimRight(baseURL, "/"),
		log:       log,
		favorites: make(map[int]struct{}),
	}, nil
}

// Subscribe registers an observer for state-change events. Subscribers are
// called synchronously on the goroutine that caused the change.
func (m *DataManager) Subscribe(fn func(Event)) {
	m.bus.subscribe(fn)
}

// HTTPClient exposes the manager's client (with its session cookie jar) so
// other components talk to the server through the same session.
func (m *DataManager) HTTPClient() *http.Client {
	return m.http
}

func (m *DataManager) BaseURL() string {
	return m.baseURL
}

// Init loads the persisted cache into memory and announces readiness.
func (m *DataManager) Init(ctx context.Context) error {
	articles, err := m.store.LoadArticles(ctx)
	if err != nil {
		return fmt.Errorf("load cached articles: %w", err)
	}

	magazines, err := m.store.LoadMagazines(ctx)
	if err != nil {
		return fmt.Errorf("load cached magazines: %w", err)
	}

	favoriteIDs, err := m.store.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}

	rawSettings, err := m.store.Value(ctx, kvSettings)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	adminFlag, err := m.store.Value(ctx, kvAdminAuth)
	if err != nil {
		return fmt.Errorf("load admin flag: %w", err)
	}

	m.mu.Lock()
	m.articles = articles
	m.magazines = magazines
	m.favorites = make(map[int]struct{}, len(favoriteIDs))
	for _, id := range favoriteIDs {
		m.favorites[id] = struct{}{}
	}
	if rawSettings != "" {
		if err := json.Unmarshal([]byte(rawSettings), &m.settings); err != nil {
			m.log.Warn("discarding unreadable cached settings", "error", err)
			m.settings = Settings{}
		}
	}
	m.admin = adminFlag == "true"
	m.mu.Unlock()

	m.bus.publish(Event{Type: EventInitialized})
	return nil
}

// SyncFromServer refreshes articles, magazines and settings from the server.
// Failures never propagate: they are logged and the cache stays in place.
// The completion event carries whether every fetch succeeded.
func (m *DataManager) SyncFromServer(ctx context.Context) {
	success := true

	var articles []Article
	if err := m.fetchJSON(ctx, "/api/articles", &articles); err != nil {
		m.log.Warn("article sync failed, keeping cached data", "error", err)
		success = false
	} else if len(articles) > 0 {
		if err := m.store.ReplaceArticles(ctx, articles); err != nil {
			m.log.Warn("persisting synced articles failed", "error", err)
		}
		m.mu.Lock()
		m.articles = articles
		m.mu.Unlock()
		m.bus.publish(Event{Type: EventArticlesUpdated})
	}

	var magazines []Magazine
	if err := m.fetchJSON(ctx, "/api/magazines", &magazines); err != nil {
		m.log.Warn("magazine sync failed, keeping cached data", "error", err)
		success = false
	} else if len(magazines) > 0 {
		// An empty list means the server had nothing for us; the cache
		// stays authoritative in that case.
		if err := m.store.ReplaceMagazines(ctx, magazines); err != nil {
			m.log.Warn("persisting synced magazines failed", "error", err)
		}
		m.mu.Lock()
		m.magazines = magazines
		m.mu.Unlock()
		m.bus.publish(Event{Type: EventMagazinesUpdated})
	}

	var settings Settings
	if err := m.fetchJSON(ctx, "/api/settings", &settings); err != nil {
		m.log.Warn("settings sync failed, keeping cached data", "error", err)
		success = false
	} else if !settings.IsZero() {
		data, err := json.Marshal(settings)
		if err == nil {
			if err := m.store.SetValue(ctx, kvSettings, string(data)); err != nil {
				m.log.Warn("persisting synced settings failed", "error", err)
			}
		}
		m.mu.Lock()
		m.settings = settings
		m.mu.Unlock()
		m.bus.publish(Event{Type: EventSettingsUpdated})
	}

	m.bus.publish(Event{Type: EventSyncComplete, Success: success})
}

// ArticlesByCategory returns the cached articles in the given category, or
// all of them for CategoryAll.
func (m *DataManager) ArticlesByCategory(category string) []Article {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if category == "" || category == CategoryAll {
		return append([]Article(nil), m.articles...)
	}

	var out []Article
	for _, a := range m.articles {
		if a.Category == category {
			out = append(out, a)
		}
	}
	return out
}

// SearchArticles matches the term case-insensitively against title, author,
// content, excerpt and tags.
func (m *DataManager) SearchArticles(term string) []Article {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return m.ArticlesByCategory(CategoryAll)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Article
	for _, a := range m.articles {
		if articleMatches(a, term) {
			out = append(out, a)
		}
	}
	return out
}

func articleMatches(a Article, term string) bool {
	if strings.Contains(strings.ToLower(a.Title), term) ||
		strings.Contains(strings.ToLower(a.Author.Name), term) ||
		strings.Contains(strings.ToLower(a.Content), term) ||
		strings.Contains(strings.ToLower(a.Excerpt), term) {
		return true
	}
	for _, tag := range a.Tags {
		if strings.Contains(strings.ToLower(tag), term) {
			return true
		}
	}
	return false
}

func (m *DataManager) ArticleByID(id int) *Article {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.articles {
		if m.articles[i].ID == id {
			a := m.articles[i]
			return &a
		}
	}
	return nil
}

// Favorites returns the favorited articles, ordered by article id.
func (m *DataManager) Favorites() []Article {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Article
	for _, a := range m.articles {
		if _, ok := m.favorites[a.ID]; ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *DataManager) FavoritesCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.favorites)
}

func (m *DataManager) IsFavorite(id int) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.favorites[id]
	return ok
}

// AddFavorite marks an article id as favorite. Adding an id twice keeps a
// single entry.
func (m *DataManager) AddFavorite(ctx context.Context, id int) error {
	m.mu.Lock()
	if _, ok := m.favorites[id]; ok {
		m.mu.Unlock()
		return nil
	}
	m.favorites[id] = struct{}{}
	m.mu.Unlock()

	if err := m.store.AddFavorite(ctx, id); err != nil {
		return err
	}

	m.bus.publish(Event{Type: EventFavoritesUpdated})
	return nil
}

// RemoveFavorite unmarks an article id; removing an absent id is a no-op.
func (m *DataManager) RemoveFavorite(ctx context.Context, id int) error {
	m.mu.Lock()
	if _, ok := m.favorites[id]; !ok {
		m.mu.Unlock()
		return nil
	}
	delete(m.favorites, id)
	m.mu.Unlock()

	if err := m.store.RemoveFavorite(ctx, id); err != nil {
		return err
	}

	m.bus.publish(Event{Type: EventFavoritesUpdated})
	return nil
}

func (m *DataManager) AllMagazines() []Magazine {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]Magazine(nil), m.magazines...)
}

func (m *DataManager) MagazineByID(id int) *Magazine {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for i := range m.magazines {
		if m.magazines[i].ID == id {
			mag := m.magazines[i]
			return &mag
		}
	}
	return nil
}

// AddMagazine creates the issue on the server and mirrors it locally.
func (m *DataManager) AddMagazine(ctx context.Context, magazine Magazine) (Magazine, error) {
	payload := map[string]any{
		"title":       magazine.Title,
		"month":       magazine.Month,
		"year":        magazine.Year,
		"description": magazine.Description,
		"coverImage":  magazine.CoverImage,
		"pdfUrl":      magazine.PDFURL,
	}

	var result struct {
		OK bool `json:"ok"`
		ID int  `json:"id"`
	}
	if err := m.postJSON(ctx, "/api/magazines", payload, &result); err != nil {
		return Magazine{}, err
	}
	if !result.OK {
		return Magazine{}, fmt.Errorf("server rejected magazine")
	}

	magazine.ID = result.ID

	m.mu.Lock()
	m.magazines = append(m.magazines, magazine)
	magazines := append([]Magazine(nil), m.magazines...)
	m.mu.Unlock()

	if err := m.store.ReplaceMagazines(ctx, magazines); err != nil {
		m.log.Warn("persisting magazines failed", "error", err)
	}

	m.bus.publish(Event{Type: EventMagazinesUpdated})
	return magazine, nil
}

// DeleteMagazine removes the issue on the server (form-encoded body, like
// the original API expects) and drops it from the local mirror.
func (m *DataManager) DeleteMagazine(ctx context.Context, id int) error {
	form := url.Values{"id": {strconv.Itoa(id)}}
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		m.baseURL+"/api/magazines", strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build delete request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("delete magazine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete magazine: status %d", resp.StatusCode)
	}

	m.mu.Lock()
	kept := m.magazines[:0]
	for _, mag := range m.magazines {
		if mag.ID != id {
			kept = append(kept, mag)
		}
	}
	m.magazines = kept
	magazines := append([]Magazine(nil), m.magazines...)
	m.mu.Unlock()

	if err := m.store.ReplaceMagazines(ctx, magazines); err != nil {
		m.log.Warn("persisting magazines failed", "error", err)
	}

	m.bus.publish(Event{Type: EventMagazinesUpdated})
	return nil
}

func (m *DataManager) CheckAdminAuth() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.admin
}

// AdminLogin attempts a server login. On success the session cookie lives in
// the manager's jar and the flag is persisted locally.
func (m *DataManager) AdminLogin(ctx context.Context, username, password string) bool {
	payload := map[string]string{"username": username, "password": password}

	var result struct {
		OK bool `json:"ok"`
	}
	if err := m.postJSON(ctx, "/api/auth/login", payload, &result); err != nil {
		m.log.Warn("admin login failed", "error", err)
		return false
	}
	if !result.OK {
		return false
	}

	m.mu.Lock()
	m.admin = true
	m.mu.Unlock()

	if err := m.store.SetValue(ctx, kvAdminAuth, "true"); err != nil {
		m.log.Warn("persisting admin flag failed", "error", err)
	}
	return true
}

func (m *DataManager) Settings() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.settings
}

func (m *DataManager) fetchJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (m *DataManager) postJSON(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		m.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("post %s: status %d", path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}
