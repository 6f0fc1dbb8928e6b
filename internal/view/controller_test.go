package view

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/majalleh/portal/internal/client"
)

func noOpLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

type fixture struct {
	dm         *client.DataManager
	controller *Controller
}

// newFixture builds a controller against a stub server, with the given
// magazines already in the local cache.
func newFixture(t *testing.T, serverURL string, cached []client.Magazine) fixture {
	t.Helper()

	store, err := client.OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	if len(cached) > 0 {
		require.NoError(t, store.ReplaceMagazines(context.Background(), cached))
	}

	dm, err := client.New(store, serverURL, noOpLogger())
	require.NoError(t, err)

	page, err := url.Parse(serverURL + "/index.html")
	require.NoError(t, err)

	controller := NewController(dm, NewRenderer(page), noOpLogger())
	require.NoError(t, dm.Init(context.Background()))

	return fixture{dm: dm, controller: controller}
}

func magazineServer(t *testing.T, magazines []client.Magazine, status int) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/magazines", func(w http.ResponseWriter, r *http.Request) {
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(magazines))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func cardCount(html string) int {
	return strings.Count(html, `class="magazine-card"`)
}

var cachedMagazines = []client.Magazine{
	{ID: 1, Title: "شماره بهار", Month: 1, Year: 1403, CoverImage: "spring.jpg"},
	{ID: 2, Title: "شماره تابستان", Month: 4, Year: 1403},
}

func TestController_LoadMagazines(t *testing.T) {
	ctx := context.Background()

	t.Run("RendersServerData", func(t *testing.T) {
		server := magazineServer(t, []client.Magazine{
			{ID: 9, Title: "از سرور", Month: 9, Year: 1403},
		}, http.StatusOK)

		f := newFixture(t, server.URL, cachedMagazines)
		f.controller.LoadMagazines(ctx)

		html := f.controller.SectionHTML(SectionMagazines)
		assert.Equal(t, 1, cardCount(html))
		assert.Contains(t, html, "از سرور")
	})

	t.Run("EmptyServerListFallsBackToCache", func(t *testing.T) {
		server := magazineServer(t, []client.Magazine{}, http.StatusOK)

		f := newFixture(t, server.URL, cachedMagazines)
		f.controller.LoadMagazines(ctx)

		html := f.controller.SectionHTML(SectionMagazines)
		assert.Equal(t, len(cachedMagazines), cardCount(html),
			"card count must equal the cache size, not zero")
		assert.Contains(t, html, "شماره بهار")
	})

	t.Run("ServerErrorFallsBackToCache", func(t *testing.T) {
		server := magazineServer(t, nil, http.StatusInternalServerError)

		f := newFixture(t, server.URL, cachedMagazines)
		f.controller.LoadMagazines(ctx)

		assert.Equal(t, len(cachedMagazines), cardCount(f.controller.SectionHTML(SectionMagazines)))
	})

	t.Run("UnreachableServerFallsBackToCache", func(t *testing.T) {
		f := newFixture(t, "http://localhost:1", cachedMagazines)
		f.controller.LoadMagazines(ctx)

		assert.Equal(t, len(cachedMagazines), cardCount(f.controller.SectionHTML(SectionMagazines)))
	})

	t.Run("EmptyEverywhereRendersEmptyState", func(t *testing.T) {
		server := magazineServer(t, []client.Magazine{}, http.StatusOK)

		f := newFixture(t, server.URL, nil)
		f.controller.LoadMagazines(ctx)

		html := f.controller.SectionHTML(SectionMagazines)
		assert.Zero(t, cardCount(html))
		assert.Contains(t, html, "empty-state")
	})

	t.Run("CoverOmittedWhenUnresolvable", func(t *testing.T) {
		server := magazineServer(t, []client.Magazine{
			{ID: 1, Title: "بدون جلد", Month: 2, Year: 1403, CoverImage: ""},
		}, http.StatusOK)

		f := newFixture(t, server.URL, nil)
		f.controller.LoadMagazines(ctx)

		html := f.controller.SectionHTML(SectionMagazines)
		assert.NotContains(t, html, "magazine-cover", "no stand-in image for a missing cover")
	})
}

func TestController_SearchDebounce(t *testing.T) {
	server := magazineServer(t, nil, http.StatusOK)
	f := newFixture(t, server.URL, nil)
	f.controller.SetSearchDelay(20 * time.Millisecond)

	// articles live only in memory for this test, injected via sync from a
	// stub would be equivalent; search just has nothing to find
	f.controller.SetSearchTerm("اول")
	f.controller.SetSearchTerm("دوم")
	f.controller.SetSearchTerm("سوم")

	time.Sleep(60 * time.Millisecond)

	// the last term won; rendering happened once after the pause with an
	// empty result set
	html := f.controller.SectionHTML(SectionArticles)
	assert.Contains(t, html, "empty-state")
}

func TestController_EventRendering(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/articles", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id":1,"title":"مقاله فناوری","author":"سارا","category":"technology"},
			{"id":2,"title":"مقاله فرهنگ","author":"رضا","category":"culture"}
		]`))
	})
	mux.HandleFunc("/api/magazines", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":3,"title":"شماره پاییز","month":7,"year":1403}]`))
	})
	mux.HandleFunc("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"siteName":"مجله","tagline":"شعار"}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	f := newFixture(t, server.URL, nil)
	f.dm.SyncFromServer(ctx)

	t.Run("ArticlesRenderedOnSync", func(t *testing.T) {
		html := f.controller.SectionHTML(SectionArticles)
		assert.Contains(t, html, "مقاله فناوری")
		assert.Contains(t, html, "مقاله فرهنگ")
	})

	t.Run("MagazinesRenderedOnSync", func(t *testing.T) {
		html := f.controller.SectionHTML(SectionMagazines)
		assert.Equal(t, 1, cardCount(html))
		assert.Contains(t, html, "مهر 1403")
	})

	t.Run("SettingsApplied", func(t *testing.T) {
		assert.Equal(t, "مجله", f.controller.Settings().SiteName)
		assert.Equal(t, "شعار", f.controller.Settings().TaglineValue())
	})

	t.Run("FilterScopesArticleList", func(t *testing.T) {
		f.controller.SetFilter("culture")
		html := f.controller.SectionHTML(SectionArticles)
		assert.Contains(t, html, "مقاله فرهنگ")
		assert.NotContains(t, html, "مقاله فناوری")

		f.controller.SetFilter(client.CategoryAll)
	})

	t.Run("FavoriteToggleRerendersFavorites", func(t *testing.T) {
		require.NoError(t, f.dm.AddFavorite(ctx, 1))
		html := f.controller.SectionHTML(SectionFavorites)
		assert.Contains(t, html, "مقاله فناوری")
		assert.NotContains(t, html, "مقاله فرهنگ")

		require.NoError(t, f.dm.RemoveFavorite(ctx, 1))
		assert.Contains(t, f.controller.SectionHTML(SectionFavorites), "empty-state")
	})
}
