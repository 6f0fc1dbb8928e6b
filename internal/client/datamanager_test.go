package client

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noOpLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{
		Level: slog.LevelError + 1,
	}))
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newTestManager(t *testing.T, baseURL string) *DataManager {
	t.Helper()
	dm, err := New(newTestStore(t), baseURL, noOpLogger())
	require.NoError(t, err)
	return dm
}

// eventRecorder collects published events for assertions.
type eventRecorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *eventRecorder) record(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	types := make([]EventType, len(r.events))
	for i, ev := range r.events {
		types[i] = ev.Type
	}
	return types
}

func (r *eventRecorder) last(eventType EventType) (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Type == eventType {
			return r.events[i], true
		}
	}
	return Event{}, false
}

func serveJSON(t *testing.T, handlers map[string]any) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for path, payload := range handlers {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			require.NoError(t, json.NewEncoder(w).Encode(payload))
		})
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestDataManager_InitPublishesInitialized(t *testing.T) {
	dm := newTestManager(t, "http://localhost:1")

	var rec eventRecorder
	dm.Subscribe(rec.record)

	require.NoError(t, dm.Init(context.Background()))
	assert.Equal(t, []EventType{EventInitialized}, rec.types())
}

func TestDataManager_SyncFromServer(t *testing.T) {
	ctx := context.Background()

	t.Run("StoresFetchedDataAndPublishes", func(t *testing.T) {
		server := serveJSON(t, map[string]any{
			"/api/articles": []map[string]any{
				{"id": 1, "title": "مقاله اول", "author": "سارا", "category": "technology"},
			},
			"/api/magazines": []map[string]any{
				{"id": 1, "title": "شماره بهار", "month": 1, "year": 1403, "cover_image": "spring.jpg"},
			},
			"/api/settings": map[string]any{"siteName": "مجله"},
		})

		dm := newTestManager(t, server.URL)
		require.NoError(t, dm.Init(ctx))

		var rec eventRecorder
		dm.Subscribe(rec.record)

		dm.SyncFromServer(ctx)

		articles := dm.ArticlesByCategory(CategoryAll)
		require.Len(t, articles, 1)
		assert.Equal(t, "مقاله اول", articles[0].Title)
		assert.Equal(t, "سارا", articles[0].Author.Name)

		magazines := dm.AllMagazines()
		require.Len(t, magazines, 1)
		assert.Equal(t, "spring.jpg", magazines[0].CoverImage, "snake_case cover key must decode")

		assert.Equal(t, "مجله", dm.Settings().SiteName)

		complete, ok := rec.last(EventSyncComplete)
		require.True(t, ok)
		assert.True(t, complete.Success)
		assert.Contains(t, rec.types(), EventArticlesUpdated)
		assert.Contains(t, rec.types(), EventMagazinesUpdated)
		assert.Contains(t, rec.types(), EventSettingsUpdated)
	})

	t.Run("UnreachableServerKeepsCacheAndReportsFailure", func(t *testing.T) {
		store := newTestStore(t)
		require.NoError(t, store.ReplaceMagazines(ctx, []Magazine{
			{ID: 1, Title: "کش شده", Month: 1, Year: 1402},
		}))

		dm, err := New(store, "http://localhost:1", noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm.Init(ctx))

		var rec eventRecorder
		dm.Subscribe(rec.record)

		dm.SyncFromServer(ctx)

		magazines := dm.AllMagazines()
		require.Len(t, magazines, 1)
		assert.Equal(t, "کش شده", magazines[0].Title)

		complete, ok := rec.last(EventSyncComplete)
		require.True(t, ok)
		assert.False(t, complete.Success)
		assert.NotContains(t, rec.types(), EventMagazinesUpdated)
	})

	t.Run("EmptyMagazineListDoesNotClobberCache", func(t *testing.T) {
		server := serveJSON(t, map[string]any{
			"/api/articles":  []map[string]any{},
			"/api/magazines": []map[string]any{},
			"/api/settings":  map[string]any{},
		})

		store := newTestStore(t)
		require.NoError(t, store.ReplaceMagazines(ctx, []Magazine{
			{ID: 1, Title: "کش شده", Month: 1, Year: 1402},
		}))

		dm, err := New(store, server.URL, noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm.Init(ctx))

		dm.SyncFromServer(ctx)

		magazines := dm.AllMagazines()
		require.Len(t, magazines, 1, "empty server response must not replace the cache")
		assert.Equal(t, "کش شده", magazines[0].Title)

		reloaded, err := store.LoadMagazines(ctx)
		require.NoError(t, err)
		require.Len(t, reloaded, 1)
	})

	t.Run("SyncedDataSurvivesRestart", func(t *testing.T) {
		server := serveJSON(t, map[string]any{
			"/api/articles": []map[string]any{
				{"id": 3, "title": "ماندگار", "author": "رضا"},
			},
			"/api/magazines": []map[string]any{},
			"/api/settings":  map[string]any{},
		})

		path := filepath.Join(t.TempDir(), "cache.db")
		store, err := OpenStore(path)
		require.NoError(t, err)

		dm, err := New(store, server.URL, noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm.Init(ctx))
		dm.SyncFromServer(ctx)
		require.NoError(t, store.Close())

		store2, err := OpenStore(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store2.Close() })

		dm2, err := New(store2, server.URL, noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm2.Init(ctx))

		articles := dm2.ArticlesByCategory(CategoryAll)
		require.Len(t, articles, 1)
		assert.Equal(t, "ماندگار", articles[0].Title)
	})
}

func TestDataManager_Favorites(t *testing.T) {
	ctx := context.Background()

	t.Run("AddIsIdempotent", func(t *testing.T) {
		dm := newTestManager(t, "http://localhost:1")
		require.NoError(t, dm.Init(ctx))

		var rec eventRecorder
		dm.Subscribe(rec.record)

		require.NoError(t, dm.AddFavorite(ctx, 5))
		require.NoError(t, dm.AddFavorite(ctx, 5))

		assert.Equal(t, 1, dm.FavoritesCount())
		assert.True(t, dm.IsFavorite(5))

		// the second add changes nothing, so only one event fires
		count := 0
		for _, tp := range rec.types() {
			if tp == EventFavoritesUpdated {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("RemoveAbsentIsNoOp", func(t *testing.T) {
		dm := newTestManager(t, "http://localhost:1")
		require.NoError(t, dm.Init(ctx))

		var rec eventRecorder
		dm.Subscribe(rec.record)

		require.NoError(t, dm.RemoveFavorite(ctx, 99))
		assert.Empty(t, rec.types())
		assert.Equal(t, 0, dm.FavoritesCount())
	})

	t.Run("FavoritesPersistAcrossRestart", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "cache.db")

		store, err := OpenStore(path)
		require.NoError(t, err)
		dm, err := New(store, "http://localhost:1", noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm.Init(ctx))
		require.NoError(t, dm.AddFavorite(ctx, 7))
		require.NoError(t, store.Close())

		store2, err := OpenStore(path)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store2.Close() })
		dm2, err := New(store2, "http://localhost:1", noOpLogger())
		require.NoError(t, err)
		require.NoError(t, dm2.Init(ctx))

		assert.True(t, dm2.IsFavorite(7))
	})
}

func TestDataManager_Search(t *testing.T) {
	ctx := context.Background()
	server := serveJSON(t, map[string]any{
		"/api/articles": []map[string]any{
			{"id": 1, "title": "هوش مصنوعی", "author": "سارا", "category": "technology", "tags": []string{"ai"}},
			{"id": 2, "title": "سینمای مستقل", "author": "رضا", "category": "culture", "content": "نقد فیلم"},
		},
		"/api/magazines": []map[string]any{},
		"/api/settings":  map[string]any{},
	})

	dm := newTestManager(t, server.URL)
	require.NoError(t, dm.Init(ctx))
	dm.SyncFromServer(ctx)

	t.Run("MatchesTitle", func(t *testing.T) {
		got := dm.SearchArticles("هوش")
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].ID)
	})

	t.Run("MatchesTag", func(t *testing.T) {
		got := dm.SearchArticles("AI")
		require.Len(t, got, 1)
		assert.Equal(t, 1, got[0].ID)
	})

	t.Run("MatchesContent", func(t *testing.T) {
		got := dm.SearchArticles("نقد")
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].ID)
	})

	t.Run("EmptyTermReturnsAll", func(t *testing.T) {
		assert.Len(t, dm.SearchArticles("  "), 2)
	})

	t.Run("FiltersByCategory", func(t *testing.T) {
		got := dm.ArticlesByCategory("culture")
		require.Len(t, got, 1)
		assert.Equal(t, 2, got[0].ID)
	})
}

func TestDataManager_AdminLogin(t *testing.T) {
	ctx := context.Background()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if req.Username == "admin" && req.Password == "secret" {
			http.SetCookie(w, &http.Cookie{Name: "portal_session", Value: "token"})
			_, _ = w.Write([]byte(`{"ok":true}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"ok":false}`))
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	t.Run("SuccessSetsAndPersistsFlag", func(t *testing.T) {
		dm := newTestManager(t, server.URL)
		require.NoError(t, dm.Init(ctx))

		assert.False(t, dm.CheckAdminAuth())
		assert.True(t, dm.AdminLogin(ctx, "admin", "secret"))
		assert.True(t, dm.CheckAdminAuth())
	})

	t.Run("FailureLeavesFlagUnset", func(t *testing.T) {
		dm := newTestManager(t, server.URL)
		require.NoError(t, dm.Init(ctx))

		assert.False(t, dm.AdminLogin(ctx, "admin", "wrong"))
		assert.False(t, dm.CheckAdminAuth())
	})
}

func TestDataManager_Magazines(t *testing.T) {
	ctx := context.Background()

	t.Run("AddMirrorsServerAssignedID", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/api/magazines", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPost:
				var body map[string]any
				require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
				assert.Contains(t, body, "coverImage", "create payload must be camelCase")
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`{"ok":true,"id":11}`))
			case http.MethodDelete:
				_, _ = w.Write([]byte(`{"ok":true}`))
			}
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		dm := newTestManager(t, server.URL)
		require.NoError(t, dm.Init(ctx))

		created, err := dm.AddMagazine(ctx, Magazine{Title: "جدید", Month: 2, Year: 1404, CoverImage: "c.jpg"})
		require.NoError(t, err)
		assert.Equal(t, 11, created.ID)

		require.NotNil(t, dm.MagazineByID(11))

		require.NoError(t, dm.DeleteMagazine(ctx, 11))
		assert.Nil(t, dm.MagazineByID(11))
	})

	t.Run("DeleteSendsFormEncodedBody", func(t *testing.T) {
		var gotContentType, gotBody string
		mux := http.NewServeMux()
		mux.HandleFunc("/api/magazines", func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			body, _ := io.ReadAll(r.Body)
			gotBody = string(body)
			_, _ = w.Write([]byte(`{"ok":true}`))
		})
		server := httptest.NewServer(mux)
		t.Cleanup(server.Close)

		dm := newTestManager(t, server.URL)
		require.NoError(t, dm.Init(ctx))

		require.NoError(t, dm.DeleteMagazine(ctx, 3))
		assert.Equal(t, "application/x-www-form-urlencoded", gotContentType)
		assert.Equal(t, "id=3", gotBody)
	})
}

func TestSettings_EncodeOmitsAbsentSocial(t *testing.T) {
	out, err := json.Marshal(Settings{SiteName: "مجله"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"siteName":"مجله"}`, string(out))

	var s Settings
	require.NoError(t, json.Unmarshal([]byte(`{"siteName":"مجله","social":{"telegram":"https://t.me/x"}}`), &s))
	require.NotNil(t, s.Social)
	assert.Equal(t, "https://t.me/x", s.Social.Telegram)

	out, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(out), `"social"`)
}

func TestSettings_Alternates(t *testing.T) {
	s := Settings{TaglineText: "متن شعار", Logo: "logo.png"}
	assert.Equal(t, "متن شعار", s.TaglineValue())
	assert.Equal(t, "logo.png", s.LogoValue())

	s.Tagline = "شعار اصلی"
	s.LogoURL = "https://x.com/logo.svg"
	assert.Equal(t, "شعار اصلی", s.TaglineValue())
	assert.Equal(t, "https://x.com/logo.svg", s.LogoValue())
}

func TestArticle_AuthorShapes(t *testing.T) {
	t.Run("StringAuthor", func(t *testing.T) {
		var a Article
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"t","author":"سارا محمدی"}`), &a))
		assert.Equal(t, "سارا محمدی", a.Author.Name)
		assert.Nil(t, a.Author.Fields)
	})

	t.Run("ObjectAuthorKeepsPhotoFields", func(t *testing.T) {
		var a Article
		payload := `{"id":1,"title":"t","author":{"name":"رضا","avatar":"avatar.jpg","bio":"نویسنده"}}`
		require.NoError(t, json.Unmarshal([]byte(payload), &a))
		assert.Equal(t, "رضا", a.Author.Name)
		assert.Equal(t, "avatar.jpg", a.Author.Fields["avatar"])
	})

	t.Run("UnknownStringFieldsKeptOnArticle", func(t *testing.T) {
		var a Article
		payload := `{"id":1,"title":"t","author":"x","authorPhoto":"photo.png","views":12}`
		require.NoError(t, json.Unmarshal([]byte(payload), &a))
		assert.Equal(t, "photo.png", a.Fields["authorPhoto"])
		assert.NotContains(t, a.Fields, "views", "non-string fields are not collected")
	})

	t.Run("RoundTripIsLossless", func(t *testing.T) {
		payload := `{"id":1,"title":"t","author":"x","authorPhoto":"photo.png"}`
		var a Article
		require.NoError(t, json.Unmarshal([]byte(payload), &a))

		out, err := json.Marshal(a)
		require.NoError(t, err)
		assert.JSONEq(t, payload, string(out))
	})
}
