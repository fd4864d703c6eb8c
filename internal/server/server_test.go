package server

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/naka-gawa/portfolio-feed/internal/gateway"
	"github.com/naka-gawa/portfolio-feed/internal/store"
	"github.com/naka-gawa/portfolio-feed/internal/usecase"
	"github.com/naka-gawa/portfolio-feed/internal/view"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const alphaBody = `[{"name":"alpha","html_url":"https://github.com/any-user/alpha","stargazers_count":10,"updated_at":"2024-01-01T00:00:00Z","topics":["go"]}]`

// setupTestServer builds the full stack against a fake GitHub API.
func setupTestServer(t *testing.T, githubHandler http.HandlerFunc) (*Server, store.Store) {
	t.Helper()
	github := httptest.NewServer(githubHandler)
	t.Cleanup(github.Close)

	logger := log.New(io.Discard, "", 0)
	gw, err := gateway.NewGitHubGateway(github.URL, 5*time.Second, logger)
	require.NoError(t, err)
	loader := usecase.NewFeedLoader(gw, "any-user", usecase.Renderer{DateLayout: "1/2/2006"}, logger)
	prefs := store.NewMemoryStore()

	srv := New(Config{
		Addr:  ":0",
		Map:   view.DefaultMapSettings(),
		Globe: view.DefaultGlobeSettings(),
	}, loader, prefs, logger)
	srv.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return srv, prefs
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestPage(t *testing.T) {
	testCases := []struct {
		name          string
		githubHandler http.HandlerFunc
		expectedCards int
		contains      []string
	}{
		{
			name: "cards",
			githubHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, alphaBody)
			},
			expectedCards: 1,
			contains:      []string{"<h3>alpha</h3>", "Mixed", `<span class="pill">go</span>`, "1/1/2024"},
		},
		{
			name: "empty",
			githubHandler: func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, `[]`)
			},
			contains: []string{usecase.EmptyMessage},
		},
		{
			name: "api failure",
			githubHandler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusServiceUnavailable)
				fmt.Fprint(w, `{"message":"down"}`)
			},
			contains: []string{usecase.ErrorMessage},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := setupTestServer(t, tc.githubHandler)

			w := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))
			require.Equal(t, http.StatusOK, w.Code)
			body := w.Body.String()

			assert.Equal(t, tc.expectedCards, strings.Count(body, `<article class="card">`))
			for _, s := range tc.contains {
				assert.Contains(t, body, s)
			}
			assert.Contains(t, body, `class="light-theme"`)
			assert.Contains(t, body, `<span id="year">2026</span>`)
			assert.NotEmpty(t, w.Result().Cookies(), "a visitor cookie is issued")
		})
	}
}

func TestFeedFragment(t *testing.T) {
	srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, alphaBody)
	})

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/repos", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, strings.Count(w.Body.String(), `<article class="card">`))
	assert.NotContains(t, w.Body.String(), "<html")
}

func TestFeedJSON(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, alphaBody)
		})
		w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/repos", nil))
		require.Equal(t, http.StatusOK, w.Code)

		var body feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		require.Len(t, body.Repos, 1)
		assert.Equal(t, "alpha", body.Repos[0].Name)
		assert.Empty(t, body.Error)
	})

	t.Run("failure", func(t *testing.T) {
		srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})
		w := serve(srv, httptest.NewRequest(http.MethodGet, "/api/repos", nil))
		require.Equal(t, http.StatusBadGateway, w.Code)

		var body feedResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Empty(t, body.Repos)
		assert.Equal(t, usecase.ErrorMessage, body.Error)
	})
}

func TestThemeToggle(t *testing.T) {
	srv, prefs := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[]`)
	})

	first := serve(srv, httptest.NewRequest(http.MethodPost, "/theme/toggle", nil))
	require.Equal(t, http.StatusSeeOther, first.Code)
	assert.Equal(t, "/", first.Header().Get("Location"))
	cookies := first.Result().Cookies()
	require.Len(t, cookies, 1)
	visitor := cookies[0]

	stored, err := prefs.Get(t.Context(), store.Key(visitor.Value, usecase.ThemeKey))
	require.NoError(t, err)
	assert.Equal(t, "dark", stored)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(visitor)
	page := serve(srv, req)
	assert.Contains(t, page.Body.String(), `class="dark-theme"`)
	assert.Contains(t, page.Body.String(), "fa-sun")
	assert.Empty(t, page.Result().Cookies(), "an existing visitor keeps their cookie")

	req = httptest.NewRequest(http.MethodPost, "/theme/toggle", nil)
	req.AddCookie(visitor)
	serve(srv, req)
	stored, err = prefs.Get(t.Context(), store.Key(visitor.Value, usecase.ThemeKey))
	require.NoError(t, err)
	assert.Equal(t, "light", stored)
}

func TestStaticAssets(t *testing.T) {
	srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})

	testCases := []struct {
		path        string
		contentType string
		contains    string
	}{
		{path: "/static/page.js", contentType: "javascript", contains: "dataset.threshold"},
		{path: "/static/page.css", contentType: "text/css", contains: "#scrollTopBtn.show"},
	}
	for _, tc := range testCases {
		t.Run(tc.path, func(t *testing.T) {
			w := serve(srv, httptest.NewRequest(http.MethodGet, tc.path, nil))
			require.Equal(t, http.StatusOK, w.Code)
			assert.Contains(t, w.Header().Get("Content-Type"), tc.contentType)
			assert.Contains(t, w.Body.String(), tc.contains)
		})
	}

	w := serve(srv, httptest.NewRequest(http.MethodGet, "/static/missing.js", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCORSHeaders(t *testing.T) {
	srv, _ := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {})
	srv.cfg.AllowAll = true
	srv.router = srv.buildRouter()

	req := httptest.NewRequest(http.MethodOptions, "/api/repos", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := serve(srv, req)

	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
