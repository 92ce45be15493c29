package routes

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/handlers"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/store"
	"CONTACTS_BACK-END/internal/utils"
)

type readiness struct{ ready bool }

func (r *readiness) Ready() bool { return r.ready }

type fixture struct {
	handler http.Handler
	db      *readiness
	mem     *store.Memory
}

func newFixture(t *testing.T, mutate func(*Deps)) *fixture {
	t.Helper()
	mem := store.NewMemory()
	db := &readiness{ready: true}
	tokens := middleware.NewTokenManager(&config.JWTConfig{Secret: "routes-secret", AccessTokenTTL: 24 * time.Hour})

	deps := Deps{
		Health:   handlers.NewHealthHandler(db),
		Auth:     handlers.NewAuthHandler(mem.Users(), utils.NewPasswordHasher(10), tokens, &config.AuthConfig{}),
		Contacts: handlers.NewContactHandler(mem.Contacts(), false),
		Tokens:   tokens,
		DB:       db,
	}
	if mutate != nil {
		mutate(&deps)
	}

	h, err := New(deps)
	require.NoError(t, err)
	return &fixture{handler: h, db: db, mem: mem}
}

func (f *fixture) do(t *testing.T, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(middleware.AuthHeader, token)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func bodyMap(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &m), rec.Body.String())
	return m
}

func TestNew_RequiresDeps(t *testing.T) {
	_, err := New(Deps{})
	assert.Error(t, err)
}

func TestAPIStatus(t *testing.T) {
	f := newFixture(t, nil)
	for _, path := range []string{"/api", "/api/"} {
		rec := f.do(t, http.MethodGet, path, "", "")
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.JSONEq(t, `{"message":"API is running"}`, rec.Body.String())
	}
}

func TestUnknownRouteAndMethod(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodGet, "/api/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"success":false,"message":"Not Found","code":"not_found"}`, rec.Body.String())

	rec = f.do(t, http.MethodDelete, "/api/user/login", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, false, bodyMap(t, rec)["success"])
}

func TestDatabaseDown_FailsFast(t *testing.T) {
	f := newFixture(t, nil)
	f.db.ready = false

	rec := f.do(t, http.MethodPost, "/api/user/login", `{"email":"a","password":"b"}`, "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "db_unavailable", bodyMap(t, rec)["code"])

	rec = f.do(t, http.MethodGet, "/api/contact/userid/x", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api", "", "").Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/healthz", "", "").Code)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodGet, "/readyz", "", "").Code)
}

func TestEndToEnd_RegisterLoginCreateList(t *testing.T) {
	f := newFixture(t, nil)

	rec := f.do(t, http.MethodPost, "/api/user/register", `{"name":"Ada","email":"ada@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	userID := bodyMap(t, rec)["user"].(map[string]any)["id"].(string)

	rec = f.do(t, http.MethodPost, "/api/user/login", `{"email":"ada@example.com","password":"pw"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	token := bodyMap(t, rec)["token"].(string)

	rec = f.do(t, http.MethodGet, "/api/user/profile", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/contact/new", `{"name":"Bob","email":"bob@x","phone":"1"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/contact/new", `{"name":"Bob","email":"bob@x","phone":"1"}`, token)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/contact/userid/"+userID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := bodyMap(t, rec)["userContact"].([]any)
	require.Len(t, list, 1)
	assert.Equal(t, userID, list[0].(map[string]any)["user"])
}

func TestListRequiresAuth(t *testing.T) {
	f := newFixture(t, func(d *Deps) { d.ListRequiresAuth = true })
	rec := f.do(t, http.MethodGet, "/api/contact/userid/whatever", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleRoutesMountedOnlyWhenConfigured(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/user/google/login", "", "").Code)
}

func TestRateLimitOnCredentials(t *testing.T) {
	f := newFixture(t, func(d *Deps) {
		d.RateLimit = config.RateLimitConfig{Enabled: true, Limit: 2, Window: time.Minute}
	})

	var last int
	for range 3 {
		last = f.do(t, http.MethodPost, "/api/user/login", `{"email":"a@x","password":"b"}`, "").Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)

	// other endpoints are not throttled
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/contact/userid/x", "", "").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodGet, "/api", "", "")

	rec := f.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "contacts_api_http_requests_total")
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))
	f := newFixture(t, func(d *Deps) { d.StaticDir = dir })

	rec := f.do(t, http.MethodGet, "/contacts/42", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "app")

	rec = f.do(t, http.MethodGet, "/app.js", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "console.log")

	rec = f.do(t, http.MethodGet, "/api/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	preflight := func(h http.Handler, origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/contact/new", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Auth, Content-Type")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	dev := NewCORS(config.CORSConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Auth"},
	}).Handler(ok)
	assert.Equal(t, "http://localhost:5173", preflight(dev, "http://localhost:5173").Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, preflight(dev, "http://evil.example").Header().Get("Access-Control-Allow-Origin"))

	reflecting := NewCORS(config.CORSConfig{
		ReflectOrigin:  true,
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Content-Type", "Auth"},
	}).Handler(ok)
	rec := preflight(reflecting, "https://app.example")
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Credentials"))
	assert.Empty(t, preflight(dev, "http://localhost:5173").Header().Get("Access-Control-Allow-Credentials"))
}
