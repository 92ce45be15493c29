package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/dto"
	"CONTACTS_BACK-END/internal/handlers"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/routes"
	"CONTACTS_BACK-END/internal/store"
	"CONTACTS_BACK-END/internal/utils"
)

const testSecret = "client-secret"

type alwaysReady struct{}

func (alwaysReady) Ready() bool { return true }

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	mem := store.NewMemory()
	tokens := middleware.NewTokenManager(&config.JWTConfig{Secret: testSecret, AccessTokenTTL: 24 * time.Hour})

	h, err := routes.New(routes.Deps{
		Health:   handlers.NewHealthHandler(alwaysReady{}),
		Auth:     handlers.NewAuthHandler(mem.Users(), utils.NewPasswordHasher(10), tokens, &config.AuthConfig{}),
		Contacts: handlers.NewContactHandler(mem.Contacts(), false),
		Tokens:   tokens,
		DB:       alwaysReady{},
	})
	require.NoError(t, err)

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	return New(baseURL, nil, NewSessionStore(filepath.Join(t.TempDir(), "nested", TokenFileName)))
}

func TestClient_RegisterLoginContacts(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	reg, err := c.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)
	assert.True(t, reg.Success)

	_, err = c.CreateContact(ctx, dto.CreateContactRequest{Name: "x", Email: "x", Phone: "1"})
	assert.ErrorIs(t, err, ErrNoSession)

	login, err := c.Login(ctx, "ada@example.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "Welcome Ada", login.Message)

	info, err := os.Stat(c.Session().Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	sess, err := c.Session().Current()
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, sess.UserID.String())
	assert.Equal(t, 24*time.Hour, sess.ExpiresAt.Sub(sess.IssuedAt))

	list, err := c.ListContacts(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	for _, name := range []string{"Bob", "Cy"} {
		_, err := c.CreateContact(ctx, dto.CreateContactRequest{Name: name, Email: name + "@x", Phone: "1"})
		require.NoError(t, err)
	}
	list, err = c.ListContacts(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bob", list[0].Name)
	assert.Equal(t, "Cy", list[1].Name)

	profile, err := c.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", profile.User.Email)

	require.NoError(t, c.Logout())
	_, err = c.ListContacts(ctx)
	assert.True(t, IsUnauthorized(err))
	require.NoError(t, c.Logout(), "logout twice is fine")
}

func TestClient_APIErrors(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)
	ctx := context.Background()

	_, err := c.Register(ctx, "Ada", "ada@example.com", "pw")
	require.NoError(t, err)

	_, err = c.Register(ctx, "Ada", "ada@example.com", "pw")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "user_exists", apiErr.Code)

	_, err = c.Login(ctx, "ada@example.com", "wrong")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, "Invalid password", apiErr.Message)

	_, err = c.Session().Load()
	assert.ErrorIs(t, err, ErrNoSession, "failed login stores nothing")
}

func TestClient_RejectedTokenIsDiscarded(t *testing.T) {
	srv := newTestServer(t)
	c := newTestClient(t, srv.URL)

	forged, err := middleware.NewTokenManager(&config.JWTConfig{Secret: "other", AccessTokenTTL: time.Hour}).GenerateToken(uuid.New())
	require.NoError(t, err)
	require.NoError(t, c.Session().Save(forged))

	_, err = c.CreateContact(context.Background(), dto.CreateContactRequest{Name: "x", Email: "x", Phone: "1"})
	assert.True(t, IsUnauthorized(err))

	_, err = c.Session().Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_ExpiredTokenIsCleared(t *testing.T) {
	s := NewSessionStore(filepath.Join(t.TempDir(), TokenFileName))
	tm := middleware.NewTokenManager(&config.JWTConfig{Secret: testSecret, AccessTokenTTL: time.Hour})
	token, err := tm.GenerateToken(uuid.New())
	require.NoError(t, err)
	require.NoError(t, s.Save(token))

	_, err = s.Current()
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.Current()
	assert.ErrorIs(t, err, ErrSessionExpired)

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestSessionStore_MalformedToken(t *testing.T) {
	s := NewSessionStore(filepath.Join(t.TempDir(), TokenFileName))
	require.NoError(t, s.Save("garbage"))

	_, err := s.Current()
	assert.Error(t, err)
	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoSession)
}

func TestDefaultTokenPath_EnvOverride(t *testing.T) {
	want := filepath.Join(t.TempDir(), "tok")
	t.Setenv(TokenFileEnv, want)

	got, err := DefaultTokenPath()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
