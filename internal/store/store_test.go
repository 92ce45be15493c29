package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/models"
)

// newTestPool starts a throwaway Postgres and applies the migrations.
func newTestPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	container, err := postgres.Run(ctx, "postgres:17",
		postgres.WithDatabase("contacts"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Skipf("postgres container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := NewPool(ctx, &config.DatabaseConfig{
		MaxConns: 5, ConnTimeout: 5 * time.Second, MaxLifetime: time.Hour,
	}, dsn)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	require.NoError(t, Migrate(ctx, pool))
	// Second run is a no-op.
	require.NoError(t, Migrate(ctx, pool))
	return pool
}

func TestUserStore_CreateAndLookup(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserStore(pool, 5*time.Second)
	ctx := context.Background()

	u := &models.User{Name: "Ada", Email: "ada@example.com", PasswordHash: "$2a$10$hash"}
	require.NoError(t, users.Create(ctx, u))
	assert.NotEqual(t, uuid.Nil, u.ID)

	byEmail, err := users.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)
	assert.Equal(t, "$2a$10$hash", byEmail.PasswordHash)

	byID, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ada", byID.Name)

	// Case-sensitive as stored.
	_, err = users.GetByEmail(ctx, "ADA@example.com")
	assert.True(t, apperr.Is(err, "user_not_found"))
}

func TestUserStore_DuplicateEmailRejectedWithoutMutation(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserStore(pool, 5*time.Second)
	ctx := context.Background()

	require.NoError(t, users.Create(ctx, &models.User{Name: "A", Email: "dup@example.com", PasswordHash: "h"}))
	err := users.Create(ctx, &models.User{Name: "B", Email: "dup@example.com", PasswordHash: "h"})
	assert.True(t, apperr.Is(err, "user_exists"))

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM users WHERE email = $1", "dup@example.com").Scan(&n))
	assert.Equal(t, 1, n)
}

func TestUserStore_ConcurrentRegistrationsSameEmail(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserStore(pool, 5*time.Second)
	ctx := context.Background()

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = users.Create(ctx, &models.User{Name: "racer", Email: "race@example.com", PasswordHash: "h"})
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
		} else {
			assert.True(t, apperr.Is(err, "user_exists"), "unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
}

func TestContactStore_CreateAndListByOwner(t *testing.T) {
	pool := newTestPool(t)
	users := NewUserStore(pool, 5*time.Second)
	contacts := NewContactStore(pool, 5*time.Second)
	ctx := context.Background()

	owner := &models.User{Name: "Owner", Email: "owner@example.com", PasswordHash: "h"}
	other := &models.User{Name: "Other", Email: "other@example.com", PasswordHash: "h"}
	require.NoError(t, users.Create(ctx, owner))
	require.NoError(t, users.Create(ctx, other))

	base := time.Now().UTC().Truncate(time.Millisecond)
	var want []uuid.UUID
	for i, name := range []string{"first", "second", "third"} {
		c := &models.Contact{OwnerID: owner.ID, Name: name, Email: name + "@x.io", Phone: "555", CreatedAt: base.Add(time.Duration(i) * time.Second)}
		require.NoError(t, contacts.Create(ctx, c))
		want = append(want, c.ID)
	}
	require.NoError(t, contacts.Create(ctx, &models.Contact{OwnerID: other.ID, Name: "x", Email: "x", Phone: "1", Type: models.ContactProfessional}))

	got, err := contacts.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, got, 3)
	for i, c := range got {
		assert.Equal(t, want[i], c.ID)
		assert.Equal(t, owner.ID, c.OwnerID)
		assert.Equal(t, models.ContactPersonal, c.Type)
	}

	again, err := contacts.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, got, again, "order is stable")

	empty, err := contacts.ListByOwner(ctx, uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestMonitor_AgainstLivePool(t *testing.T) {
	pool := newTestPool(t)
	m := NewMonitor(pool, time.Second, 2*time.Second, func(ctx context.Context) error {
		return Migrate(ctx, pool)
	})
	assert.True(t, m.Check(context.Background()))
}
