package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/models"
)

// Memory is an in-process store with the same contract as UserStore and
// ContactStore. It backs handler and client tests.
type Memory struct {
	mu       sync.Mutex
	users    map[uuid.UUID]models.User
	byEmail  map[string]uuid.UUID
	contacts []models.Contact
}

func NewMemory() *Memory {
	return &Memory{
		users:   make(map[uuid.UUID]models.User),
		byEmail: make(map[string]uuid.UUID),
	}
}

// Users returns the credential-store view of m
func (m *Memory) Users() *MemoryUsers { return &MemoryUsers{m} }

// Contacts returns the contact-store view of m
func (m *Memory) Contacts() *MemoryContacts { return &MemoryContacts{m} }

// UserCount returns the number of stored users
func (m *Memory) UserCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.users)
}

// ContactCount returns the number of stored contacts
func (m *Memory) ContactCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.contacts)
}

type MemoryUsers struct{ m *Memory }

func (s *MemoryUsers) Create(ctx context.Context, u *models.User) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if _, ok := s.m.byEmail[u.Email]; ok {
		return apperr.ErrEmailTaken()
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	s.m.users[u.ID] = *u
	s.m.byEmail[u.Email] = u.ID
	return nil
}

func (s *MemoryUsers) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	id, ok := s.m.byEmail[email]
	if !ok {
		return nil, apperr.ErrUserNotFound()
	}
	u := s.m.users[id]
	return &u, nil
}

func (s *MemoryUsers) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	u, ok := s.m.users[id]
	if !ok {
		return nil, apperr.ErrUserNotFound()
	}
	return &u, nil
}

type MemoryContacts struct{ m *Memory }

func (s *MemoryContacts) Create(ctx context.Context, c *models.Contact) error {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Type == "" {
		c.Type = models.ContactPersonal
	}
	s.m.contacts = append(s.m.contacts, *c)
	return nil
}

func (s *MemoryContacts) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	s.m.mu.Lock()
	defer s.m.mu.Unlock()

	out := []models.Contact{}
	for _, c := range s.m.contacts {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
