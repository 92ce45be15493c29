package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"CONTACTS_BACK-END/internal/models"
)

// ContactStore persists contacts scoped to their owner
type ContactStore struct {
	db      DBTX
	timeout time.Duration
}

func NewContactStore(db DBTX, timeout time.Duration) *ContactStore {
	return &ContactStore{db: db, timeout: timeout}
}

// Create inserts c; c.OwnerID must already be set from the verified token.
func (s *ContactStore) Create(ctx context.Context, c *models.Contact) error {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
INSERT INTO contacts (id, owner_id, name, email, phone, type, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`

	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	if c.Type == "" {
		c.Type = models.ContactPersonal
	}

	if _, err := s.db.Exec(ctx, q, c.ID, c.OwnerID, c.Name, c.Email, c.Phone, string(c.Type), c.CreatedAt); err != nil {
		return mapError("insert contact", err)
	}
	return nil
}

// ListByOwner returns every contact owned by ownerID, oldest first.
// An owner with no contacts yields an empty, non-nil slice.
func (s *ContactStore) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error) {
	ctx, cancel := withTimeout(ctx, s.timeout)
	defer cancel()

	const q = `
SELECT id, owner_id, name, email, phone, type, created_at
FROM contacts
WHERE owner_id = $1
ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, q, ownerID)
	if err != nil {
		return nil, mapError("list contacts", err)
	}

	contacts, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (models.Contact, error) {
		var c models.Contact
		var typ string
		err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.Email, &c.Phone, &typ, &c.CreatedAt)
		c.Type = models.ContactType(typ)
		return c, err
	})
	if err != nil {
		return nil, mapError("scan contacts", err)
	}
	if contacts == nil {
		contacts = []models.Contact{}
	}
	return contacts, nil
}
