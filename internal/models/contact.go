package models

import (
	"time"

	"github.com/google/uuid"
)

// ContactType is the category of a contact entry
type ContactType string

const (
	ContactPersonal     ContactType = "personal"
	ContactProfessional ContactType = "professional"
)

// Valid reports whether t is one of the known contact types
func (t ContactType) Valid() bool {
	return t == ContactPersonal || t == ContactProfessional
}

// Contact is an address-book entry owned by exactly one user
type Contact struct {
	ID        uuid.UUID   `json:"id" db:"id"`
	OwnerID   uuid.UUID   `json:"user" db:"owner_id"`
	Name      string      `json:"name" db:"name"`
	Email     string      `json:"email" db:"email"`
	Phone     string      `json:"phone" db:"phone"`
	Type      ContactType `json:"type" db:"type"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
}
