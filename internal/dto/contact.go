package dto

// CreateContactRequest is the body of POST /api/contact/new.
// Ownership comes from the session token, never from the body.
type CreateContactRequest struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required"`
	Phone string `json:"phone" validate:"required"`
	Type  string `json:"type" validate:"omitempty,oneof=personal professional"`
}

// ContactResponse represents a contact in API responses
type ContactResponse struct {
	ID        string `json:"id"`
	User      string `json:"user"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Type      string `json:"type"`
	CreatedAt string `json:"created_at"`
}

// CreateContactResponse is returned after a contact is saved
type CreateContactResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Contact ContactResponse `json:"contact"`
}

// UserContactsResponse lists the contacts owned by one user
type UserContactsResponse struct {
	Success     bool              `json:"success"`
	Message     string            `json:"message"`
	UserContact []ContactResponse `json:"userContact"`
}
