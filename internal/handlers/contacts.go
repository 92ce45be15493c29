package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/dto"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/models"
	"CONTACTS_BACK-END/internal/utils"
)

// ContactRepository is the contact store used by ContactHandler
type ContactRepository interface {
	Create(ctx context.Context, c *models.Contact) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Contact, error)
}

// ContactHandler serves the contact endpoints
type ContactHandler struct {
	contacts         ContactRepository
	listRequiresAuth bool
}

// NewContactHandler creates a ContactHandler. When listRequiresAuth is set,
// listing is limited to the caller's own id.
func NewContactHandler(contacts ContactRepository, listRequiresAuth bool) *ContactHandler {
	return &ContactHandler{contacts: contacts, listRequiresAuth: listRequiresAuth}
}

// Create godoc
// @Summary      Create contact
// @Description  Save a contact owned by the authenticated user
// @Tags         contact
// @Accept       json
// @Produce      json
// @Security     AuthHeader
// @Param        payload  body      dto.CreateContactRequest  true  "Contact payload"
// @Success      201      {object}  dto.CreateContactResponse
// @Failure      400      {object}  dto.ErrorResponse
// @Failure      401      {object}  dto.ErrorResponse
// @Failure      503      {object}  dto.ErrorResponse
// @Router       /api/contact/new [post]
func (h *ContactHandler) Create(r *http.Request) (utils.Response, error) {
	ownerID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return utils.Response{}, apperr.ErrTokenMissing()
	}

	var req dto.CreateContactRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return utils.Response{}, err
	}
	if err := utils.ValidateRequest(req, missingFieldsMsg); err != nil {
		return utils.Response{}, err
	}

	contact := &models.Contact{
		ID:        uuid.New(),
		OwnerID:   ownerID,
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Type:      models.ContactPersonal,
		CreatedAt: time.Now().UTC(),
	}
	if req.Type != "" {
		contact.Type = models.ContactType(req.Type)
	}

	if err := h.contacts.Create(r.Context(), contact); err != nil {
		return utils.Response{}, err
	}
	middleware.ContactsCreatedTotal.Inc()

	return utils.Created(dto.CreateContactResponse{
		Success: true,
		Message: "Contact saved successfully",
		Contact: toContactResponse(contact),
	}), nil
}

// ListByUser godoc
// @Summary      List contacts of a user
// @Description  Return every contact owned by the given user id
// @Tags         contact
// @Produce      json
// @Param        id   path      string  true  "Owner user id"
// @Success      200  {object}  dto.UserContactsResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/contact/userid/{id} [get]
func (h *ContactHandler) ListByUser(r *http.Request) (utils.Response, error) {
	raw := chi.URLParam(r, "id")
	ownerID, parseErr := uuid.Parse(raw)

	if h.listRequiresAuth {
		caller, ok := middleware.UserIDFromContext(r.Context())
		if !ok {
			return utils.Response{}, apperr.ErrTokenMissing()
		}
		if parseErr != nil || caller != ownerID {
			return utils.Response{}, apperr.ErrForbidden("You can only list your own contacts")
		}
	}

	out := []dto.ContactResponse{}
	if parseErr == nil {
		contacts, err := h.contacts.ListByOwner(r.Context(), ownerID)
		if err != nil {
			return utils.Response{}, err
		}
		for i := range contacts {
			out = append(out, toContactResponse(&contacts[i]))
		}
	}

	return utils.OK(dto.UserContactsResponse{
		Success:     true,
		Message:     "User specific contacts",
		UserContact: out,
	}), nil
}

func toContactResponse(c *models.Contact) dto.ContactResponse {
	return dto.ContactResponse{
		ID:        c.ID.String(),
		User:      c.OwnerID.String(),
		Name:      c.Name,
		Email:     c.Email,
		Phone:     c.Phone,
		Type:      string(c.Type),
		CreatedAt: c.CreatedAt.Format(time.RFC3339),
	}
}
