package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/dto"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/models"
	"CONTACTS_BACK-END/internal/utils"
)

const missingFieldsMsg = "All fields are required"

// UserRepository is the credential store used by the auth handlers
type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users         UserRepository
	hasher        *utils.PasswordHasher
	tokens        *middleware.TokenManager
	uniformErrors bool
}

// NewAuthHandler creates a new AuthHandler instance
func NewAuthHandler(users UserRepository, hasher *utils.PasswordHasher, tokens *middleware.TokenManager, cfg *config.AuthConfig) *AuthHandler {
	return &AuthHandler{
		users:         users,
		hasher:        hasher,
		tokens:        tokens,
		uniformErrors: cfg.UniformLoginErrors,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a new user account with name, email, and password
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "User registration data"
// @Success 201 {object} dto.RegisterResponse "User created successfully"
// @Failure 400 {object} dto.ErrorResponse "Missing fields"
// @Failure 409 {object} dto.ErrorResponse "User already exists"
// @Failure 503 {object} dto.ErrorResponse "Database not connected"
// @Router /api/user/register [post]
func (h *AuthHandler) Register(r *http.Request) (utils.Response, error) {
	var req dto.RegisterRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return utils.Response{}, err
	}
	if err := utils.ValidateRequest(req, missingFieldsMsg); err != nil {
		middleware.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return utils.Response{}, err
	}

	// The unique index stays authoritative.
	if _, err := h.users.GetByEmail(r.Context(), req.Email); err == nil {
		middleware.RegistrationsTotal.WithLabelValues("conflict").Inc()
		return utils.Response{}, apperr.ErrEmailTaken()
	} else if !apperr.Is(err, "user_not_found") {
		return utils.Response{}, err
	}

	hash, err := h.hasher.Hash(req.Password)
	if err != nil {
		return utils.Response{}, err
	}
	req.Password = ""

	user := &models.User{
		ID:           uuid.New(),
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if apperr.Is(err, "user_exists") {
			middleware.RegistrationsTotal.WithLabelValues("conflict").Inc()
		}
		return utils.Response{}, err
	}

	middleware.RegistrationsTotal.WithLabelValues("success").Inc()
	return utils.Created(dto.RegisterResponse{
		Success: true,
		Message: "User created successfully",
		User:    toUserResponse(user),
	}), nil
}

// Login handles user login
// @Summary Login user
// @Description Authenticate with email and password and receive a session token
// @Tags user
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.LoginResponse "Login successful"
// @Failure 400 {object} dto.ErrorResponse "Missing fields or invalid password"
// @Failure 404 {object} dto.ErrorResponse "User does not exist"
// @Failure 503 {object} dto.ErrorResponse "Database not connected"
// @Router /api/user/login [post]
func (h *AuthHandler) Login(r *http.Request) (utils.Response, error) {
	var req dto.LoginRequest
	if err := utils.DecodeJSON(r, &req); err != nil {
		return utils.Response{}, err
	}
	if err := utils.ValidateRequest(req, missingFieldsMsg); err != nil {
		middleware.LoginAttemptsTotal.WithLabelValues("invalid").Inc()
		return utils.Response{}, err
	}

	user, err := h.users.GetByEmail(r.Context(), req.Email)
	if err != nil {
		if apperr.Is(err, "user_not_found") {
			middleware.LoginAttemptsTotal.WithLabelValues("user_not_found").Inc()
			if h.uniformErrors {
				return utils.Response{}, apperr.ErrInvalidPassword()
			}
		}
		return utils.Response{}, err
	}

	if !user.HasPassword() {
		middleware.LoginAttemptsTotal.WithLabelValues("invalid_password").Inc()
		return utils.Response{}, apperr.ErrInvalidPassword()
	}
	ok, err := h.hasher.Compare(user.PasswordHash, req.Password)
	if err != nil {
		return utils.Response{}, err
	}
	if !ok {
		middleware.LoginAttemptsTotal.WithLabelValues("invalid_password").Inc()
		return utils.Response{}, apperr.ErrInvalidPassword()
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		return utils.Response{}, apperr.ErrInternal(err)
	}

	middleware.LoginAttemptsTotal.WithLabelValues("success").Inc()
	return utils.OK(dto.LoginResponse{
		Success: true,
		Message: "Welcome " + user.Name,
		Token:   token,
	}), nil
}

// GetProfile returns the current user's profile
// @Summary Get user profile
// @Description Get the authenticated user's record
// @Tags user
// @Produce json
// @Security AuthHeader
// @Success 200 {object} dto.ProfileResponse
// @Failure 401 {object} dto.ErrorResponse "Unauthorized"
// @Failure 404 {object} dto.ErrorResponse "User not found"
// @Router /api/user/profile [get]
func (h *AuthHandler) GetProfile(r *http.Request) (utils.Response, error) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		return utils.Response{}, apperr.ErrTokenMissing()
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		return utils.Response{}, err
	}

	return utils.OK(dto.ProfileResponse{Success: true, User: toUserResponse(user)}), nil
}

func toUserResponse(u *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt.Format(time.RFC3339),
	}
}
