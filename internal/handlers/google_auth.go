package handlers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	googleOAuth2 "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/dto"
	"CONTACTS_BACK-END/internal/middleware"
	"CONTACTS_BACK-END/internal/models"
	"CONTACTS_BACK-END/internal/utils"
)

// GoogleProvider abstracts the OAuth round trip with Google
type GoogleProvider interface {
	AuthCodeURL(state string) string
	// UserInfo exchanges the authorization code and fetches the profile.
	UserInfo(ctx context.Context, code string) (*dto.GoogleUserInfo, error)
}

// GoogleAuthHandler handles Google OAuth authentication
type GoogleAuthHandler struct {
	users       UserRepository
	tokens      *middleware.TokenManager
	provider    GoogleProvider
	frontendURL string
}

// NewGoogleAuthHandler creates a new GoogleAuthHandler instance
func NewGoogleAuthHandler(users UserRepository, tokens *middleware.TokenManager, provider GoogleProvider, cfg *config.GoogleOAuthConfig) *GoogleAuthHandler {
	return &GoogleAuthHandler{
		users:       users,
		tokens:      tokens,
		provider:    provider,
		frontendURL: cfg.FrontendCallbackURL,
	}
}

// GoogleLogin initiates Google OAuth login
// @Summary Google OAuth login
// @Description Initiate Google OAuth login flow
// @Tags user
// @Produce json
// @Success 200 {object} dto.GoogleLoginResponse "Google OAuth URL"
// @Router /api/user/google/login [get]
func (h *GoogleAuthHandler) GoogleLogin(r *http.Request) (utils.Response, error) {
	// Signed state for CSRF protection; no server-side storage needed.
	state, err := h.tokens.GenerateStateToken()
	if err != nil {
		return utils.Response{}, apperr.ErrInternal(err)
	}

	return utils.OK(dto.GoogleLoginResponse{
		AuthURL: h.provider.AuthCodeURL(state),
		State:   state,
	}), nil
}

// GoogleCallback handles Google OAuth callback
// @Summary Google OAuth callback
// @Description Handle Google OAuth callback and redirect to the frontend with a session token
// @Tags user
// @Param code query string true "Authorization code from Google"
// @Param state query string true "State returned by the login endpoint"
// @Success 302 "Redirect to frontend with token"
// @Failure 400 {object} dto.ErrorResponse "Missing authorization code"
// @Failure 401 {object} dto.ErrorResponse "Invalid state or authorization code"
// @Router /api/user/google/callback [get]
func (h *GoogleAuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		utils.WriteError(w, r, apperr.ErrMissingFields("Authorization code is required"))
		return
	}
	if err := h.tokens.ValidateStateToken(r.URL.Query().Get("state")); err != nil {
		utils.WriteError(w, r, err)
		return
	}

	info, err := h.provider.UserInfo(r.Context(), code)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}
	if !info.Verified || info.Email == "" {
		utils.WriteError(w, r, apperr.ErrForbidden("Google account email is not verified"))
		return
	}

	user, err := h.findOrCreate(r.Context(), info)
	if err != nil {
		utils.WriteError(w, r, err)
		return
	}

	token, err := h.tokens.GenerateToken(user.ID)
	if err != nil {
		utils.WriteError(w, r, apperr.ErrInternal(err))
		return
	}

	// Redirect to frontend with token
	redirect, err := url.Parse(h.frontendURL)
	if err != nil {
		utils.WriteError(w, r, apperr.ErrInternal(err))
		return
	}
	q := redirect.Query()
	q.Set("token", token)
	q.Set("provider", "google")
	redirect.RawQuery = q.Encode()

	http.Redirect(w, r, redirect.String(), http.StatusFound)
}

// findOrCreate returns the user with the Google email, creating a
// password-less account on first sign-in.
func (h *GoogleAuthHandler) findOrCreate(ctx context.Context, info *dto.GoogleUserInfo) (*models.User, error) {
	user, err := h.users.GetByEmail(ctx, info.Email)
	if err == nil {
		return user, nil
	}
	if !apperr.Is(err, "user_not_found") {
		return nil, err
	}

	name := info.Name
	if name == "" {
		name = info.Email
	}
	user = &models.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     info.Email,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent first sign-in.
		if apperr.Is(err, "user_exists") {
			return h.users.GetByEmail(ctx, info.Email)
		}
		return nil, err
	}
	return user, nil
}

// googleOAuthProvider talks to Google's OAuth and userinfo endpoints
type googleOAuthProvider struct {
	oauth2Config *oauth2.Config
}

// NewGoogleProvider builds the production GoogleProvider
func NewGoogleProvider(cfg *config.GoogleOAuthConfig) GoogleProvider {
	return &googleOAuthProvider{
		oauth2Config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
	}
}

func (p *googleOAuthProvider) AuthCodeURL(state string) string {
	return p.oauth2Config.AuthCodeURL(state)
}

func (p *googleOAuthProvider) UserInfo(ctx context.Context, code string) (*dto.GoogleUserInfo, error) {
	token, err := p.oauth2Config.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindUnauthorized, "invalid_code", "Invalid authorization code", err)
	}

	service, err := googleOAuth2.NewService(ctx, option.WithTokenSource(p.oauth2Config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	userInfo, err := service.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return nil, err
	}

	verified := false
	if userInfo.VerifiedEmail != nil {
		verified = *userInfo.VerifiedEmail
	}

	return &dto.GoogleUserInfo{
		ID:       userInfo.Id,
		Email:    userInfo.Email,
		Name:     userInfo.Name,
		Picture:  userInfo.Picture,
		Verified: verified,
	}, nil
}
