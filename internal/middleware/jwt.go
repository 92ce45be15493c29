package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"CONTACTS_BACK-END/internal/apperr"
	"CONTACTS_BACK-END/internal/config"
	"CONTACTS_BACK-END/internal/utils"
)

// AuthHeader carries the raw session token, without a "Bearer" prefix.
const AuthHeader = "Auth"

const stateSubject = "oauth_state"

// ErrSigningKeyMissing is returned when no JWT secret is configured.
var ErrSigningKeyMissing = errors.New("jwt signing secret is not configured")

// JWTClaims represents the claims in the session token
type JWTClaims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HS256 session tokens.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	stateTTL time.Duration
	now      func() time.Time
}

// NewTokenManager builds a TokenManager from the JWT settings
func NewTokenManager(cfg *config.JWTConfig) *TokenManager {
	stateTTL := cfg.StateTokenTTL
	if stateTTL <= 0 {
		stateTTL = 10 * time.Minute
	}
	return &TokenManager{
		secret:   []byte(cfg.Secret),
		ttl:      cfg.AccessTokenTTL,
		stateTTL: stateTTL,
		now:      time.Now,
	}
}

// TTL returns the lifetime of issued session tokens
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// GenerateToken generates a session token bound to userID
func (m *TokenManager) GenerateToken(userID uuid.UUID) (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSigningKeyMissing
	}

	now := m.now()
	claims := JWTClaims{
		UserID: userID.String(),
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// ValidateToken verifies signature and expiry and returns the claims.
// Failures are apperr unauthorized errors.
func (m *TokenManager) ValidateToken(tokenString string) (*JWTClaims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Subject == stateSubject {
		return nil, apperr.ErrTokenInvalid()
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, apperr.ErrTokenInvalid()
	}
	return claims, nil
}

// GenerateStateToken signs a short-lived OAuth state value
func (m *TokenManager) GenerateStateToken() (string, error) {
	if len(m.secret) == 0 {
		return "", ErrSigningKeyMissing
	}

	now := m.now()
	claims := JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   stateSubject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.stateTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// ValidateStateToken checks an OAuth state value produced by GenerateStateToken
func (m *TokenManager) ValidateStateToken(state string) error {
	claims, err := m.parse(state)
	if err != nil {
		return err
	}
	if claims.Subject != stateSubject {
		return apperr.ErrTokenInvalid()
	}
	return nil
}

func (m *TokenManager) parse(tokenString string) (*JWTClaims, error) {
	if len(m.secret) == 0 {
		return nil, apperr.ErrTokenInvalid()
	}

	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperr.ErrTokenExpired()
		}
		return nil, apperr.ErrTokenInvalid()
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		return nil, apperr.ErrTokenInvalid()
	}
	return claims, nil
}

// AuthMiddleware verifies the session token in the Auth header and puts the
// user id into the request context. Rejected requests never reach next.
func AuthMiddleware(tm *TokenManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(AuthHeader))
			if raw == "" {
				utils.WriteError(w, r, apperr.ErrTokenMissing())
				return
			}

			claims, err := tm.ValidateToken(raw)
			if err != nil {
				utils.WriteError(w, r, err)
				return
			}

			userID, _ := uuid.Parse(claims.UserID)
			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
