package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"CONTACTS_BACK-END/internal/dto"
)

// DefaultBaseURL is the API address used when none is configured
const DefaultBaseURL = "http://localhost:5000"

// APIError is a failure body returned by the API
type APIError struct {
	Status  int
	Message string
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s (%s, HTTP %d)", e.Message, e.Code, e.Status)
	}
	return fmt.Sprintf("%s (HTTP %d)", e.Message, e.Status)
}

// Client talks to the contacts API and keeps the session token in a
// SessionStore.
type Client struct {
	baseURL    string
	httpClient *http.Client
	session    *SessionStore
}

// New creates a Client. A nil httpClient gets a 10 second timeout.
func New(baseURL string, httpClient *http.Client, session *SessionStore) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		session:    session,
	}
}

// Session returns the store the client reads its token from
func (c *Client) Session() *SessionStore { return c.session }

func (c *Client) Register(ctx context.Context, name, email, password string) (*dto.RegisterResponse, error) {
	var out dto.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/api/user/register", "", dto.RegisterRequest{
		Name: name, Email: email, Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Login authenticates and stores the returned token
func (c *Client) Login(ctx context.Context, email, password string) (*dto.LoginResponse, error) {
	var out dto.LoginResponse
	err := c.do(ctx, http.MethodPost, "/api/user/login", "", dto.LoginRequest{
		Email: email, Password: password,
	}, &out)
	if err != nil {
		return nil, err
	}
	if err := c.session.Save(out.Token); err != nil {
		return nil, err
	}
	return &out, nil
}

// Logout discards the local token
func (c *Client) Logout() error {
	return c.session.Clear()
}

func (c *Client) Profile(ctx context.Context) (*dto.ProfileResponse, error) {
	sess, err := c.session.Current()
	if err != nil {
		return nil, err
	}
	var out dto.ProfileResponse
	if err := c.do(ctx, http.MethodGet, "/api/user/profile", sess.Token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateContact(ctx context.Context, req dto.CreateContactRequest) (*dto.CreateContactResponse, error) {
	sess, err := c.session.Current()
	if err != nil {
		return nil, err
	}
	var out dto.CreateContactResponse
	if err := c.do(ctx, http.MethodPost, "/api/contact/new", sess.Token, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListContacts lists the contacts of the logged-in user
func (c *Client) ListContacts(ctx context.Context) ([]dto.ContactResponse, error) {
	sess, err := c.session.Current()
	if err != nil {
		return nil, err
	}
	var out dto.UserContactsResponse
	path := "/api/contact/userid/" + url.PathEscape(sess.UserID.String())
	if err := c.do(ctx, http.MethodGet, path, sess.Token, nil, &out); err != nil {
		return nil, err
	}
	return out.UserContact, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Auth", token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Debug().Err(err).Str("method", method).Str("path", path).Msg("api request failed")
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("api request")

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var failure dto.ErrorResponse
		if json.Unmarshal(data, &failure) == nil && failure.Message != "" {
			apiErr.Message = failure.Message
			apiErr.Code = failure.Code
		}
		if resp.StatusCode == http.StatusUnauthorized && token != "" {
			_ = c.session.Clear()
		}
		return apiErr
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// IsUnauthorized reports whether err means the session must be renewed
func IsUnauthorized(err error) bool {
	if errors.Is(err, ErrNoSession) || errors.Is(err, ErrSessionExpired) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}
