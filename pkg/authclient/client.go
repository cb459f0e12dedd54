// Package authclient is a Go client for the registry API. It keeps the token
// issued at signup or login and gates protected views on it.
//
// The gate is a convenience for callers; the server checks every request.
package authclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

const defaultTimeout = 10 * time.Second

// ErrNoToken is returned by calls that need a stored token when none exists.
var ErrNoToken = errors.New("authclient: no token stored")

// APIError is a non-2xx response from the API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authclient: %d %s", e.StatusCode, e.Message)
}

// IsUnauthenticated reports whether the server rejected the token.
func (e *APIError) IsUnauthenticated() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

type SignupRequest struct {
	Firstname       string `json:"firstname"`
	Lastname        string `json:"lastname"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	HealthAuthority string `json:"healthAuthority"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

type messageResponse struct {
	Message string `json:"message"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// User is the identity carried by a valid token.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type validateResponse struct {
	Valid bool `json:"valid"`
	User  User `json:"user"`
}

// Client talks to the registry API.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTokenStore replaces the default in-memory token store.
func WithTokenStore(s TokenStore) Option {
	return func(c *Client) { c.store = s }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: defaultTimeout},
		store:   NewMemoryStore(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Signup registers a user and stores the returned token.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (string, error) {
	return c.authenticate(ctx, "/signup", in)
}

// Login stores the token issued for the given credentials.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	return c.authenticate(ctx, "/login", loginRequest{Email: email, Password: password})
}

// Logout forgets the stored token.
func (c *Client) Logout() error {
	return c.store.Clear()
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (string, error) {
	var out tokenResponse
	if err := c.call(ctx, http.MethodPost, path, body, false, &out); err != nil {
		return "", err
	}
	if err := c.store.Save(out.Token); err != nil {
		return "", err
	}
	return out.Token, nil
}

// Home fetches the protected home message.
func (c *Client) Home(ctx context.Context) (string, error) {
	var out messageResponse
	if err := c.call(ctx, http.MethodGet, "/home", nil, true, &out); err != nil {
		return "", err
	}
	return out.Message, nil
}

// Gate reports whether the stored token is still accepted by the server.
// A rejected token is cleared. Transport failures are returned as errors
// and leave the token in place.
func (c *Client) Gate(ctx context.Context) (bool, error) {
	_, err := c.Validate(ctx)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, ErrNoToken) {
		return false, nil
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.IsUnauthenticated() {
		if clearErr := c.store.Clear(); clearErr != nil {
			return false, clearErr
		}
		return false, nil
	}
	return false, err
}

// Validate asks the server who the stored token belongs to.
func (c *Client) Validate(ctx context.Context) (*User, error) {
	var out validateResponse
	if err := c.call(ctx, http.MethodGet, "/validate-token", nil, true, &out); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Do sends req with the stored bearer token attached.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	token, err := c.store.Load()
	if err != nil {
		return nil, err
	}
	if token == "" {
		return nil, ErrNoToken
	}
	req.Header.Set("Authorization", "Bearer "+token)
	return c.http.Do(req)
}

func (c *Client) call(ctx context.Context, method, path string, body any, authed bool, out any) error {
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
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	var resp *http.Response
	if authed {
		resp, err = c.Do(req)
	} else {
		resp, err = c.http.Do(req)
	}
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var er errorResponse
		if json.NewDecoder(resp.Body).Decode(&er) == nil {
			apiErr.Message = er.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
