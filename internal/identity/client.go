package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

// LoginPath is the API route that exchanges credentials for a token.
const LoginPath = "/api/v1/auth/login"

// ErrInvalidCredentials is returned when the API rejects the login.
var ErrInvalidCredentials = errors.New("invalid username or password")

// Client logs users in against the API server.
type Client struct {
	httpClient *retryablehttp.Client
	baseURL    string
}

// NewClient creates a login Client. Logins are attempted once.
func NewClient(baseURL string) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 0
	hc.Logger = nil
	hc.ErrorHandler = retryablehttp.PassthroughErrorHandler
	return &Client{httpClient: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Token string `json:"token"`
		User  struct {
			Username string `json:"username"`
		} `json:"user"`
	} `json:"data"`
}

// Login exchanges credentials for a token and returns a populated Session.
func (c *Client) Login(ctx context.Context, username, password string) (*Session, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+LoginPath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	var env loginEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode login response (HTTP %d): %w", resp.StatusCode, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, ErrInvalidCredentials
	case resp.StatusCode != http.StatusOK || !env.Success:
		return nil, fmt.Errorf("login: HTTP %d: %s", resp.StatusCode, env.Error)
	case env.Data.Token == "" || env.Data.User.Username == "":
		return nil, errors.New("login: response missing token or user")
	}

	s := NewSession()
	s.Set(env.Data.Token, Identity{Username: env.Data.User.Username})
	return s, nil
}
