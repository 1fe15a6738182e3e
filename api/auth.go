package api

import (
	"context"
	"net/http"

	"postpilot/types"
)

// LoginResponse is the body of POST /auth/login.
type LoginResponse struct {
	AccessToken string      `json:"access_token"`
	User        *types.User `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, email, password string) (*LoginResponse, error) {
	payload := map[string]string{
		"email":    email,
		"password": password,
	}

	var result LoginResponse
	if err := c.doJSON(ctx, http.MethodPost, "/auth/login", payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Signup creates a new account. It does not authenticate; callers chain
// into Login afterwards.
func (c *Client) Signup(ctx context.Context, name, email, password string, preferences []string) error {
	if preferences == nil {
		preferences = []string{}
	}
	payload := map[string]interface{}{
		"name":        name,
		"email":       email,
		"password":    password,
		"preferences": preferences,
	}
	return c.doJSON(ctx, http.MethodPost, "/auth/signup", payload, nil)
}

// CurrentUser fetches the identity behind the current token.
func (c *Client) CurrentUser(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.doJSON(ctx, http.MethodGet, "/auth/me", nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
