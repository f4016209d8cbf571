package api

import (
	"context"
	"net/http"

	"github.com/poorman/TaskFlow/internal/models"
)

// AuthAPI covers /api/v1/auth.
type AuthAPI struct {
	c *Client
}

// RegisterRequest is the payload for POST /api/v1/auth/register. The backend
// creates the organization alongside the account.
type RegisterRequest struct {
	Email            string  `json:"email"`
	Password         string  `json:"password"`
	FullName         *string `json:"full_name,omitempty"`
	OrganizationName *string `json:"organization_name,omitempty"`
}

// TokenResponse is the login result.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates an account plus its organization.
func (a AuthAPI) Register(ctx context.Context, req RegisterRequest) (*models.User, error) {
	var user models.User
	if err := a.c.do(ctx, http.MethodPost, "/api/v1/auth/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login obtains a bearer token and persists it through the token store.
func (a AuthAPI) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	payload := map[string]string{"email": email, "password": password}
	var resp TokenResponse
	if err := a.c.do(ctx, http.MethodPost, "/api/v1/auth/login", nil, payload, &resp); err != nil {
		return nil, err
	}
	if err := a.c.tokens.Save(resp.AccessToken); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the current user.
func (a AuthAPI) Me(ctx context.Context) (*models.User, error) {
	var user models.User
	if err := a.c.do(ctx, http.MethodGet, "/api/v1/auth/me", nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateMe patches the current user's profile.
func (a AuthAPI) UpdateMe(ctx context.Context, upd models.UserUpdate) (*models.User, error) {
	var user models.User
	if err := a.c.do(ctx, http.MethodPatch, "/api/v1/auth/me", nil, upd, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword swaps the account password.
func (a AuthAPI) ChangePassword(ctx context.Context, current, updated string) error {
	payload := map[string]string{"current_password": current, "new_password": updated}
	return a.c.do(ctx, http.MethodPost, "/api/v1/auth/change-password", nil, payload, nil)
}

// GoogleLoginURL returns the browser redirect URL that starts the OAuth flow.
// The flow itself completes in a browser; the resulting token lands back in
// the session store out of band.
func (a AuthAPI) GoogleLoginURL() string {
	return a.c.baseURL + "/api/v1/auth/google"
}
