package clients

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"huduku-gateway/internal/model"
)

// IdentityClient talks to the identity service (users, credentials).
type IdentityClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewIdentityClient creates an identity facade with a fixed per-call timeout.
func NewIdentityClient(baseURL string, timeout time.Duration) *IdentityClient {
	return &IdentityClient{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// VerifyToken asks the identity service to verify a bearer token and returns
// the principal it belongs to.
func (c *IdentityClient) VerifyToken(ctx context.Context, token string) (*model.Principal, error) {
	headers := http.Header{}
	headers.Set("Authorization", "Bearer "+token)

	var principal model.Principal
	url := c.baseURL + "/users/verify-token"
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodGet, url, headers, nil, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// GetUser fetches a user profile by id.
func (c *IdentityClient) GetUser(ctx context.Context, userID int64) (*model.User, error) {
	var user model.User
	url := fmt.Sprintf("%s/users/%d", c.baseURL, userID)
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodGet, url, nil, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Register creates a new account and returns the created user.
func (c *IdentityClient) Register(ctx context.Context, req model.RegisterRequest) (*model.User, error) {
	var user model.User
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodPost, c.baseURL+"/register", nil, req, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a token payload. The token body is passed
// through untouched so the identity service stays the only token authority.
func (c *IdentityClient) Login(ctx context.Context, req model.LoginRequest) (map[string]any, error) {
	var out map[string]any
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodPost, c.baseURL+"/login", nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ChangePassword forwards a password change for the given account.
func (c *IdentityClient) ChangePassword(ctx context.Context, req model.ChangePasswordRequest) (map[string]any, error) {
	var out map[string]any
	url := c.baseURL + "/users/change_password"
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodPost, url, nil, req, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type updateProfilePayload struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// UpdateProfile updates the profile fields of the given user.
func (c *IdentityClient) UpdateProfile(ctx context.Context, userID int64, req model.UpdateProfileRequest) (*model.User, error) {
	payload := updateProfilePayload{
		ID:        userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}

	var user model.User
	url := c.baseURL + "/update_user_profile"
	if err := doJSON(ctx, c.httpClient, "identity", http.MethodPost, url, nil, payload, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
