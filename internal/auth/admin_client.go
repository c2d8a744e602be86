package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// AdminClient wraps the Supabase Admin API. The seeder uses it to create
// demo mentors and mentees; requests use the service role key.
type AdminClient struct {
	client *resty.Client
}

// NewAdminClient creates a new Supabase Admin API client.
func NewAdminClient(supabaseURL, serviceKey string) *AdminClient {
	return &AdminClient{
		client: resty.New().
			SetBaseURL(strings.TrimRight(supabaseURL, "/")).
			SetTimeout(30*time.Second).
			SetAuthToken(serviceKey).
			SetHeader("apikey", serviceKey),
	}
}

// CreateUserRequest is the payload for creating a new user
type CreateUserRequest struct {
	Email        string                 `json:"email"`
	Password     string                 `json:"password"`
	EmailConfirm bool                   `json:"email_confirm"`
	AppMetadata  map[string]interface{} `json:"app_metadata,omitempty"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// AdminUser is a user as returned by the Admin API
type AdminUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

type listUsersResponse struct {
	Users []AdminUser `json:"users"`
}

// CreateUser creates a confirmed user with a marketplace role and returns
// the new user's UUID.
func (c *AdminClient) CreateUser(ctx context.Context, email, password, role string) (string, error) {
	var created AdminUser
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(CreateUserRequest{
			Email:        email,
			Password:     password,
			EmailConfirm: true,
			AppMetadata:  map[string]interface{}{"role": role},
		}).
		SetResult(&created).
		Post("/auth/v1/admin/users")
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("create user failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return created.ID, nil
}

// DeleteUserByEmail finds a user by email and deletes them. Deleting a
// user that doesn't exist is not an error.
func (c *AdminClient) DeleteUserByEmail(ctx context.Context, email string) error {
	userID, err := c.findUserIDByEmail(ctx, email)
	if err != nil {
		return err
	}
	if userID == "" {
		return nil
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetPathParam("id", userID).
		Delete("/auth/v1/admin/users/{id}")
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if resp.StatusCode() != http.StatusOK && resp.StatusCode() != http.StatusNoContent {
		return fmt.Errorf("delete user failed with status %d: %s", resp.StatusCode(), resp.String())
	}
	return nil
}

// findUserIDByEmail returns "" when no user has the email.
func (c *AdminClient) findUserIDByEmail(ctx context.Context, email string) (string, error) {
	var list listUsersResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetResult(&list).
		Get("/auth/v1/admin/users")
	if err != nil {
		return "", fmt.Errorf("list users: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("list users failed with status %d: %s", resp.StatusCode(), resp.String())
	}

	for _, u := range list.Users {
		if strings.EqualFold(u.Email, email) {
			return u.ID, nil
		}
	}
	return "", nil
}
