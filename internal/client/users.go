// ABOUTME: Admin user management routes
// ABOUTME: List, patch and delete platform users

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListUsers returns every platform user. Requires an admin session.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/auth/users", nil, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []User{}
	}
	return users, nil
}

// UpdateUser sends patch to the per-user update route. An empty patch is sent
// as "{}"; callers decide whether that request is worth making.
func (c *Client) UpdateUser(ctx context.Context, id string, patch UserPatch) error {
	if id == "" {
		return fmt.Errorf("update user: %w", ErrMissingID)
	}
	return c.do(ctx, http.MethodPut, resourcePath("/api/auth/admin/user", id)+"/update", patch, nil)
}

// DeleteUser removes a user account.
func (c *Client) DeleteUser(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete user: %w", ErrMissingID)
	}
	return c.do(ctx, http.MethodDelete, resourcePath("/api/auth/user", id), nil, nil)
}
