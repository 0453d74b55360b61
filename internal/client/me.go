// ABOUTME: Session user routes: the current user and credit deduction
// ABOUTME: GET /api/auth/me and PUT /api/auth/deduct-credits

package client

import (
	"context"
	"fmt"
	"net/http"
)

// Me returns the authenticated session user.
func (c *Client) Me(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/auth/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeductCredits removes amount credits from userID and returns the resulting
// balance reported by the server.
func (c *Client) DeductCredits(ctx context.Context, userID string, amount int) (int, error) {
	if userID == "" {
		return 0, fmt.Errorf("deduct credits: %w", ErrMissingID)
	}

	var resp deductResponse
	body := deductRequest{UserID: userID, Amount: amount}
	if err := c.do(ctx, http.MethodPut, "/api/auth/deduct-credits", body, &resp); err != nil {
		return 0, err
	}
	return resp.CreditsLeft, nil
}
