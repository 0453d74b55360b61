// ABOUTME: Chat history route returning the most recent message window

package client

import (
	"context"
	"net/http"
)

// LastChat returns the most recent chat messages. A response without a
// messages field yields an empty slice.
func (c *Client) LastChat(ctx context.Context) ([]ChatMessage, error) {
	var resp lastChatResponse
	if err := c.do(ctx, http.MethodGet, "/api/chat/last", nil, &resp); err != nil {
		return nil, err
	}
	if resp.Messages == nil {
		return []ChatMessage{}, nil
	}
	return resp.Messages, nil
}
