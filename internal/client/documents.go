// ABOUTME: Document routes for listing and deleting uploaded files

package client

import (
	"context"
	"fmt"
	"net/http"
)

// ListDocuments returns all uploaded documents.
func (c *Client) ListDocuments(ctx context.Context) ([]Document, error) {
	var docs []Document
	if err := c.do(ctx, http.MethodGet, "/api/documents", nil, &docs); err != nil {
		return nil, err
	}
	if docs == nil {
		docs = []Document{}
	}
	return docs, nil
}

// DeleteDocument removes a document.
func (c *Client) DeleteDocument(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("delete document: %w", ErrMissingID)
	}
	return c.do(ctx, http.MethodDelete, resourcePath("/api/documents", id), nil, nil)
}
