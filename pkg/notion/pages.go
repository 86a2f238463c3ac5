package notion

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
)

// CreatePageRequest creates a row in a database, optionally with body blocks.
type CreatePageRequest struct {
	DatabaseID string
	Properties map[string]any
	Children   []map[string]any
}

func (c *Client) RetrievePage(ctx context.Context, pageID string) (*Page, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page id is required")
	}
	var page Page
	if err := c.doJSON(ctx, "pages.retrieve", http.MethodGet, "pages/"+url.PathEscape(pageID), nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *Client) CreatePage(ctx context.Context, req CreatePageRequest) (*Page, error) {
	if strings.TrimSpace(req.DatabaseID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "database id is not configured")
	}
	body := map[string]any{
		"parent":     map[string]any{"database_id": req.DatabaseID},
		"properties": req.Properties,
	}
	if len(req.Children) > 0 {
		body["children"] = req.Children
	}
	var page Page
	if err := c.doJSON(ctx, "pages.create", http.MethodPost, "pages", body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// UpdatePage patches the given properties only.
func (c *Client) UpdatePage(ctx context.Context, pageID string, properties map[string]any) (*Page, error) {
	pageID = strings.TrimSpace(pageID)
	if pageID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "page id is required")
	}
	var page Page
	body := map[string]any{"properties": properties}
	if err := c.doJSON(ctx, "pages.update", http.MethodPatch, "pages/"+url.PathEscape(pageID), body, &page); err != nil {
		return nil, err
	}
	return &page, nil
}
