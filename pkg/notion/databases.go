package notion

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
)

const maxPageSize = 100

type Sort struct {
	Property  string `json:"property,omitempty"`
	Timestamp string `json:"timestamp,omitempty"`
	Direction string `json:"direction"`
}

// QueryRequest is the body of a database query.
type QueryRequest struct {
	Filter      any    `json:"filter,omitempty"`
	Sorts       []Sort `json:"sorts,omitempty"`
	StartCursor string `json:"start_cursor,omitempty"`
	PageSize    int    `json:"page_size,omitempty"`
}

type QueryResponse struct {
	Results    []Page  `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// TitleContains filters on a title column containing query.
func TitleContains(property, query string) map[string]any {
	return map[string]any{"property": property, "title": map[string]any{"contains": query}}
}

// RichTextContains filters on a text column containing query.
func RichTextContains(property, query string) map[string]any {
	return map[string]any{"property": property, "rich_text": map[string]any{"contains": query}}
}

// Or combines filters.
func Or(filters ...map[string]any) map[string]any {
	list := make([]any, 0, len(filters))
	for _, f := range filters {
		list = append(list, f)
	}
	return map[string]any{"or": list}
}

func Descending(property string) Sort {
	return Sort{Property: property, Direction: "descending"}
}

func Ascending(property string) Sort {
	return Sort{Property: property, Direction: "ascending"}
}

// QueryDatabase fetches a single page of results.
func (c *Client) QueryDatabase(ctx context.Context, databaseID string, req QueryRequest) (*QueryResponse, error) {
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "database id is not configured")
	}
	if req.PageSize <= 0 || req.PageSize > maxPageSize {
		req.PageSize = maxPageSize
	}
	var resp QueryResponse
	if err := c.doJSON(ctx, "databases.query", http.MethodPost, "databases/"+url.PathEscape(databaseID)+"/query", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// QueryAll follows the cursor until every page of the query is read.
func (c *Client) QueryAll(ctx context.Context, databaseID string, req QueryRequest) ([]Page, error) {
	var pages []Page
	for {
		resp, err := c.QueryDatabase(ctx, databaseID, req)
		if err != nil {
			return nil, err
		}
		pages = append(pages, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return pages, nil
		}
		req.StartCursor = *resp.NextCursor
	}
}

// RetrieveDatabase returns the database title and column schema.
func (c *Client) RetrieveDatabase(ctx context.Context, databaseID string) (*Database, error) {
	databaseID = strings.TrimSpace(databaseID)
	if databaseID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "database id is not configured")
	}
	var db Database
	if err := c.doJSON(ctx, "databases.retrieve", http.MethodGet, "databases/"+url.PathEscape(databaseID), nil, &db); err != nil {
		return nil, err
	}
	return &db, nil
}
