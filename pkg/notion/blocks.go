package notion

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
)

// richTextChunk is the longest content a single rich text segment accepts.
const richTextChunk = 2000

type blockChildrenResponse struct {
	Results    []Block `json:"results"`
	HasMore    bool    `json:"has_more"`
	NextCursor *string `json:"next_cursor"`
}

// CodeBlockJSON builds a json code block, splitting text into segments the
// API accepts.
func CodeBlockJSON(text string) map[string]any {
	segments := make([]any, 0, len(text)/richTextChunk+1)
	for _, chunk := range chunkRunes(text, richTextChunk) {
		segments = append(segments, textSegment(chunk))
	}
	return map[string]any{
		"object": "block",
		"type":   "code",
		"code": map[string]any{
			"language":  "json",
			"rich_text": segments,
		},
	}
}

func chunkRunes(text string, size int) []string {
	runes := []rune(text)
	if len(runes) == 0 {
		return []string{""}
	}
	out := make([]string, 0, len(runes)/size+1)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

// ListBlockChildren returns every child block of a page or block.
func (c *Client) ListBlockChildren(ctx context.Context, blockID string) ([]Block, error) {
	blockID = strings.TrimSpace(blockID)
	if blockID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "block id is required")
	}
	var (
		blocks []Block
		cursor string
	)
	for {
		path := "blocks/" + url.PathEscape(blockID) + "/children?page_size=100"
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}
		var resp blockChildrenResponse
		if err := c.doJSON(ctx, "blocks.children", http.MethodGet, path, nil, &resp); err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)
		if !resp.HasMore || resp.NextCursor == nil || *resp.NextCursor == "" {
			return blocks, nil
		}
		cursor = *resp.NextCursor
	}
}

func (c *Client) AppendBlockChildren(ctx context.Context, blockID string, children []map[string]any) error {
	blockID = strings.TrimSpace(blockID)
	if blockID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "block id is required")
	}
	body := map[string]any{"children": children}
	return c.doJSON(ctx, "blocks.append", http.MethodPatch, "blocks/"+url.PathEscape(blockID)+"/children", body, nil)
}

func (c *Client) DeleteBlock(ctx context.Context, blockID string) error {
	blockID = strings.TrimSpace(blockID)
	if blockID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "block id is required")
	}
	return c.doJSON(ctx, "blocks.delete", http.MethodDelete, "blocks/"+url.PathEscape(blockID), nil, nil)
}

// FirstCodeText returns the joined text of the first code block, if any.
func FirstCodeText(blocks []Block) (string, bool) {
	for _, b := range blocks {
		if b.Type == "code" && b.Code != nil {
			return PlainText(b.Code.RichText), true
		}
	}
	return "", false
}
