package notion

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
)

type FileUpload struct {
	ID     string `json:"id"`
	Status string `json:"status,omitempty"`
}

// CreateFileUpload opens a single-part upload slot.
func (c *Client) CreateFileUpload(ctx context.Context, filename string) (*FileUpload, error) {
	filename = strings.TrimSpace(filename)
	if filename == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "filename is required")
	}
	var upload FileUpload
	if err := c.doJSON(ctx, "file_uploads.create", http.MethodPost, "file_uploads", map[string]any{"filename": filename}, &upload); err != nil {
		return nil, err
	}
	if upload.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "file upload id missing from response")
	}
	return &upload, nil
}

// SendFileUpload streams the file contents into an upload slot.
func (c *Client) SendFileUpload(ctx context.Context, uploadID, filename, contentType string, data []byte) (*FileUpload, error) {
	uploadID = strings.TrimSpace(uploadID)
	if uploadID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "upload id is required")
	}
	if len(data) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "file is empty")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+escapeQuotes(filename)+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upload body")
	}
	if _, err := part.Write(data); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upload body")
	}
	if err := writer.Close(); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build upload body")
	}

	var upload FileUpload
	path := "file_uploads/" + url.PathEscape(uploadID) + "/send"
	if err := c.do(ctx, "file_uploads.send", http.MethodPost, path, &buf, writer.FormDataContentType(), &upload); err != nil {
		return nil, err
	}
	return &upload, nil
}

func escapeQuotes(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
