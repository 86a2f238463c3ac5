package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mepex/cotizador-backend/internal/directory"
	"github.com/mepex/cotizador-backend/internal/quotations"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/types"
)

type fakeDirectory struct {
	lastQuery string
}

func (f *fakeDirectory) ListClients(context.Context) ([]directory.Client, error) {
	return []directory.Client{{ID: "c1", Name: "Acme"}}, nil
}

func (f *fakeDirectory) SearchClients(_ context.Context, q string) ([]directory.Client, error) {
	f.lastQuery = q
	return []directory.Client{{ID: "c1", Name: "Acme"}}, nil
}

func (f *fakeDirectory) ListProjects(context.Context) ([]directory.Project, error) {
	return nil, nil
}

func (f *fakeDirectory) SearchProjects(context.Context, string) ([]directory.Project, error) {
	return nil, nil
}

func (f *fakeDirectory) GetProject(_ context.Context, id string) (directory.Project, error) {
	if id != "p1" {
		return directory.Project{}, pkgerrors.New(pkgerrors.CodeNotFound, "project not found")
	}
	return directory.Project{ID: "p1", Name: "Stand Acme", Client: &directory.Client{ID: "c1", Name: "Acme"}}, nil
}

func (f *fakeDirectory) ListEvents(context.Context) ([]directory.Event, error) {
	return nil, pkgerrors.New(pkgerrors.CodeUnavailable, "events workspace not configured")
}

func (f *fakeDirectory) SearchEvents(context.Context, string) ([]directory.Event, error) {
	return nil, nil
}

type uploadRecorder struct {
	QuotationService
	id, filename string
	data         []byte
}

func (u *uploadRecorder) UploadPDF(_ context.Context, id, filename string, pdf []byte) error {
	u.id, u.filename, u.data = id, filename, pdf
	return nil
}

func (u *uploadRecorder) NextCotNumber(context.Context, time.Time) (string, error) {
	return "", pkgerrors.New(pkgerrors.CodeUnavailable, "quotation numbering not configured")
}

func (u *uploadRecorder) Save(context.Context, quotations.Record, []byte) (quotations.Record, error) {
	return quotations.Record{}, nil
}

func TestDirectoryHandlers(t *testing.T) {
	dir := &fakeDirectory{}
	r := chi.NewRouter()
	r.Get("/clients/search", ClientsSearch(dir, logger.Nop()))
	r.Get("/projects/{projectId}", ProjectGet(dir, logger.Nop()))
	r.Get("/events", EventsList(dir, logger.Nop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/clients/search?q=%20%20acme%20", nil))
	if rec.Code != http.StatusOK || dir.lastQuery != "acme" {
		t.Fatalf("search: status %d query %q", rec.Code, dir.lastQuery)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/p1", nil))
	var env struct {
		Data directory.Project `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode project: %v", err)
	}
	if env.Data.Client == nil || env.Data.Client.Name != "Acme" {
		t.Fatalf("expected related client, got %+v", env.Data)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/projects/zzz", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown project: expected 404, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured events: expected 503, got %d", rec.Code)
	}
}

func TestQuotationUploadPDFMultipart(t *testing.T) {
	svc := &uploadRecorder{}
	r := chi.NewRouter()
	r.Post("/quotations/{id}/pdf", QuotationUploadPDF(svc, logger.Nop(), 1<<20))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(pdfFormField, "dir/COT-2026-0001.pdf")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write([]byte("%PDF-1.4 body"))
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/quotations/q1/pdf", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("upload: status %d body %s", rec.Code, rec.Body.String())
	}
	if svc.id != "q1" || svc.filename != "COT-2026-0001.pdf" || string(svc.data) != "%PDF-1.4 body" {
		t.Fatalf("unexpected upload %q %q %q", svc.id, svc.filename, svc.data)
	}
}

func TestQuotationUploadPDFTooLarge(t *testing.T) {
	svc := &uploadRecorder{}
	r := chi.NewRouter()
	r.Post("/quotations/{id}/pdf", QuotationUploadPDF(svc, logger.Nop(), 16))

	req := httptest.NewRequest(http.MethodPost, "/quotations/q1/pdf", strings.NewReader("%PDF-"+strings.Repeat("x", 64)))
	req.Header.Set("Content-Type", "application/pdf")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", rec.Code)
	}
	var env types.ErrorEnvelope
	if err := json.NewDecoder(rec.Body).Decode(&env); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if env.Error.Code != string(pkgerrors.CodePayloadTooLarge) {
		t.Fatalf("unexpected code %s", env.Error.Code)
	}
}

func TestSessionExportNeedsNumbering(t *testing.T) {
	r := chi.NewRouter()
	r.Post("/sessions/{id}/export", SessionExport(nilSessionManager{}, &uploadRecorder{}, nil, logger.Nop()))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/sessions/s1/export", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 when numbering is off, got %d", rec.Code)
	}
}

// nilSessionManager satisfies the interface for handlers that fail before
// touching a session.
type nilSessionManager struct {
	SessionManager
}
