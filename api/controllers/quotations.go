package controllers

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mepex/cotizador-backend/api/responses"
	"github.com/mepex/cotizador-backend/api/validators"
	"github.com/mepex/cotizador-backend/internal/quotations"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
	"github.com/mepex/cotizador-backend/pkg/pagination"
)

const pdfFormField = "file"

var pdfMagic = []byte("%PDF-")

func quotationsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "quotation service unavailable")
}

type quotationPage struct {
	Records    []quotations.Record `json:"records"`
	Source     quotations.Source   `json:"source"`
	NextCursor string              `json:"nextCursor,omitempty"`
}

// QuotationsList returns saved quotations newest first along with where the
// listing came from. Pages continue from ?cursor.
func QuotationsList(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cursor, err := pagination.ParseCursor(r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor"))
			return
		}
		result, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		records, next := pagination.Page(result.Records, limit, cursor, quotations.PageKey)
		if records == nil {
			records = []quotations.Record{}
		}
		responses.WriteSuccess(w, quotationPage{Records: records, Source: result.Source, NextCursor: next})
	}
}

func QuotationGet(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		rec, err := svc.GetByID(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rec)
	}
}

// QuotationUpdate replaces the stored record. The path id wins over any id
// in the body.
func QuotationUpdate(svc QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		var rec quotations.Record
		if err := validators.DecodeJSONBody(w, r, &rec); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if strings.TrimSpace(rec.CotNumber) == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"cotNumber": "is required"}))
			return
		}
		updated, err := svc.Update(r.Context(), chi.URLParam(r, "id"), rec)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, updated)
	}
}

// QuotationUploadPDF attaches a PDF sent either as multipart field "file" or
// as a raw application/pdf body.
func QuotationUploadPDF(svc QuotationService, logg *logger.Logger, maxBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		id := chi.URLParam(r, "id")
		filename, data, err := readPDF(w, r, maxBytes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.UploadPDF(r.Context(), id, filename, data); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{
			"id":       id,
			"filename": filename,
			"size":     len(data),
		})
	}
}

func readPDF(w http.ResponseWriter, r *http.Request, maxBytes int64) (string, []byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	filename := strings.TrimSpace(r.URL.Query().Get("filename"))
	var src io.Reader = r.Body

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxBytes); err != nil {
			return "", nil, bodyError(err, maxBytes)
		}
		file, header, err := r.FormFile(pdfFormField)
		if err != nil {
			return "", nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pdf file is required").
				WithDetails(map[string]string{pdfFormField: "is required"})
		}
		defer file.Close()
		if filename == "" {
			filename = path.Base(header.Filename)
		}
		src = file
	}

	data, err := io.ReadAll(src)
	if err != nil {
		return "", nil, bodyError(err, maxBytes)
	}
	if !bytes.HasPrefix(data, pdfMagic) {
		return "", nil, pkgerrors.New(pkgerrors.CodeValidation, "file is not a pdf")
	}
	return filename, data, nil
}

func bodyError(err error, maxBytes int64) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return pkgerrors.Wrap(pkgerrors.CodePayloadTooLarge, err, "pdf too large").
			WithDetails(map[string]any{"limit_bytes": maxBytes})
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pdf upload")
}
