package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mepex/cotizador-backend/api/responses"
	"github.com/mepex/cotizador-backend/api/validators"
	"github.com/mepex/cotizador-backend/internal/export"
	"github.com/mepex/cotizador-backend/internal/quotations"
	"github.com/mepex/cotizador-backend/internal/quote"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
)

const (
	draftCotNumber = "BORRADOR"
	pdfContentType = "application/pdf"
	xlsxType       = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var clock = time.Now

type exportRequest struct {
	CotNumber string `json:"cotNumber" validate:"omitempty,max=40"`
}

type exportResponse struct {
	Quotation quotations.Record `json:"quotation"`
	FileName  string            `json:"fileName"`
}

// SessionExport issues a quotation number when none is given, renders the
// proposal PDF and saves the record with it.
func SessionExport(mgr SessionManager, quotes QuotationService, lookup quote.Lookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		if quotes == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		var payload exportRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		id := chi.URLParam(r, "id")
		ctx := logg.WithSessionID(r.Context(), id)
		now := clock()

		cot := strings.TrimSpace(payload.CotNumber)
		if cot == "" {
			next, err := quotes.NextCotNumber(ctx, now)
			if err != nil {
				responses.WriteError(ctx, logg, w, err)
				return
			}
			cot = next
		}

		var (
			rec quotations.Record
			doc export.Document
		)
		if _, err := mgr.Mutate(ctx, id, func(s *quote.Session) error {
			rec = quotations.Collect(s, lookup, cot, now)
			doc = export.NewDocument(s.Breakdown(), s.State().Common(), cot, now)
			return nil
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		pdf, err := export.RenderPDF(doc)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render pdf"))
			return
		}
		saved, err := quotes.Save(ctx, rec, pdf)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		logg.Info(logg.WithQuotation(ctx, saved.ID, saved.CotNumber), "quotation exported")
		responses.WriteSuccessStatus(w, http.StatusCreated, exportResponse{Quotation: saved, FileName: doc.FileName})
	}
}

// SessionExportPDF downloads the proposal for the current state without
// saving it.
func SessionExportPDF(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return sessionDownload(mgr, logg, func(doc export.Document) (string, string, []byte, error) {
		out, err := export.RenderPDF(doc)
		return pdfContentType, doc.FileName, out, err
	})
}

func SessionExportXLSX(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return sessionDownload(mgr, logg, func(doc export.Document) (string, string, []byte, error) {
		out, err := export.RenderXLSX(doc)
		name := strings.TrimSuffix(doc.FileName, ".pdf") + ".xlsx"
		return xlsxType, name, out, err
	})
}

func sessionDownload(mgr SessionManager, logg *logger.Logger, render func(export.Document) (string, string, []byte, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		id := chi.URLParam(r, "id")
		ctx := logg.WithSessionID(r.Context(), id)

		cot := validators.SanitizeString(r.URL.Query().Get("cotNumber"), 40)
		if cot == "" {
			cot = draftCotNumber
		}
		now := clock()

		var doc export.Document
		if _, err := mgr.Mutate(ctx, id, func(s *quote.Session) error {
			doc = export.NewDocument(s.Refresh(), s.State().Common(), cot, now)
			return nil
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		contentType, name, body, err := render(doc)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render export"))
			return
		}
		responses.WriteFile(w, contentType, name, body)
	}
}
