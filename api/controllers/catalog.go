package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mepex/cotizador-backend/api/responses"
	"github.com/mepex/cotizador-backend/api/validators"
	"github.com/mepex/cotizador-backend/internal/catalog"
	"github.com/mepex/cotizador-backend/pkg/enums"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
)

type catalogListResponse struct {
	Items    []catalog.Item `json:"items"`
	Count    int            `json:"count"`
	LastSync *time.Time     `json:"lastSync,omitempty"`
}

func catalogUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable")
}

// CatalogList returns every item in insertion order.
func CatalogList(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		items := svc.Index().All()
		resp := catalogListResponse{Items: items, Count: len(items)}
		if last := svc.LastSync(); !last.IsZero() {
			resp.LastSync = &last
		}
		responses.WriteSuccess(w, resp)
	}
}

func CatalogCategories() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, catalog.Categories())
	}
}

// CatalogByCategory lists a category, or one of its subcategories when the
// route carries one.
func CatalogByCategory(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		category, err := enums.ParseCategory(chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
			return
		}
		raw := strings.TrimSpace(chi.URLParam(r, "subcategory"))
		if raw == "" {
			responses.WriteSuccess(w, svc.Index().GetByCategory(category))
			return
		}
		sub, err := enums.ParseSubcategory(raw)
		if err != nil || sub.Parent() != category {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid subcategory").
				WithDetails(map[string]any{"category": category, "subcategory": raw}))
			return
		}
		responses.WriteSuccess(w, svc.Index().GetBySubcategory(category, sub))
	}
}

// CatalogSync merges the workspace items into the index.
func CatalogSync(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		force, err := validators.ParseQueryBool(r, "force", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		result, err := svc.Sync(r.Context(), force)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func CatalogSchema(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		schema, err := svc.Schema(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, schema)
	}
}

func CatalogCreateItem(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		var payload catalog.NewItem
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"price": "must be at least 0"}))
			return
		}
		item, err := svc.CreateItem(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

func CatalogUpdateItem(svc CatalogService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, catalogUnavailable())
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "itemId"))
		var patch catalog.ItemPatch
		if err := validators.DecodeJSONBody(w, r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if patch.Price != nil && patch.Price.IsNegative() {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "validation failed").
				WithDetails(map[string]string{"price": "must be at least 0"}))
			return
		}
		item, err := svc.UpdateItem(r.Context(), id, patch)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, item)
	}
}
