package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/mepex/cotizador-backend/api/responses"
	"github.com/mepex/cotizador-backend/api/validators"
	"github.com/mepex/cotizador-backend/internal/quotations"
	"github.com/mepex/cotizador-backend/internal/quote"
	"github.com/mepex/cotizador-backend/pkg/enums"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
)

type toggleItemRequest struct {
	Quantity *int `json:"quantity"`
}

type setTypeRequest struct {
	Type string `json:"type" validate:"required"`
}

type addSpaceRequest struct {
	Name string `json:"name" validate:"max=80"`
}

type updateSpaceRequest struct {
	Name    string           `json:"name" validate:"max=80"`
	Surface *decimal.Decimal `json:"surface"`
}

type restoreRequest struct {
	QuotationID string `json:"quotation_id" validate:"required"`
	AsTemplate  bool   `json:"as_template"`
}

func sessionsUnavailable() error {
	return pkgerrors.New(pkgerrors.CodeInternal, "session manager unavailable")
}

// mutateSession runs fn on the session named in the route and writes the
// resulting view.
func mutateSession(mgr SessionManager, logg *logger.Logger, w http.ResponseWriter, r *http.Request, status int, fn func(*quote.Session) error) {
	if mgr == nil {
		responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
		return
	}
	id := chi.URLParam(r, "id")
	ctx := logg.WithSessionID(r.Context(), id)
	view, err := mgr.Mutate(ctx, id, fn)
	if err != nil {
		responses.WriteError(ctx, logg, w, err)
		return
	}
	responses.WriteSuccessStatus(w, status, view)
}

func requireSpace(st *quote.State, id string) error {
	for _, sp := range st.Spaces() {
		if sp.ID == id {
			return nil
		}
	}
	return pkgerrors.Newf(pkgerrors.CodeNotFound, "space %s not found", id)
}

func SessionCreate(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		view, err := mgr.Create(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		logg.Info(logg.WithSessionID(r.Context(), view.ID), "session created")
		responses.WriteSuccessStatus(w, http.StatusCreated, view)
	}
}

func SessionGet(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		id := chi.URLParam(r, "id")
		view, err := mgr.Get(logg.WithSessionID(r.Context(), id), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, view)
	}
}

func SessionDelete(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		id := chi.URLParam(r, "id")
		if err := mgr.Delete(logg.WithSessionID(r.Context(), id), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// SessionBreakdown reprices against the current catalog and returns only
// the breakdown.
func SessionBreakdown(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if mgr == nil {
			responses.WriteError(r.Context(), logg, w, sessionsUnavailable())
			return
		}
		id := chi.URLParam(r, "id")
		ctx := logg.WithSessionID(r.Context(), id)
		var b quote.Breakdown
		if _, err := mgr.Mutate(ctx, id, func(s *quote.Session) error {
			b = s.Refresh()
			return nil
		}); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, b)
	}
}

// SessionToggleItem toggles an item, or sets its quantity when the body
// carries one (0 or less removes it).
func SessionToggleItem(mgr SessionManager, lookup quote.Lookup, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload toggleItemRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		itemID := strings.TrimSpace(chi.URLParam(r, "itemId"))
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			if lookup != nil {
				if _, ok := lookup.GetByID(itemID); !ok {
					return pkgerrors.Newf(pkgerrors.CodeNotFound, "catalog item %s not found", itemID)
				}
			}
			s.State().ToggleItem(itemID, payload.Quantity)
			return nil
		})
	}
}

func SessionUpdateParams(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch quote.ParamsPatch
		if err := validators.DecodeJSONBody(w, r, &patch); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if patch.StandType != nil {
			if _, err := enums.ParseStandType(*patch.StandType); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stand type"))
				return
			}
		}
		if patch.HeightType != nil {
			if _, err := enums.ParseHeightType(*patch.HeightType); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid height type"))
				return
			}
		}
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			s.State().UpdateParams(patch)
			return nil
		})
	}
}

func SessionSetType(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload setTypeRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		t, err := enums.ParseQuotationType(payload.Type)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid quotation type"))
			return
		}
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			s.State().SetQuotationType(t)
			return nil
		})
	}
}

func SessionReset(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			s.State().Reset()
			return nil
		})
	}
}

func SessionAddSpace(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload addSpaceRequest
		if r.ContentLength != 0 {
			if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		mutateSession(mgr, logg, w, r, http.StatusCreated, func(s *quote.Session) error {
			s.State().AddSpace(payload.Name)
			return nil
		})
	}
}

func SessionUpdateSpace(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateSpaceRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		spaceID := chi.URLParam(r, "spaceId")
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			if err := requireSpace(s.State(), spaceID); err != nil {
				return err
			}
			s.State().SetSpaceDetails(spaceID, payload.Name, payload.Surface)
			return nil
		})
	}
}

func SessionRemoveSpace(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID := chi.URLParam(r, "spaceId")
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			if err := requireSpace(s.State(), spaceID); err != nil {
				return err
			}
			s.State().RemoveSpace(spaceID)
			return nil
		})
	}
}

func SessionActivateSpace(mgr SessionManager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		spaceID := chi.URLParam(r, "spaceId")
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			if err := requireSpace(s.State(), spaceID); err != nil {
				return err
			}
			s.State().SetActiveSpace(spaceID)
			return nil
		})
	}
}

// SessionRestore loads a saved quotation into the session. As a template
// the client, project and event are dropped.
func SessionRestore(mgr SessionManager, quotes QuotationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if quotes == nil {
			responses.WriteError(r.Context(), logg, w, quotationsUnavailable())
			return
		}
		var payload restoreRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		rec, err := quotes.GetByID(r.Context(), payload.QuotationID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		mutateSession(mgr, logg, w, r, http.StatusOK, func(s *quote.Session) error {
			quotations.Restore(s.State(), rec, payload.AsTemplate)
			return nil
		})
	}
}
