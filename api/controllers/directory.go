package controllers

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mepex/cotizador-backend/api/responses"
	"github.com/mepex/cotizador-backend/api/validators"
	pkgerrors "github.com/mepex/cotizador-backend/pkg/errors"
	"github.com/mepex/cotizador-backend/pkg/logger"
)

const maxSearchLength = 100

// directoryList adapts a list call into a handler.
func directoryList[T any](svc DirectoryService, logg *logger.Logger, list func(DirectoryService, context.Context) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}
		out, err := list(svc, r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

// directorySearch reads ?q= and runs a title search.
func directorySearch[T any](svc DirectoryService, logg *logger.Logger, search func(DirectoryService, context.Context, string) ([]T, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}
		q := validators.SanitizeString(r.URL.Query().Get("q"), maxSearchLength)
		out, err := search(svc, r.Context(), q)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, out)
	}
}

func ClientsList(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directoryList(svc, logg, DirectoryService.ListClients)
}

func ClientsSearch(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directorySearch(svc, logg, DirectoryService.SearchClients)
}

func ProjectsList(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directoryList(svc, logg, DirectoryService.ListProjects)
}

func ProjectsSearch(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directorySearch(svc, logg, DirectoryService.SearchProjects)
}

func EventsList(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directoryList(svc, logg, DirectoryService.ListEvents)
}

func EventsSearch(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return directorySearch(svc, logg, DirectoryService.SearchEvents)
}

// ProjectGet returns a project with its related client and event.
func ProjectGet(svc DirectoryService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "directory service unavailable"))
			return
		}
		id := strings.TrimSpace(chi.URLParam(r, "projectId"))
		if id == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "project id is required"))
			return
		}
		project, err := svc.GetProject(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, project)
	}
}
