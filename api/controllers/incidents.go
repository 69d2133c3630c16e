package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/incidents"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// IncidentReport files a new incident.
func IncidentReport(svc *incidents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body incidents.CreateIncidentDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		incident, err := svc.Report(r.Context(), orgID, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, incident)
	}
}

// IncidentGet returns one incident.
func IncidentGet(svc *incidents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "incidentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		incident, err := svc.Get(r.Context(), orgID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, incident)
	}
}

// IncidentList pages through incidents with optional status and severity
// filters.
func IncidentList(svc *incidents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, cursor, err := pageParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := incidents.ListIncidentsQuery{Limit: limit, Cursor: cursor}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseIncidentStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			query.Status = &status
		}
		if raw := r.URL.Query().Get("severity"); raw != "" {
			severity, err := enums.ParseIncidentSeverity(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid severity filter"))
				return
			}
			query.Severity = &severity
		}

		page, err := svc.List(r.Context(), orgID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// IncidentUpdate applies a partial update, including status moves.
func IncidentUpdate(svc *incidents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "incidentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body incidents.UpdateIncidentDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		incident, err := svc.Update(r.Context(), orgID, id, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, incident)
	}
}
