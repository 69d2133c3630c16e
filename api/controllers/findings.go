package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/findings"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// FindingRecord files a bias finding against a monitored system.
func FindingRecord(svc *findings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body findings.CreateFindingDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		finding, err := svc.Create(r.Context(), orgID, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, finding)
	}
}

// FindingGet returns one bias finding.
func FindingGet(svc *findings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "findingID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		finding, err := svc.Get(r.Context(), orgID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, finding)
	}
}

// FindingList pages through findings with optional status and system
// filters.
func FindingList(svc *findings.Service, logg *logger.Logger) http.HandlerFunc {
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

		query := findings.ListFindingsQuery{
			SystemName: validators.SanitizeString(r.URL.Query().Get("system_name"), 200),
			Limit:      limit,
			Cursor:     cursor,
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseFindingStatus(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid status filter"))
				return
			}
			query.Status = &status
		}

		page, err := svc.List(r.Context(), orgID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// FindingUpdate applies a partial update, including resolution.
func FindingUpdate(svc *findings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "findingID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body findings.UpdateFindingDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		finding, err := svc.Update(r.Context(), orgID, id, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, finding)
	}
}
