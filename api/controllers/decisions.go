package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/decisions"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// DecisionLog appends an entry to the organization's decision log.
func DecisionLog(svc *decisions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body decisions.CreateDecisionDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.Create(r.Context(), orgID, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, decision)
	}
}

// DecisionGet returns one decision log entry.
func DecisionGet(svc *decisions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "decisionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		decision, err := svc.Get(r.Context(), orgID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, decision)
	}
}

// DecisionList pages through the log, optionally scoped to one risk.
func DecisionList(svc *decisions.Service, logg *logger.Logger) http.HandlerFunc {
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

		query := decisions.ListDecisionsQuery{Limit: limit, Cursor: cursor}
		if raw := r.URL.Query().Get("risk_id"); raw != "" {
			riskID, err := uuid.Parse(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid risk_id filter"))
				return
			}
			query.RiskID = &riskID
		}

		page, err := svc.List(r.Context(), orgID, query)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}

// DecisionDelete removes a log entry.
func DecisionDelete(svc *decisions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "decisionID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), orgID, id, &userID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"deleted": true})
	}
}
