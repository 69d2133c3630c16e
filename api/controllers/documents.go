package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/documents"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

// DocumentRequestUpload reserves a document row and returns a signed PUT URL
// the browser uploads against directly.
func DocumentRequestUpload(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body documents.CreateUploadDTO
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slot, err := svc.RequestUpload(r.Context(), orgID, &userID, body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, slot)
	}
}

// DocumentConfirmUpload marks a pending document as uploaded.
func DocumentConfirmUpload(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "documentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.ConfirmUpload(r.Context(), orgID, id, &userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// DocumentDownload returns a short-lived signed read URL.
func DocumentDownload(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "documentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		download, err := svc.Download(r.Context(), orgID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, download)
	}
}

// DocumentGet returns one document's metadata.
func DocumentGet(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "documentID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		doc, err := svc.Get(r.Context(), orgID, id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, doc)
	}
}

// DocumentList pages through documents with optional kind and status
// filters.
func DocumentList(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
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

		query := documents.ListDocumentsQuery{Limit: limit, Cursor: cursor}
		if raw := r.URL.Query().Get("kind"); raw != "" {
			kind, err := enums.ParseDocumentKind(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid kind filter"))
				return
			}
			query.Kind = &kind
		}
		if raw := r.URL.Query().Get("status"); raw != "" {
			status, err := enums.ParseDocumentStatus(raw)
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

// DocumentDelete removes the stored object and marks the row deleted.
func DocumentDelete(svc *documents.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		id, err := pathID(chi.URLParam(r, "documentID"))
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
