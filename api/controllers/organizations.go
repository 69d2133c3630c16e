package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/organizations"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

type updateOrganizationBody struct {
	Name         *string `json:"name" validate:"omitempty,min=2,max=120"`
	Description  *string `json:"description" validate:"omitempty,max=2000"`
	Website      *string `json:"website" validate:"omitempty,url"`
	ContactEmail *string `json:"contactEmail" validate:"omitempty,email"`
}

type inviteUserBody struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,min=1,max=80"`
	LastName  string `json:"lastName" validate:"required,min=1,max=80"`
	Role      string `json:"role" validate:"required"`
}

// OrganizationGet returns the caller's active organization profile.
func OrganizationGet(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.GetByID(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

// OrganizationUpdate mutates the organization profile. Only owners and
// admins pass the service-level permission check.
func OrganizationUpdate(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body updateOrganizationBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		org, err := svc.Update(r.Context(), userID, orgID, organizations.UpdateOrganizationInput{
			Name:         body.Name,
			Description:  body.Description,
			Website:      body.Website,
			ContactEmail: body.ContactEmail,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, org)
	}
}

// OrganizationListUsers returns the members of the active organization.
func OrganizationListUsers(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		members, err := svc.ListUsers(r.Context(), userID, orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"users": members})
	}
}

// OrganizationInviteUser creates (or attaches) a member and returns a
// one-time temporary password for accounts created by the invite.
func OrganizationInviteUser(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body inviteUserBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseMemberRole(body.Role)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid role"))
			return
		}

		member, tempPassword, err := svc.InviteUser(r.Context(), userID, orgID, organizations.InviteUserInput{
			Email:     body.Email,
			FirstName: body.FirstName,
			LastName:  body.LastName,
			Role:      role,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payload := map[string]any{"user": member}
		if tempPassword != "" {
			payload["temporaryPassword"] = tempPassword
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, payload)
	}
}

// OrganizationRemoveUser detaches a member from the organization.
func OrganizationRemoveUser(svc organizations.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		targetID, err := pathID(chi.URLParam(r, "userID"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RemoveUser(r.Context(), userID, orgID, targetID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"removed": true})
	}
}
