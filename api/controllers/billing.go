package controllers

import (
	"net/http"

	"github.com/veridianlabs/governport-backend/api/responses"
	"github.com/veridianlabs/governport-backend/api/validators"
	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

type checkoutBody struct {
	Plan   string `json:"plan" validate:"required"`
	Period string `json:"period" validate:"required"`
}

// BillingListPlans is public so the pricing page can render without a session.
func BillingListPlans(svc *billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, err := svc.ListPlans(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"plans": plans})
	}
}

// BillingGetSubscription returns the active organization's subscription state.
func BillingGetSubscription(svc *billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sub, err := svc.GetSubscription(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sub)
	}
}

// BillingCreateCheckout starts a Stripe checkout session for a plan upgrade.
func BillingCreateCheckout(svc *billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body checkoutBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		plan, err := enums.ParsePlan(body.Plan)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid plan"))
			return
		}

		period, err := enums.ParseBillingPeriod(body.Period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "invalid billing period"))
			return
		}

		session, err := svc.CreateCheckoutSession(r.Context(), orgID, plan, period)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}

// BillingCreatePortal opens a Stripe customer portal session so owners can
// manage payment methods and cancellation on Stripe's hosted pages.
func BillingCreatePortal(svc *billing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, orgID, err := requestScope(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		session, err := svc.CreatePortalSession(r.Context(), orgID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, session)
	}
}
