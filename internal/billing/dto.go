package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// SubscriptionDTO is the API view of a tenant's subscription.
type SubscriptionDTO struct {
	OrgID              uuid.UUID                `json:"org_id"`
	Plan               enums.Plan               `json:"plan"`
	Status             enums.SubscriptionStatus `json:"status"`
	BillingPeriod      enums.BillingPeriod      `json:"billing_period"`
	CurrentPeriodStart *time.Time               `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   *time.Time               `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd  bool                     `json:"cancel_at_period_end"`
	CanceledAt         *time.Time               `json:"canceled_at,omitempty"`
}

// BillingPlanDTO is the API view of a purchasable tier.
type BillingPlanDTO struct {
	ID           string              `json:"id"`
	Plan         enums.Plan          `json:"plan"`
	Name         string              `json:"name"`
	Period       enums.BillingPeriod `json:"period"`
	PriceAmount  decimal.Decimal     `json:"price_amount"`
	CurrencyCode string              `json:"currency_code"`
	TrialDays    int                 `json:"trial_days"`
	SeatLimit    int                 `json:"seat_limit"`
	MonitorLimit int                 `json:"monitor_limit"`
	Features     []string            `json:"features"`
	IsDefault    bool                `json:"is_default"`
}

// CheckoutSessionDTO carries the hosted checkout redirect back to the caller.
type CheckoutSessionDTO struct {
	SessionID string `json:"session_id"`
	URL       string `json:"url"`
}

// PortalSessionDTO carries the hosted billing portal redirect.
type PortalSessionDTO struct {
	URL string `json:"url"`
}

// SubscriptionToDTO maps the stored row into its API view. A nil row maps to
// the free tier so callers always get a usable shape.
func SubscriptionToDTO(orgID uuid.UUID, sub *models.Subscription) SubscriptionDTO {
	if sub == nil {
		return SubscriptionDTO{
			OrgID:         orgID,
			Plan:          enums.PlanObserver,
			Status:        enums.SubscriptionStatusCanceled,
			BillingPeriod: enums.BillingPeriodMonthly,
		}
	}
	return SubscriptionDTO{
		OrgID:              sub.OrgID,
		Plan:               sub.Plan,
		Status:             sub.Status,
		BillingPeriod:      sub.BillingPeriod,
		CurrentPeriodStart: sub.CurrentPeriodStart,
		CurrentPeriodEnd:   sub.CurrentPeriodEnd,
		CancelAtPeriodEnd:  sub.CancelAtPeriodEnd,
		CanceledAt:         sub.CanceledAt,
	}
}

// PlanToDTO maps a billing plan row into its API view.
func PlanToDTO(plan models.BillingPlan) BillingPlanDTO {
	features := make([]string, len(plan.Features))
	copy(features, plan.Features)
	return BillingPlanDTO{
		ID:           plan.ID,
		Plan:         plan.Plan,
		Name:         plan.Name,
		Period:       plan.Period,
		PriceAmount:  plan.PriceAmount,
		CurrencyCode: plan.CurrencyCode,
		TrialDays:    plan.TrialDays,
		SeatLimit:    plan.SeatLimit,
		MonitorLimit: plan.MonitorLimit,
		Features:     features,
		IsDefault:    plan.IsDefault,
	}
}
