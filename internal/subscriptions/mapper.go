package subscriptions

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
)

// OrgMetadataKey is the Stripe metadata key carrying the tenant identifier.
const OrgMetadataKey = "organization_id"

// OrgIDFromMetadata extracts the organization ID attached to Stripe metadata.
func OrgIDFromMetadata(metadata map[string]string) (uuid.UUID, error) {
	if metadata == nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "stripe metadata is required")
	}
	raw, ok := metadata[OrgMetadataKey]
	if !ok || strings.TrimSpace(raw) == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "organization_id missing from metadata")
	}
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid organization_id metadata")
	}
	return id, nil
}

// BuildSubscriptionFromStripe maps a Stripe subscription into the canonical model.
func BuildSubscriptionFromStripe(stripeSub *stripe.Subscription, orgID uuid.UUID, customerID string) (*models.Subscription, error) {
	if stripeSub == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe subscription is nil")
	}
	status, err := mapStripeStatus(stripeSub.Status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid stripe subscription status")
	}

	metadata, err := marshalMetadata(stripeSub.Metadata)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal metadata")
	}

	plan := planFromMetadata(stripeSub.Metadata)
	start, end := periodFromSubscription(stripeSub)

	return &models.Subscription{
		OrgID:                orgID,
		Plan:                 plan,
		Status:               status,
		BillingPeriod:        billingPeriodFromSubscription(stripeSub),
		StripeCustomerID:     trimmedPtr(customerID),
		StripeSubscriptionID: trimmedPtr(stripeSub.ID),
		PriceID:              trimmedPtr(priceIDFromSubscription(stripeSub)),
		CurrentPeriodStart:   start,
		CurrentPeriodEnd:     end,
		CancelAtPeriodEnd:    stripeSub.CancelAtPeriodEnd,
		CanceledAt:           toTimePtr(stripeSub.CanceledAt),
		Metadata:             metadata,
	}, nil
}

// UpdateSubscriptionFromStripe mutates the stored subscription with fresh Stripe data.
func UpdateSubscriptionFromStripe(target *models.Subscription, stripeSub *stripe.Subscription) error {
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "target subscription is nil")
	}
	if stripeSub == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "stripe subscription is nil")
	}
	status, err := mapStripeStatus(stripeSub.Status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "invalid stripe subscription status")
	}

	metadata, err := marshalMetadata(stripeSub.Metadata)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal metadata")
	}

	target.StripeSubscriptionID = trimmedPtr(stripeSub.ID)
	target.Status = status
	if plan := planFromMetadata(stripeSub.Metadata); plan.IsValid() {
		target.Plan = plan
	}
	if priceID := priceIDFromSubscription(stripeSub); priceID != "" {
		target.PriceID = &priceID
	}
	target.BillingPeriod = billingPeriodFromSubscription(stripeSub)
	target.CurrentPeriodStart, target.CurrentPeriodEnd = periodFromSubscription(stripeSub)
	target.CancelAtPeriodEnd = stripeSub.CancelAtPeriodEnd
	target.CanceledAt = toTimePtr(stripeSub.CanceledAt)
	target.Metadata = metadata
	return nil
}

// SoftResetSubscription downgrades the stored row to the free tier after the
// provider reports the subscription deleted. The row survives so billing
// history and the Stripe customer link are retained.
func SoftResetSubscription(target *models.Subscription, now time.Time) error {
	if target == nil {
		return pkgerrors.New(pkgerrors.CodeInternal, "target subscription is nil")
	}
	at := now.UTC()
	target.Plan = enums.PlanObserver
	target.Status = enums.SubscriptionStatusCanceled
	target.StripeSubscriptionID = nil
	target.PriceID = nil
	target.CancelAtPeriodEnd = false
	target.CanceledAt = &at
	return nil
}

// IsActiveStatus reports whether the provided status grants paid access.
func IsActiveStatus(status enums.SubscriptionStatus) bool {
	return status.IsActive()
}

func mapStripeStatus(status stripe.SubscriptionStatus) (enums.SubscriptionStatus, error) {
	return enums.ParseSubscriptionStatus(string(status))
}

func planFromMetadata(metadata map[string]string) enums.Plan {
	if metadata == nil {
		return ""
	}
	plan, err := enums.ParsePlan(strings.TrimSpace(metadata["plan"]))
	if err != nil {
		return ""
	}
	return plan
}

func priceIDFromSubscription(sub *stripe.Subscription) string {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return ""
	}
	if sub.Items.Data[0].Price != nil {
		return sub.Items.Data[0].Price.ID
	}
	return ""
}

func billingPeriodFromSubscription(sub *stripe.Subscription) enums.BillingPeriod {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return enums.BillingPeriodMonthly
	}
	price := sub.Items.Data[0].Price
	if price == nil || price.Recurring == nil {
		return enums.BillingPeriodMonthly
	}
	if price.Recurring.Interval == stripe.PriceRecurringIntervalYear {
		return enums.BillingPeriodYearly
	}
	return enums.BillingPeriodMonthly
}

func periodFromSubscription(sub *stripe.Subscription) (*time.Time, *time.Time) {
	if sub == nil || sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, nil
	}
	item := sub.Items.Data[0]
	return toTimePtr(item.CurrentPeriodStart), toTimePtr(item.CurrentPeriodEnd)
}

func marshalMetadata(metadata map[string]string) (json.RawMessage, error) {
	if len(metadata) == 0 {
		return json.RawMessage("{}"), nil
	}
	data, err := json.Marshal(metadata)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

func trimmedPtr(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func toTimePtr(ts int64) *time.Time {
	if ts == 0 {
		return nil
	}
	t := time.Unix(ts, 0).UTC()
	return &t
}
