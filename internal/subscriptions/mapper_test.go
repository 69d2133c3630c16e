package subscriptions

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

func TestOrgIDFromMetadata(t *testing.T) {
	orgID := uuid.New()

	got, err := OrgIDFromMetadata(map[string]string{"organization_id": orgID.String()})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if got != orgID {
		t.Fatalf("expected %s, got %s", orgID, got)
	}

	if _, err := OrgIDFromMetadata(nil); err == nil {
		t.Fatalf("expected error for nil metadata")
	}
	if _, err := OrgIDFromMetadata(map[string]string{"organization_id": "  "}); err == nil {
		t.Fatalf("expected error for blank value")
	}
	if _, err := OrgIDFromMetadata(map[string]string{"organization_id": "not-a-uuid"}); err == nil {
		t.Fatalf("expected error for malformed uuid")
	}
	if _, err := OrgIDFromMetadata(map[string]string{"org": orgID.String()}); err == nil {
		t.Fatalf("expected error for missing key")
	}
}

func TestBuildSubscriptionFromStripe(t *testing.T) {
	orgID := uuid.New()
	stripeSub := &stripe.Subscription{
		ID:                "sub_build",
		Status:            stripe.SubscriptionStatusTrialing,
		CancelAtPeriodEnd: true,
		Metadata: map[string]string{
			"organization_id": orgID.String(),
			"plan":            "enterprise",
		},
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				CurrentPeriodStart: 1700000000,
				CurrentPeriodEnd:   1702592000,
				Price: &stripe.Price{
					ID:        "price_ent_year",
					Recurring: &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalYear},
				},
			}},
		},
	}

	sub, err := BuildSubscriptionFromStripe(stripeSub, orgID, "cus_build")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if sub.OrgID != orgID {
		t.Fatalf("expected org %s, got %s", orgID, sub.OrgID)
	}
	if sub.Plan != enums.PlanEnterprise {
		t.Fatalf("expected plan enterprise, got %s", sub.Plan)
	}
	if sub.Status != enums.SubscriptionStatusTrialing {
		t.Fatalf("expected trialing, got %s", sub.Status)
	}
	if sub.BillingPeriod != enums.BillingPeriodYearly {
		t.Fatalf("expected yearly period, got %s", sub.BillingPeriod)
	}
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID != "sub_build" {
		t.Fatalf("expected stripe id kept, got %v", sub.StripeSubscriptionID)
	}
	if sub.StripeCustomerID == nil || *sub.StripeCustomerID != "cus_build" {
		t.Fatalf("expected customer id kept, got %v", sub.StripeCustomerID)
	}
	if sub.PriceID == nil || *sub.PriceID != "price_ent_year" {
		t.Fatalf("expected price id kept, got %v", sub.PriceID)
	}
	if sub.CurrentPeriodStart == nil || sub.CurrentPeriodStart.Unix() != 1700000000 {
		t.Fatalf("expected period start mapped, got %v", sub.CurrentPeriodStart)
	}
	if sub.CurrentPeriodEnd == nil || sub.CurrentPeriodEnd.Unix() != 1702592000 {
		t.Fatalf("expected period end mapped, got %v", sub.CurrentPeriodEnd)
	}
	if !sub.CancelAtPeriodEnd {
		t.Fatalf("expected cancel_at_period_end kept")
	}
}

func TestBuildSubscriptionFromStripeRejectsUnknownStatus(t *testing.T) {
	if _, err := BuildSubscriptionFromStripe(&stripe.Subscription{ID: "sub_bad", Status: "paused"}, uuid.New(), ""); err == nil {
		t.Fatalf("expected unknown status rejected")
	}
}

func TestUpdateSubscriptionFromStripeKeepsPlanWhenMetadataSilent(t *testing.T) {
	priceID := "price_old"
	target := &models.Subscription{
		Plan:    enums.PlanProfessional,
		Status:  enums.SubscriptionStatusActive,
		PriceID: &priceID,
	}
	stripeSub := &stripe.Subscription{
		ID:     "sub_update",
		Status: stripe.SubscriptionStatusPastDue,
	}

	if err := UpdateSubscriptionFromStripe(target, stripeSub); err != nil {
		t.Fatalf("update: %v", err)
	}
	if target.Plan != enums.PlanProfessional {
		t.Fatalf("expected plan retained, got %s", target.Plan)
	}
	if target.Status != enums.SubscriptionStatusPastDue {
		t.Fatalf("expected status past_due, got %s", target.Status)
	}
	if target.PriceID == nil || *target.PriceID != priceID {
		t.Fatalf("expected price retained, got %v", target.PriceID)
	}
}

func TestSoftResetSubscription(t *testing.T) {
	stripeID := "sub_reset"
	customerID := "cus_reset"
	priceID := "price_reset"
	target := &models.Subscription{
		Plan:                 enums.PlanEnterprise,
		Status:               enums.SubscriptionStatusActive,
		StripeCustomerID:     &customerID,
		StripeSubscriptionID: &stripeID,
		PriceID:              &priceID,
		CancelAtPeriodEnd:    true,
	}

	now := time.Date(2026, 2, 14, 12, 0, 0, 0, time.UTC)
	if err := SoftResetSubscription(target, now); err != nil {
		t.Fatalf("soft reset: %v", err)
	}
	if target.Plan != enums.PlanObserver {
		t.Fatalf("expected observer, got %s", target.Plan)
	}
	if target.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("expected canceled, got %s", target.Status)
	}
	if target.StripeSubscriptionID != nil {
		t.Fatalf("expected stripe subscription cleared")
	}
	if target.PriceID != nil {
		t.Fatalf("expected price cleared")
	}
	if target.StripeCustomerID == nil || *target.StripeCustomerID != customerID {
		t.Fatalf("expected customer link retained")
	}
	if target.CancelAtPeriodEnd {
		t.Fatalf("expected cancel flag cleared")
	}
	if target.CanceledAt == nil || !target.CanceledAt.Equal(now) {
		t.Fatalf("expected canceled_at %v, got %v", now, target.CanceledAt)
	}

	if err := SoftResetSubscription(nil, now); err == nil {
		t.Fatalf("expected nil target rejected")
	}
}

func TestBillingPeriodFromSubscriptionDefaultsMonthly(t *testing.T) {
	if got := billingPeriodFromSubscription(nil); got != enums.BillingPeriodMonthly {
		t.Fatalf("expected monthly default, got %s", got)
	}
	sub := &stripe.Subscription{
		Items: &stripe.SubscriptionItemList{
			Data: []*stripe.SubscriptionItem{{
				Price: &stripe.Price{Recurring: &stripe.PriceRecurring{Interval: stripe.PriceRecurringIntervalMonth}},
			}},
		},
	}
	if got := billingPeriodFromSubscription(sub); got != enums.BillingPeriodMonthly {
		t.Fatalf("expected monthly, got %s", got)
	}
}
