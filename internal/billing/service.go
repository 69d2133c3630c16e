package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
)

type orgReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
}

// ServiceParams wires the billing service dependencies.
type ServiceParams struct {
	Repo    Repository
	OrgRepo orgReader
	Stripe  StripeBillingClient
	Config  config.StripeConfig
}

// Service exposes subscription state and hosted Stripe flows to the API.
type Service struct {
	repo    Repository
	orgRepo orgReader
	stripe  StripeBillingClient
	cfg     config.StripeConfig
}

// NewService validates dependencies and returns the billing service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "billing repo required")
	}
	if params.OrgRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe client required")
	}
	return &Service{
		repo:    params.Repo,
		orgRepo: params.OrgRepo,
		stripe:  params.Stripe,
		cfg:     params.Config,
	}, nil
}

// GetSubscription returns the tenant's subscription view. Tenants without a
// stored row get the free-tier shape rather than a 404.
func (s *Service) GetSubscription(ctx context.Context, orgID uuid.UUID) (SubscriptionDTO, error) {
	if orgID == uuid.Nil {
		return SubscriptionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	sub, err := s.repo.FindSubscriptionByOrg(ctx, orgID)
	if err != nil {
		return SubscriptionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load subscription")
	}
	return SubscriptionToDTO(orgID, sub), nil
}

// ListPlans returns the purchasable tiers in display order.
func (s *Service) ListPlans(ctx context.Context) ([]BillingPlanDTO, error) {
	status := enums.PlanStatusActive
	plans, err := s.repo.ListBillingPlans(ctx, ListBillingPlansQuery{Status: &status})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list billing plans")
	}
	out := make([]BillingPlanDTO, 0, len(plans))
	for _, plan := range plans {
		out = append(out, PlanToDTO(plan))
	}
	return out, nil
}

// CreateCheckoutSession starts a hosted Stripe checkout for the requested tier.
// The organization ID rides in the session metadata so the webhook can route
// the resulting subscription back to the tenant.
func (s *Service) CreateCheckoutSession(ctx context.Context, orgID uuid.UUID, plan enums.Plan, period enums.BillingPeriod) (CheckoutSessionDTO, error) {
	if orgID == uuid.Nil {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if !plan.IsValid() || !plan.IsPaid() {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("plan %q is not purchasable", plan))
	}
	if !period.IsValid() {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid billing period %q", period))
	}

	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return CheckoutSessionDTO{}, err
	}

	billingPlan, err := s.repo.FindBillingPlanForTier(ctx, plan, period)
	if err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve billing plan")
	}
	if billingPlan == nil || billingPlan.StripePriceID == nil || *billingPlan.StripePriceID == "" {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("no %s/%s plan is available for purchase", plan, period))
	}
	if billingPlan.Status != enums.PlanStatusActive {
		return CheckoutSessionDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, fmt.Sprintf("plan %s is not open for new subscriptions", billingPlan.ID))
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(s.cfg.SuccessURL + "?session_id={CHECKOUT_SESSION_ID}"),
		CancelURL:  stripe.String(s.cfg.CancelURL),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				Price:    stripe.String(*billingPlan.StripePriceID),
				Quantity: stripe.Int64(1),
			},
		},
		Metadata: map[string]string{
			"organization_id": orgID.String(),
			"plan":            string(plan),
		},
		SubscriptionData: &stripe.CheckoutSessionSubscriptionDataParams{
			Metadata: map[string]string{
				"organization_id": orgID.String(),
				"plan":            string(plan),
			},
		},
	}
	if org.StripeCustomerID != nil && *org.StripeCustomerID != "" {
		params.Customer = stripe.String(*org.StripeCustomerID)
	}
	if billingPlan.TrialDays > 0 {
		params.SubscriptionData.TrialPeriodDays = stripe.Int64(int64(billingPlan.TrialDays))
	}

	session, err := s.stripe.CreateCheckoutSession(ctx, params)
	if err != nil {
		return CheckoutSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	return CheckoutSessionDTO{SessionID: session.ID, URL: session.URL}, nil
}

// CreatePortalSession opens the hosted billing portal for an org that already
// has a Stripe customer.
func (s *Service) CreatePortalSession(ctx context.Context, orgID uuid.UUID) (PortalSessionDTO, error) {
	if orgID == uuid.Nil {
		return PortalSessionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	org, err := s.loadOrg(ctx, orgID)
	if err != nil {
		return PortalSessionDTO{}, err
	}
	if org.StripeCustomerID == nil || *org.StripeCustomerID == "" {
		return PortalSessionDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "organization has no billing customer yet")
	}

	params := &stripe.BillingPortalSessionParams{
		Customer:  stripe.String(*org.StripeCustomerID),
		ReturnURL: stripe.String(s.cfg.PortalReturnURL),
	}
	session, err := s.stripe.CreatePortalSession(ctx, params)
	if err != nil {
		return PortalSessionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create portal session")
	}
	return PortalSessionDTO{URL: session.URL}, nil
}

func (s *Service) loadOrg(ctx context.Context, orgID uuid.UUID) (*models.Organization, error) {
	org, err := s.orgRepo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return org, nil
}
