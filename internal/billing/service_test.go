package billing

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
)

func TestServiceGetSubscriptionDefaultsToFreeTier(t *testing.T) {
	orgID := uuid.New()
	service := newBillingTestService(t, &fakeBillingRepo{}, &fakeOrgReader{org: &models.Organization{ID: orgID}}, &fakeStripeBillingClient{})

	dto, err := service.GetSubscription(context.Background(), orgID)
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if dto.Plan != enums.PlanObserver {
		t.Fatalf("expected observer fallback, got %s", dto.Plan)
	}
	if dto.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("expected canceled fallback status, got %s", dto.Status)
	}
}

func TestServiceGetSubscriptionReturnsStoredRow(t *testing.T) {
	orgID := uuid.New()
	end := time.Now().Add(30 * 24 * time.Hour)
	repo := &fakeBillingRepo{
		subscription: &models.Subscription{
			OrgID:            orgID,
			Plan:             enums.PlanProfessional,
			Status:           enums.SubscriptionStatusActive,
			BillingPeriod:    enums.BillingPeriodYearly,
			CurrentPeriodEnd: &end,
		},
	}
	service := newBillingTestService(t, repo, &fakeOrgReader{org: &models.Organization{ID: orgID}}, &fakeStripeBillingClient{})

	dto, err := service.GetSubscription(context.Background(), orgID)
	if err != nil {
		t.Fatalf("get subscription: %v", err)
	}
	if dto.Plan != enums.PlanProfessional || dto.BillingPeriod != enums.BillingPeriodYearly {
		t.Fatalf("unexpected dto %+v", dto)
	}
}

func TestServiceCreateCheckoutSession(t *testing.T) {
	orgID := uuid.New()
	priceID := "price_pro_month"
	repo := &fakeBillingRepo{
		plan: &models.BillingPlan{
			ID:            "pro-monthly",
			Plan:          enums.PlanProfessional,
			Period:        enums.BillingPeriodMonthly,
			Status:        enums.PlanStatusActive,
			StripePriceID: &priceID,
			TrialDays:     14,
		},
	}
	customerID := "cus_existing"
	stripeClient := &fakeStripeBillingClient{
		checkout: &stripe.CheckoutSession{ID: "cs_123", URL: "https://checkout.stripe.com/cs_123"},
	}
	service := newBillingTestService(t, repo, &fakeOrgReader{org: &models.Organization{ID: orgID, StripeCustomerID: &customerID}}, stripeClient)

	dto, err := service.CreateCheckoutSession(context.Background(), orgID, enums.PlanProfessional, enums.BillingPeriodMonthly)
	if err != nil {
		t.Fatalf("create checkout session: %v", err)
	}
	if dto.SessionID != "cs_123" || dto.URL == "" {
		t.Fatalf("unexpected dto %+v", dto)
	}

	params := stripeClient.checkoutParams
	if params == nil {
		t.Fatalf("expected checkout params recorded")
	}
	if params.Metadata["organization_id"] != orgID.String() {
		t.Fatalf("expected organization_id metadata, got %v", params.Metadata)
	}
	if params.SubscriptionData == nil || params.SubscriptionData.Metadata["organization_id"] != orgID.String() {
		t.Fatalf("expected organization_id on subscription metadata")
	}
	if params.SubscriptionData.TrialPeriodDays == nil || *params.SubscriptionData.TrialPeriodDays != 14 {
		t.Fatalf("expected trial days forwarded")
	}
	if params.Customer == nil || *params.Customer != customerID {
		t.Fatalf("expected existing customer reused")
	}
	if len(params.LineItems) != 1 || *params.LineItems[0].Price != priceID {
		t.Fatalf("expected price line item, got %+v", params.LineItems)
	}
}

func TestServiceCreateCheckoutSessionRejectsFreeTier(t *testing.T) {
	service := newBillingTestService(t, &fakeBillingRepo{}, &fakeOrgReader{org: &models.Organization{}}, &fakeStripeBillingClient{})

	_, err := service.CreateCheckoutSession(context.Background(), uuid.New(), enums.PlanObserver, enums.BillingPeriodMonthly)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceCreateCheckoutSessionWithoutPlanRow(t *testing.T) {
	service := newBillingTestService(t, &fakeBillingRepo{}, &fakeOrgReader{org: &models.Organization{}}, &fakeStripeBillingClient{})

	_, err := service.CreateCheckoutSession(context.Background(), uuid.New(), enums.PlanEnterprise, enums.BillingPeriodYearly)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceCreatePortalSessionRequiresCustomer(t *testing.T) {
	service := newBillingTestService(t, &fakeBillingRepo{}, &fakeOrgReader{org: &models.Organization{}}, &fakeStripeBillingClient{})

	_, err := service.CreatePortalSession(context.Background(), uuid.New())
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict, got %v", err)
	}
}

func TestServiceCreatePortalSession(t *testing.T) {
	customerID := "cus_portal"
	stripeClient := &fakeStripeBillingClient{
		portal: &stripe.BillingPortalSession{URL: "https://billing.stripe.com/p/session"},
	}
	service := newBillingTestService(t, &fakeBillingRepo{}, &fakeOrgReader{org: &models.Organization{StripeCustomerID: &customerID}}, stripeClient)

	dto, err := service.CreatePortalSession(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("create portal session: %v", err)
	}
	if dto.URL != "https://billing.stripe.com/p/session" {
		t.Fatalf("unexpected url %s", dto.URL)
	}
	if stripeClient.portalParams == nil || *stripeClient.portalParams.Customer != customerID {
		t.Fatalf("expected portal opened for customer")
	}
}

func TestServiceListPlansFiltersActive(t *testing.T) {
	repo := &fakeBillingRepo{
		plans: []models.BillingPlan{
			{ID: "pro-monthly", Plan: enums.PlanProfessional, Period: enums.BillingPeriodMonthly, Status: enums.PlanStatusActive},
		},
	}
	service := newBillingTestService(t, repo, &fakeOrgReader{org: &models.Organization{}}, &fakeStripeBillingClient{})

	plans, err := service.ListPlans(context.Background())
	if err != nil {
		t.Fatalf("list plans: %v", err)
	}
	if len(plans) != 1 || plans[0].ID != "pro-monthly" {
		t.Fatalf("unexpected plans %+v", plans)
	}
	if repo.listQuery.Status == nil || *repo.listQuery.Status != enums.PlanStatusActive {
		t.Fatalf("expected active-status filter, got %+v", repo.listQuery)
	}
}

func newBillingTestService(t *testing.T, repo Repository, orgRepo orgReader, stripeClient StripeBillingClient) *Service {
	t.Helper()
	service, err := NewService(ServiceParams{
		Repo:    repo,
		OrgRepo: orgRepo,
		Stripe:  stripeClient,
		Config: config.StripeConfig{
			SuccessURL:      "https://app.example.com/billing/success",
			CancelURL:       "https://app.example.com/billing/cancel",
			PortalReturnURL: "https://app.example.com/billing",
		},
	})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

type fakeBillingRepo struct {
	subscription *models.Subscription
	plan         *models.BillingPlan
	plans        []models.BillingPlan
	listQuery    ListBillingPlansQuery
}

func (f *fakeBillingRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeBillingRepo) UpsertSubscription(ctx context.Context, subscription *models.Subscription) error {
	return nil
}

func (f *fakeBillingRepo) FindSubscriptionByOrg(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error) {
	return f.subscription, nil
}

func (f *fakeBillingRepo) FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	return f.subscription, nil
}

func (f *fakeBillingRepo) ListSubscriptionsForReconciliation(ctx context.Context, limit int, lookback time.Duration) ([]models.Subscription, error) {
	return nil, nil
}

func (f *fakeBillingRepo) CreateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return nil
}

func (f *fakeBillingRepo) UpdateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return nil
}

func (f *fakeBillingRepo) ListBillingPlans(ctx context.Context, params ListBillingPlansQuery) ([]models.BillingPlan, error) {
	f.listQuery = params
	return f.plans, nil
}

func (f *fakeBillingRepo) FindBillingPlanByID(ctx context.Context, id string) (*models.BillingPlan, error) {
	return f.plan, nil
}

func (f *fakeBillingRepo) FindBillingPlanByStripePriceID(ctx context.Context, priceID string) (*models.BillingPlan, error) {
	return f.plan, nil
}

func (f *fakeBillingRepo) FindBillingPlanForTier(ctx context.Context, plan enums.Plan, period enums.BillingPeriod) (*models.BillingPlan, error) {
	if f.plan != nil && f.plan.Plan == plan && f.plan.Period == period {
		return f.plan, nil
	}
	return nil, nil
}

func (f *fakeBillingRepo) FindDefaultBillingPlan(ctx context.Context) (*models.BillingPlan, error) {
	return f.plan, nil
}

type fakeOrgReader struct {
	org *models.Organization
}

func (f *fakeOrgReader) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	if f.org == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return f.org, nil
}

type fakeStripeBillingClient struct {
	checkout       *stripe.CheckoutSession
	portal         *stripe.BillingPortalSession
	checkoutParams *stripe.CheckoutSessionParams
	portalParams   *stripe.BillingPortalSessionParams
}

func (f *fakeStripeBillingClient) CreateCheckoutSession(ctx context.Context, params *stripe.CheckoutSessionParams) (*stripe.CheckoutSession, error) {
	f.checkoutParams = params
	if f.checkout == nil {
		return &stripe.CheckoutSession{}, nil
	}
	return f.checkout, nil
}

func (f *fakeStripeBillingClient) CreatePortalSession(ctx context.Context, params *stripe.BillingPortalSessionParams) (*stripe.BillingPortalSession, error) {
	f.portalParams = params
	if f.portal == nil {
		return &stripe.BillingPortalSession{}, nil
	}
	return f.portal, nil
}
