package cron

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

func TestSubscriptionReconcileJobSyncsStripeState(t *testing.T) {
	orgID := uuid.New()
	stripeID := "sub_reconcile"
	stored := &models.Subscription{
		ID:                   uuid.New(),
		OrgID:                orgID,
		Plan:                 enums.PlanProfessional,
		Status:               enums.SubscriptionStatusActive,
		StripeSubscriptionID: &stripeID,
	}
	repo := &reconcileBillingRepo{stored: stored}
	orgRepo := &reconcileOrgRepo{}
	job, err := NewSubscriptionReconcileJob(SubscriptionReconcileJobParams{
		Logger:      logger.New(logger.Options{}),
		DB:          &reconcileTxRunner{},
		BillingRepo: repo,
		OrgRepo:     orgRepo,
		StripeClient: &reconcileStripeClient{
			resp: &stripe.Subscription{
				ID:     stripeID,
				Status: stripe.SubscriptionStatusPastDue,
				Metadata: map[string]string{
					"organization_id": orgID.String(),
				},
			},
		},
	})
	if err != nil {
		t.Fatalf("setup job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
	if repo.upserted[0].Status != enums.SubscriptionStatusPastDue {
		t.Fatalf("expected status past_due, got %s", repo.upserted[0].Status)
	}
	if len(orgRepo.updates) != 1 {
		t.Fatalf("expected org plan update")
	}
	if orgRepo.updates[0].active {
		t.Fatalf("expected past_due to revoke access")
	}
	if orgRepo.updates[0].plan != enums.PlanObserver {
		t.Fatalf("expected inactive tenant downgraded to observer, got %s", orgRepo.updates[0].plan)
	}
}

func TestSubscriptionReconcileJobSoftResetsWhenStripeForgets(t *testing.T) {
	orgID := uuid.New()
	stripeID := "sub_gone"
	stored := &models.Subscription{
		ID:                   uuid.New(),
		OrgID:                orgID,
		Plan:                 enums.PlanEnterprise,
		Status:               enums.SubscriptionStatusActive,
		StripeSubscriptionID: &stripeID,
	}
	repo := &reconcileBillingRepo{stored: stored}
	orgRepo := &reconcileOrgRepo{}
	job, err := NewSubscriptionReconcileJob(SubscriptionReconcileJobParams{
		Logger:      logger.New(logger.Options{}),
		DB:          &reconcileTxRunner{},
		BillingRepo: repo,
		OrgRepo:     orgRepo,
		StripeClient: &reconcileStripeClient{
			err: &stripe.Error{HTTPStatusCode: 404},
		},
	})
	if err != nil {
		t.Fatalf("setup job: %v", err)
	}

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run job: %v", err)
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("expected one upsert, got %d", len(repo.upserted))
	}
	row := repo.upserted[0]
	if row.Plan != enums.PlanObserver || row.Status != enums.SubscriptionStatusCanceled {
		t.Fatalf("expected soft reset, got plan=%s status=%s", row.Plan, row.Status)
	}
	if row.StripeSubscriptionID != nil {
		t.Fatalf("expected stripe subscription id cleared")
	}
}

type reconcileBillingRepo struct {
	stored   *models.Subscription
	upserted []*models.Subscription
}

func (r *reconcileBillingRepo) WithTx(tx *gorm.DB) billing.Repository { return r }

func (r *reconcileBillingRepo) UpsertSubscription(ctx context.Context, sub *models.Subscription) error {
	r.upserted = append(r.upserted, sub)
	return nil
}

func (r *reconcileBillingRepo) FindSubscriptionByOrg(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error) {
	return r.stored, nil
}

func (r *reconcileBillingRepo) FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	if r.stored != nil && r.stored.StripeSubscriptionID != nil && *r.stored.StripeSubscriptionID == stripeSubscriptionID {
		return r.stored, nil
	}
	return nil, nil
}

func (r *reconcileBillingRepo) ListSubscriptionsForReconciliation(ctx context.Context, limit int, lookback time.Duration) ([]models.Subscription, error) {
	if r.stored == nil {
		return nil, nil
	}
	return []models.Subscription{*r.stored}, nil
}

func (r *reconcileBillingRepo) CreateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return nil
}

func (r *reconcileBillingRepo) UpdateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return nil
}

func (r *reconcileBillingRepo) ListBillingPlans(ctx context.Context, params billing.ListBillingPlansQuery) ([]models.BillingPlan, error) {
	return nil, nil
}

func (r *reconcileBillingRepo) FindBillingPlanByID(ctx context.Context, id string) (*models.BillingPlan, error) {
	return nil, nil
}

func (r *reconcileBillingRepo) FindBillingPlanByStripePriceID(ctx context.Context, priceID string) (*models.BillingPlan, error) {
	return nil, nil
}

func (r *reconcileBillingRepo) FindBillingPlanForTier(ctx context.Context, plan enums.Plan, period enums.BillingPeriod) (*models.BillingPlan, error) {
	return nil, nil
}

func (r *reconcileBillingRepo) FindDefaultBillingPlan(ctx context.Context) (*models.BillingPlan, error) {
	return nil, nil
}

type planUpdate struct {
	orgID  uuid.UUID
	plan   enums.Plan
	active bool
}

type reconcileOrgRepo struct {
	updates []planUpdate
}

func (r *reconcileOrgRepo) UpdatePlanStateWithTx(tx *gorm.DB, orgID uuid.UUID, plan enums.Plan, active bool) error {
	r.updates = append(r.updates, planUpdate{orgID: orgID, plan: plan, active: active})
	return nil
}

type reconcileTxRunner struct{}

func (r *reconcileTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type reconcileStripeClient struct {
	resp *stripe.Subscription
	err  error
}

func (r *reconcileStripeClient) Get(ctx context.Context, id string, params *stripe.SubscriptionParams) (*stripe.Subscription, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.resp, nil
}

func (r *reconcileStripeClient) Cancel(ctx context.Context, id string, params *stripe.SubscriptionCancelParams) (*stripe.Subscription, error) {
	return nil, nil
}
