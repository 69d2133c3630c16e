package cron

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/billing"
	"github.com/veridianlabs/governport-backend/internal/subscriptions"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/veridianlabs/governport-backend/pkg/logger"
)

const (
	defaultReconcileLimit    = 250
	defaultReconcileLookback = 7 * 24 * time.Hour
)

// SubscriptionReconcileJobParams configures the subscription sync cron job.
type SubscriptionReconcileJobParams struct {
	Logger       *logger.Logger
	DB           txRunner
	BillingRepo  billing.Repository
	OrgRepo      orgsRepository
	StripeClient subscriptions.StripeSubscriptionClient
	Limit        int
	Lookback     time.Duration
	Now          func() time.Time
}

// NewSubscriptionReconcileJob builds a reconciliation cron job. The job walks
// recently touched subscriptions and re-reads their Stripe state so rows that
// missed a webhook converge anyway.
func NewSubscriptionReconcileJob(params SubscriptionReconcileJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.BillingRepo == nil {
		return nil, fmt.Errorf("billing repository required")
	}
	if params.OrgRepo == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	if params.StripeClient == nil {
		return nil, fmt.Errorf("stripe client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	lookback := params.Lookback
	if lookback <= 0 {
		lookback = defaultReconcileLookback
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultReconcileLimit
	}
	return &subscriptionReconcileJob{
		logg:        params.Logger,
		db:          params.DB,
		billingRepo: params.BillingRepo,
		orgRepo:     params.OrgRepo,
		stripe:      params.StripeClient,
		now:         now,
		limit:       limit,
		lookback:    lookback,
	}, nil
}

type orgsRepository interface {
	UpdatePlanStateWithTx(tx *gorm.DB, orgID uuid.UUID, plan enums.Plan, subscriptionActive bool) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type subscriptionReconcileJob struct {
	logg        *logger.Logger
	db          txRunner
	billingRepo billing.Repository
	orgRepo     orgsRepository
	stripe      subscriptions.StripeSubscriptionClient
	now         func() time.Time
	limit       int
	lookback    time.Duration
}

func (j *subscriptionReconcileJob) Name() string { return "subscription-reconcile" }

func (j *subscriptionReconcileJob) Run(ctx context.Context) error {
	logCtx := j.logg.WithField(ctx, "job", j.Name())
	logCtx = j.logg.WithField(logCtx, "event", "cron.job")
	snapshot, err := j.billingRepo.ListSubscriptionsForReconciliation(logCtx, j.limit, j.lookback)
	if err != nil {
		return fmt.Errorf("list subscriptions for reconciliation: %w", err)
	}
	var errs error
	scanned := len(snapshot)
	synced := 0
	for i := range snapshot {
		if err := j.reconcileSubscription(logCtx, &snapshot[i]); err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		synced++
	}
	reportCtx := j.logg.WithFields(logCtx, map[string]any{
		"candidates": scanned,
		"synced":     synced,
	})
	j.logg.Info(reportCtx, "subscription reconcile loop complete")
	return errs
}

func (j *subscriptionReconcileJob) reconcileSubscription(ctx context.Context, sub *models.Subscription) error {
	fields := map[string]any{
		"subscription_id": sub.ID,
		"org_id":          sub.OrgID,
	}
	if sub.StripeSubscriptionID != nil {
		fields["stripe_subscription_id"] = *sub.StripeSubscriptionID
	}
	logCtx := j.logg.WithFields(ctx, fields)
	if sub.StripeSubscriptionID == nil || *sub.StripeSubscriptionID == "" {
		j.logg.Info(logCtx, "subscription missing stripe id; skipping")
		return nil
	}

	stripeSub, err := j.stripe.Get(logCtx, *sub.StripeSubscriptionID, &stripe.SubscriptionParams{})
	if err != nil {
		if isStripeNotFound(err) {
			// Stripe no longer knows the subscription; treat it like a
			// deletion whose webhook never arrived.
			return j.persist(logCtx, sub, nil)
		}
		return fmt.Errorf("fetch stripe subscription: %w", err)
	}
	return j.persist(logCtx, sub, stripeSub)
}

// persist applies either a fresh Stripe snapshot or, when stripeSub is nil, a
// soft reset to the free tier. Both paths run in one transaction with the org
// plan flags.
func (j *subscriptionReconcileJob) persist(ctx context.Context, sub *models.Subscription, stripeSub *stripe.Subscription) error {
	if err := j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.billingRepo.WithTx(tx)
		stored, err := repo.FindSubscriptionByStripeID(ctx, *sub.StripeSubscriptionID)
		if err != nil {
			return err
		}
		if stored == nil {
			j.logg.Info(ctx, "subscription removed from db; skipping")
			return nil
		}

		if stripeSub == nil {
			if err := subscriptions.SoftResetSubscription(stored, j.now()); err != nil {
				return err
			}
		} else if err := subscriptions.UpdateSubscriptionFromStripe(stored, stripeSub); err != nil {
			return err
		}
		if err := repo.UpsertSubscription(ctx, stored); err != nil {
			return err
		}

		active := subscriptions.IsActiveStatus(stored.Status)
		plan := stored.Plan
		if !plan.IsValid() || !active {
			plan = enums.PlanObserver
		}
		if err := j.orgRepo.UpdatePlanStateWithTx(tx, stored.OrgID, plan, active); err != nil {
			return err
		}

		successCtx := j.logg.WithFields(ctx, map[string]any{
			"status":   stored.Status,
			"entitled": active,
		})
		j.logg.Info(successCtx, "subscription reconciled")
		return nil
	}); err != nil {
		return fmt.Errorf("persist subscription reconciliation: %w", err)
	}
	return nil
}

func isStripeNotFound(err error) bool {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) {
		return stripeErr.HTTPStatusCode == http.StatusNotFound
	}
	return false
}
