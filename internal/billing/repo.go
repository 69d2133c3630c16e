package billing

import (
	"context"
	"time"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository handles billing persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	UpsertSubscription(ctx context.Context, subscription *models.Subscription) error
	FindSubscriptionByOrg(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error)
	FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error)
	ListSubscriptionsForReconciliation(ctx context.Context, limit int, lookback time.Duration) ([]models.Subscription, error)
	CreateBillingPlan(ctx context.Context, plan *models.BillingPlan) error
	UpdateBillingPlan(ctx context.Context, plan *models.BillingPlan) error
	ListBillingPlans(ctx context.Context, params ListBillingPlansQuery) ([]models.BillingPlan, error)
	FindBillingPlanByID(ctx context.Context, id string) (*models.BillingPlan, error)
	FindBillingPlanByStripePriceID(ctx context.Context, priceID string) (*models.BillingPlan, error)
	FindBillingPlanForTier(ctx context.Context, plan enums.Plan, period enums.BillingPeriod) (*models.BillingPlan, error)
	FindDefaultBillingPlan(ctx context.Context) (*models.BillingPlan, error)
}

type repository struct {
	db *gorm.DB
}

// ListBillingPlansQuery configures billing plan list queries.
type ListBillingPlansQuery struct {
	Status    *enums.PlanStatus
	IsDefault *bool
}

// NewRepository returns a billing repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// UpsertSubscription writes the subscription keyed on org_id so each tenant
// holds at most one row.
func (r *repository) UpsertSubscription(ctx context.Context, subscription *models.Subscription) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "org_id"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"plan",
				"status",
				"billing_period",
				"stripe_customer_id",
				"stripe_subscription_id",
				"price_id",
				"current_period_start",
				"current_period_end",
				"cancel_at_period_end",
				"canceled_at",
				"metadata",
				"updated_at",
			}),
		}).
		Create(subscription).Error
}

func (r *repository) FindSubscriptionByOrg(ctx context.Context, orgID uuid.UUID) (*models.Subscription, error) {
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("org_id = ?", orgID).
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) FindSubscriptionByStripeID(ctx context.Context, stripeSubscriptionID string) (*models.Subscription, error) {
	if stripeSubscriptionID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var sub models.Subscription
	if err := r.db.WithContext(ctx).
		Where("stripe_subscription_id = ?", stripeSubscriptionID).
		First(&sub).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &sub, nil
}

func (r *repository) ListSubscriptionsForReconciliation(ctx context.Context, limit int, lookback time.Duration) ([]models.Subscription, error) {
	if limit <= 0 {
		limit = 250
	}
	if lookback <= 0 {
		lookback = 7 * 24 * time.Hour
	}
	cutoff := time.Now().UTC().Add(-lookback)
	statuses := []enums.SubscriptionStatus{
		enums.SubscriptionStatusActive,
		enums.SubscriptionStatusTrialing,
		enums.SubscriptionStatusPastDue,
		enums.SubscriptionStatusIncomplete,
		enums.SubscriptionStatusIncompleteExpired,
		enums.SubscriptionStatusUnpaid,
	}
	var subs []models.Subscription
	query := r.db.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("stripe_subscription_id IS NOT NULL").
		Where("(status IN (?) OR cancel_at_period_end OR current_period_end >= ?)", statuses, cutoff).
		Order("updated_at DESC").
		Limit(limit)
	if err := query.Find(&subs).Error; err != nil {
		return nil, err
	}
	return subs, nil
}

func (r *repository) CreateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return r.db.WithContext(ctx).Create(plan).Error
}

func (r *repository) UpdateBillingPlan(ctx context.Context, plan *models.BillingPlan) error {
	return r.db.WithContext(ctx).Save(plan).Error
}

func (r *repository) ListBillingPlans(ctx context.Context, params ListBillingPlansQuery) ([]models.BillingPlan, error) {
	query := r.db.WithContext(ctx).Model(&models.BillingPlan{})
	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}
	if params.IsDefault != nil {
		query = query.Where("is_default = ?", *params.IsDefault)
	}

	var plans []models.BillingPlan
	if err := query.Order("is_default DESC, price_amount ASC, name ASC").Find(&plans).Error; err != nil {
		return nil, err
	}
	return plans, nil
}

func (r *repository) FindBillingPlanByID(ctx context.Context, id string) (*models.BillingPlan, error) {
	if id == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindBillingPlanByStripePriceID(ctx context.Context, priceID string) (*models.BillingPlan, error) {
	if priceID == "" {
		return nil, gorm.ErrRecordNotFound
	}
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("stripe_price_id = ?", priceID).
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}

func (r *repository) FindBillingPlanForTier(ctx context.Context, plan enums.Plan, period enums.BillingPeriod) (*models.BillingPlan, error) {
	var row models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("plan = ? AND period = ?", plan, period).
		First(&row).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *repository) FindDefaultBillingPlan(ctx context.Context) (*models.BillingPlan, error) {
	var plan models.BillingPlan
	if err := r.db.WithContext(ctx).
		Where("is_default = true").
		Order("updated_at DESC").
		First(&plan).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &plan, nil
}
