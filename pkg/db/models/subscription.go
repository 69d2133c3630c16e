package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Subscription persists billing-provider subscription state per organization.
// At most one row exists per org; webhook processing upserts on org_id.
type Subscription struct {
	ID                   uuid.UUID                `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID                uuid.UUID                `gorm:"column:org_id;type:uuid;not null;uniqueIndex"`
	Plan                 enums.Plan               `gorm:"column:plan;type:plan;not null;default:'observer'"`
	Status               enums.SubscriptionStatus `gorm:"column:status;type:subscription_status;not null;default:'active'"`
	BillingPeriod        enums.BillingPeriod      `gorm:"column:billing_period;type:billing_period;not null;default:'monthly'"`
	StripeCustomerID     *string                  `gorm:"column:stripe_customer_id"`
	StripeSubscriptionID *string                  `gorm:"column:stripe_subscription_id;uniqueIndex"`
	PriceID              *string                  `gorm:"column:price_id"`
	CurrentPeriodStart   *time.Time               `gorm:"column:current_period_start"`
	CurrentPeriodEnd     *time.Time               `gorm:"column:current_period_end"`
	CancelAtPeriodEnd    bool                     `gorm:"column:cancel_at_period_end;not null;default:false"`
	CanceledAt           *time.Time               `gorm:"column:canceled_at"`
	Metadata             json.RawMessage          `gorm:"column:metadata;type:jsonb"`
	CreatedAt            time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}
