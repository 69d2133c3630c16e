package models

import (
	"encoding/json"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// BillingPlan captures the local metadata for a subscription tier.
type BillingPlan struct {
	ID             string              `gorm:"column:id;primaryKey"`
	Plan           enums.Plan          `gorm:"column:plan;type:plan;not null;uniqueIndex:idx_billing_plans_plan_period"`
	Name           string              `gorm:"column:name;not null"`
	Status         enums.PlanStatus    `gorm:"column:status;type:plan_status;not null"`
	Period         enums.BillingPeriod `gorm:"column:period;type:billing_period;not null;uniqueIndex:idx_billing_plans_plan_period"`
	StripePriceID  *string             `gorm:"column:stripe_price_id"`
	IsDefault      bool                `gorm:"column:is_default;not null;default:false"`
	TrialDays      int                 `gorm:"column:trial_days;not null;default:0"`
	PriceAmount    decimal.Decimal     `gorm:"column:price_amount;type:numeric(12,2);not null"`
	CurrencyCode   string              `gorm:"column:currency_code;not null"`
	SeatLimit      int                 `gorm:"column:seat_limit;not null;default:0"`
	MonitorLimit   int                 `gorm:"column:monitor_limit;not null;default:0"`
	Features       pq.StringArray      `gorm:"column:features;type:text[];default:ARRAY[]::text[]"`
	UI             json.RawMessage     `gorm:"column:ui;type:jsonb"`
	CreatedAt      time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
