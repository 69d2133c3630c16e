package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MetricRecord is one monitoring observation for an org-owned AI system.
type MetricRecord struct {
	ID         uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID      uuid.UUID       `gorm:"column:org_id;type:uuid;not null;index:idx_metric_records_org_recorded"`
	SystemName string          `gorm:"column:system_name;not null"`
	Name       string          `gorm:"column:name;not null"`
	Value      decimal.Decimal `gorm:"column:value;type:numeric(18,6);not null"`
	Unit       *string         `gorm:"column:unit"`
	RecordedAt time.Time       `gorm:"column:recorded_at;not null;index:idx_metric_records_org_recorded"`
	CreatedAt  time.Time       `gorm:"column:created_at;autoCreateTime"`
}
