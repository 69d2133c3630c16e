package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// BiasFinding records a measured disparity for a model and affected group.
type BiasFinding struct {
	ID            uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID         uuid.UUID           `gorm:"column:org_id;type:uuid;not null;index"`
	SystemName    string              `gorm:"column:system_name;not null"`
	Metric        string              `gorm:"column:metric;not null"`
	AffectedGroup string              `gorm:"column:affected_group;not null"`
	Disparity     decimal.Decimal     `gorm:"column:disparity;type:numeric(10,4);not null"`
	Status        enums.FindingStatus `gorm:"column:status;type:finding_status;not null;default:'open'"`
	Notes         *string             `gorm:"column:notes"`
	DetectedAt    time.Time           `gorm:"column:detected_at;not null"`
	ResolvedAt    *time.Time          `gorm:"column:resolved_at"`
	CreatedAt     time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
