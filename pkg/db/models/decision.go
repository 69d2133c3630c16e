package models

import (
	"time"

	"github.com/google/uuid"
)

// Decision is an entry in an organization's governance decision log.
type Decision struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID     uuid.UUID  `gorm:"column:org_id;type:uuid;not null;index"`
	Summary   string     `gorm:"column:summary;not null"`
	Rationale *string    `gorm:"column:rationale"`
	DecidedBy *uuid.UUID `gorm:"column:decided_by;type:uuid"`
	RiskID    *uuid.UUID `gorm:"column:risk_id;type:uuid"`
	DecidedAt time.Time  `gorm:"column:decided_at;not null"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
