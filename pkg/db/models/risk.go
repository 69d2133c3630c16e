package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Risk is a single entry in an organization's AI risk register.
type Risk struct {
	ID            uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID         uuid.UUID        `gorm:"column:org_id;type:uuid;not null;index"`
	Title         string           `gorm:"column:title;not null"`
	Description   *string          `gorm:"column:description"`
	Category      string           `gorm:"column:category;not null"`
	Likelihood    enums.RiskLevel  `gorm:"column:likelihood;type:risk_level;not null"`
	Impact        enums.RiskLevel  `gorm:"column:impact;type:risk_level;not null"`
	InherentLevel enums.RiskLevel  `gorm:"column:inherent_level;type:risk_level;not null"`
	Status        enums.RiskStatus `gorm:"column:status;type:risk_status;not null;default:'open'"`
	OwnerID       *uuid.UUID       `gorm:"column:owner_id;type:uuid"`
	Mitigation    *string          `gorm:"column:mitigation"`
	ReviewAt      *time.Time       `gorm:"column:review_at"`
	CreatedAt     time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt     time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
