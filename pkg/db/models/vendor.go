package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Vendor tracks a third-party AI vendor under assessment.
type Vendor struct {
	ID               uuid.UUID                    `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID            uuid.UUID                    `gorm:"column:org_id;type:uuid;not null;index"`
	Name             string                       `gorm:"column:name;not null"`
	AIUsage          *string                      `gorm:"column:ai_usage"`
	RiskTier         enums.VendorRiskTier         `gorm:"column:risk_tier;type:vendor_risk_tier;not null;default:'moderate'"`
	AssessmentStatus enums.VendorAssessmentStatus `gorm:"column:assessment_status;type:vendor_assessment_status;not null;default:'not_started'"`
	ContactEmail     *string                      `gorm:"column:contact_email"`
	Website          *string                      `gorm:"column:website"`
	LastReviewedAt   *time.Time                   `gorm:"column:last_reviewed_at"`
	CreatedAt        time.Time                    `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time                    `gorm:"column:updated_at;autoUpdateTime"`
}
