package vendors

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// VendorDTO is the API view of a vendor under assessment.
type VendorDTO struct {
	ID               uuid.UUID                    `json:"id"`
	OrgID            uuid.UUID                    `json:"org_id"`
	Name             string                       `json:"name"`
	AIUsage          *string                      `json:"ai_usage,omitempty"`
	RiskTier         enums.VendorRiskTier         `json:"risk_tier"`
	AssessmentStatus enums.VendorAssessmentStatus `json:"assessment_status"`
	ContactEmail     *string                      `json:"contact_email,omitempty"`
	Website          *string                      `json:"website,omitempty"`
	LastReviewedAt   *time.Time                   `json:"last_reviewed_at,omitempty"`
	CreatedAt        time.Time                    `json:"created_at"`
	UpdatedAt        time.Time                    `json:"updated_at"`
}

// CreateVendorDTO carries the fields accepted when registering a vendor.
type CreateVendorDTO struct {
	Name         string  `json:"name" validate:"required,max=200"`
	AIUsage      *string `json:"ai_usage,omitempty"`
	RiskTier     string  `json:"risk_tier,omitempty"`
	ContactEmail *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Website      *string `json:"website,omitempty" validate:"omitempty,url"`
}

// UpdateVendorDTO carries optional updates; nil fields are left untouched.
type UpdateVendorDTO struct {
	Name             *string `json:"name,omitempty" validate:"omitempty,max=200"`
	AIUsage          *string `json:"ai_usage,omitempty"`
	RiskTier         *string `json:"risk_tier,omitempty"`
	AssessmentStatus *string `json:"assessment_status,omitempty"`
	ContactEmail     *string `json:"contact_email,omitempty" validate:"omitempty,email"`
	Website          *string `json:"website,omitempty" validate:"omitempty,url"`
}

// ListVendorsQuery filters the vendor listing.
type ListVendorsQuery struct {
	RiskTier         *enums.VendorRiskTier
	AssessmentStatus *enums.VendorAssessmentStatus
	Limit            int
	Cursor           string
}

// VendorPageDTO is one page of vendors.
type VendorPageDTO struct {
	Items      []VendorDTO `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view.
func ToDTO(vendor *models.Vendor) VendorDTO {
	return VendorDTO{
		ID:               vendor.ID,
		OrgID:            vendor.OrgID,
		Name:             vendor.Name,
		AIUsage:          vendor.AIUsage,
		RiskTier:         vendor.RiskTier,
		AssessmentStatus: vendor.AssessmentStatus,
		ContactEmail:     vendor.ContactEmail,
		Website:          vendor.Website,
		LastReviewedAt:   vendor.LastReviewedAt,
		CreatedAt:        vendor.CreatedAt,
		UpdatedAt:        vendor.UpdatedAt,
	}
}
