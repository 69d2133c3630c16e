package risks

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// RiskDTO is the API view of a risk register entry.
type RiskDTO struct {
	ID            uuid.UUID        `json:"id"`
	OrgID         uuid.UUID        `json:"org_id"`
	Title         string           `json:"title"`
	Description   *string          `json:"description,omitempty"`
	Category      string           `json:"category"`
	Likelihood    enums.RiskLevel  `json:"likelihood"`
	Impact        enums.RiskLevel  `json:"impact"`
	InherentLevel enums.RiskLevel  `json:"inherent_level"`
	Status        enums.RiskStatus `json:"status"`
	OwnerID       *uuid.UUID       `json:"owner_id,omitempty"`
	Mitigation    *string          `json:"mitigation,omitempty"`
	ReviewAt      *time.Time       `json:"review_at,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

// CreateRiskDTO carries the fields accepted when opening a risk.
type CreateRiskDTO struct {
	Title       string     `json:"title" validate:"required,max=200"`
	Description *string    `json:"description,omitempty"`
	Category    string     `json:"category" validate:"required,max=100"`
	Likelihood  string     `json:"likelihood" validate:"required"`
	Impact      string     `json:"impact" validate:"required"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	Mitigation  *string    `json:"mitigation,omitempty"`
	ReviewAt    *time.Time `json:"review_at,omitempty"`
}

// UpdateRiskDTO carries optional updates; nil fields are left untouched.
type UpdateRiskDTO struct {
	Title       *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty" validate:"omitempty,max=100"`
	Likelihood  *string    `json:"likelihood,omitempty"`
	Impact      *string    `json:"impact,omitempty"`
	Status      *string    `json:"status,omitempty"`
	OwnerID     *uuid.UUID `json:"owner_id,omitempty"`
	Mitigation  *string    `json:"mitigation,omitempty"`
	ReviewAt    *time.Time `json:"review_at,omitempty"`
}

// ListRisksQuery filters the register listing.
type ListRisksQuery struct {
	Status *enums.RiskStatus
	Limit  int
	Cursor string
}

// RiskPageDTO is one page of register entries.
type RiskPageDTO struct {
	Items      []RiskDTO `json:"items"`
	NextCursor *string   `json:"next_cursor,omitempty"`
}

// ToDTO maps the model into its API view.
func ToDTO(risk *models.Risk) RiskDTO {
	return RiskDTO{
		ID:            risk.ID,
		OrgID:         risk.OrgID,
		Title:         risk.Title,
		Description:   risk.Description,
		Category:      risk.Category,
		Likelihood:    risk.Likelihood,
		Impact:        risk.Impact,
		InherentLevel: risk.InherentLevel,
		Status:        risk.Status,
		OwnerID:       risk.OwnerID,
		Mitigation:    risk.Mitigation,
		ReviewAt:      risk.ReviewAt,
		CreatedAt:     risk.CreatedAt,
		UpdatedAt:     risk.UpdatedAt,
	}
}
