package findings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// FindingDTO is the API view of a bias finding.
type FindingDTO struct {
	ID            uuid.UUID           `json:"id"`
	OrgID         uuid.UUID           `json:"org_id"`
	SystemName    string              `json:"system_name"`
	Metric        string              `json:"metric"`
	AffectedGroup string              `json:"affected_group"`
	Disparity     decimal.Decimal     `json:"disparity"`
	Status        enums.FindingStatus `json:"status"`
	Notes         *string             `json:"notes,omitempty"`
	DetectedAt    time.Time           `json:"detected_at"`
	ResolvedAt    *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

// CreateFindingDTO carries the fields accepted when recording a finding.
type CreateFindingDTO struct {
	SystemName    string          `json:"system_name" validate:"required,max=200"`
	Metric        string          `json:"metric" validate:"required,max=200"`
	AffectedGroup string          `json:"affected_group" validate:"required,max=200"`
	Disparity     decimal.Decimal `json:"disparity" validate:"required"`
	Notes         *string         `json:"notes,omitempty"`
	DetectedAt    *time.Time      `json:"detected_at,omitempty"`
}

// UpdateFindingDTO carries optional updates; nil fields are left untouched.
type UpdateFindingDTO struct {
	Status    *string          `json:"status,omitempty"`
	Disparity *decimal.Decimal `json:"disparity,omitempty"`
	Notes     *string          `json:"notes,omitempty"`
}

// ListFindingsQuery filters the findings listing.
type ListFindingsQuery struct {
	Status     *enums.FindingStatus
	SystemName string
	Limit      int
	Cursor     string
}

// FindingPageDTO is one page of bias findings.
type FindingPageDTO struct {
	Items      []FindingDTO `json:"items"`
	NextCursor *string      `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view.
func ToDTO(finding *models.BiasFinding) FindingDTO {
	return FindingDTO{
		ID:            finding.ID,
		OrgID:         finding.OrgID,
		SystemName:    finding.SystemName,
		Metric:        finding.Metric,
		AffectedGroup: finding.AffectedGroup,
		Disparity:     finding.Disparity,
		Status:        finding.Status,
		Notes:         finding.Notes,
		DetectedAt:    finding.DetectedAt,
		ResolvedAt:    finding.ResolvedAt,
		CreatedAt:     finding.CreatedAt,
		UpdatedAt:     finding.UpdatedAt,
	}
}
