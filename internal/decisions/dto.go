package decisions

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
)

// DecisionDTO is the API view of a decision log entry.
type DecisionDTO struct {
	ID        uuid.UUID  `json:"id"`
	OrgID     uuid.UUID  `json:"org_id"`
	Summary   string     `json:"summary"`
	Rationale *string    `json:"rationale,omitempty"`
	DecidedBy *uuid.UUID `json:"decided_by,omitempty"`
	RiskID    *uuid.UUID `json:"risk_id,omitempty"`
	DecidedAt time.Time  `json:"decided_at"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// CreateDecisionDTO carries the fields accepted when logging a decision.
type CreateDecisionDTO struct {
	Summary   string     `json:"summary" validate:"required,max=500"`
	Rationale *string    `json:"rationale,omitempty"`
	RiskID    *uuid.UUID `json:"risk_id,omitempty"`
	DecidedAt *time.Time `json:"decided_at,omitempty"`
}

// ListDecisionsQuery filters the decision log listing.
type ListDecisionsQuery struct {
	RiskID *uuid.UUID
	Limit  int
	Cursor string
}

// DecisionPageDTO is one page of decision log entries.
type DecisionPageDTO struct {
	Items      []DecisionDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view.
func ToDTO(decision *models.Decision) DecisionDTO {
	return DecisionDTO{
		ID:        decision.ID,
		OrgID:     decision.OrgID,
		Summary:   decision.Summary,
		Rationale: decision.Rationale,
		DecidedBy: decision.DecidedBy,
		RiskID:    decision.RiskID,
		DecidedAt: decision.DecidedAt,
		CreatedAt: decision.CreatedAt,
		UpdatedAt: decision.UpdatedAt,
	}
}
