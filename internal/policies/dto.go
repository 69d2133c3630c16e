package policies

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// PolicyDTO is the API view of a governance policy.
type PolicyDTO struct {
	ID          uuid.UUID          `json:"id"`
	OrgID       uuid.UUID          `json:"org_id"`
	Name        string             `json:"name"`
	Version     string             `json:"version"`
	Status      enums.PolicyStatus `json:"status"`
	Summary     *string            `json:"summary,omitempty"`
	DocumentID  *uuid.UUID         `json:"document_id,omitempty"`
	EffectiveAt *time.Time         `json:"effective_at,omitempty"`
	ApprovedBy  *uuid.UUID         `json:"approved_by,omitempty"`
	ApprovedAt  *time.Time         `json:"approved_at,omitempty"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

// CreatePolicyDTO carries the fields accepted when drafting a policy.
type CreatePolicyDTO struct {
	Name       string     `json:"name" validate:"required,max=200"`
	Version    string     `json:"version,omitempty"`
	Summary    *string    `json:"summary,omitempty"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
}

// UpdatePolicyDTO carries optional updates; nil fields are left untouched.
type UpdatePolicyDTO struct {
	Name       *string    `json:"name,omitempty" validate:"omitempty,max=200"`
	Version    *string    `json:"version,omitempty"`
	Summary    *string    `json:"summary,omitempty"`
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
}

// TransitionPolicyDTO requests a workflow move.
type TransitionPolicyDTO struct {
	Status      string     `json:"status" validate:"required"`
	EffectiveAt *time.Time `json:"effective_at,omitempty"`
}

// ListPoliciesQuery filters the policy listing.
type ListPoliciesQuery struct {
	Status *enums.PolicyStatus
	Limit  int
	Cursor string
}

// PolicyPageDTO is one page of policies.
type PolicyPageDTO struct {
	Items      []PolicyDTO `json:"items"`
	NextCursor *string     `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view.
func ToDTO(policy *models.Policy) PolicyDTO {
	return PolicyDTO{
		ID:          policy.ID,
		OrgID:       policy.OrgID,
		Name:        policy.Name,
		Version:     policy.Version,
		Status:      policy.Status,
		Summary:     policy.Summary,
		DocumentID:  policy.DocumentID,
		EffectiveAt: policy.EffectiveAt,
		ApprovedBy:  policy.ApprovedBy,
		ApprovedAt:  policy.ApprovedAt,
		CreatedAt:   policy.CreatedAt,
		UpdatedAt:   policy.UpdatedAt,
	}
}
