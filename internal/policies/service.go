package policies

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

const defaultPolicyVersion = "1.0"

type repository interface {
	Create(ctx context.Context, policy *models.Policy) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Policy, error)
	List(ctx context.Context, orgID uuid.UUID, query ListPoliciesQuery) ([]models.Policy, *pagination.Cursor, error)
	Update(ctx context.Context, policy *models.Policy) error
}

// Service enforces the policy approval workflow. Status moves only along the
// transitions the workflow allows; approval stamps who approved and when.
type Service struct {
	repo  repository
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the policy service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "policy repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor, now: time.Now}, nil
}

// Create drafts a new policy. New policies always start in draft.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreatePolicyDTO) (PolicyDTO, error) {
	if orgID == uuid.Nil {
		return PolicyDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return PolicyDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	version := strings.TrimSpace(dto.Version)
	if version == "" {
		version = defaultPolicyVersion
	}

	policy := &models.Policy{
		OrgID:      orgID,
		Name:       strings.TrimSpace(dto.Name),
		Version:    version,
		Status:     enums.PolicyStatusDraft,
		Summary:    dto.Summary,
		DocumentID: dto.DocumentID,
	}
	if err := s.repo.Create(ctx, policy); err != nil {
		return PolicyDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create policy")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "policy.created",
		Resource:   "policy",
		ResourceID: policy.ID.String(),
		Metadata:   map[string]string{"version": policy.Version},
	})
	return ToDTO(policy), nil
}

// Get loads one policy.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (PolicyDTO, error) {
	policy, err := s.load(ctx, orgID, id)
	if err != nil {
		return PolicyDTO{}, err
	}
	return ToDTO(policy), nil
}

// List returns one page of the org's policies.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListPoliciesQuery) (PolicyPageDTO, error) {
	if orgID == uuid.Nil {
		return PolicyPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return PolicyPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list policies")
	}

	page := PolicyPageDTO{Items: make([]PolicyDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Update edits policy content. Approved policies are immutable; retire them
// and draft a new version instead.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto UpdatePolicyDTO) (PolicyDTO, error) {
	policy, err := s.load(ctx, orgID, id)
	if err != nil {
		return PolicyDTO{}, err
	}
	if policy.Status == enums.PolicyStatusApproved || policy.Status == enums.PolicyStatusRetired {
		return PolicyDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "approved and retired policies cannot be edited")
	}

	if dto.Name != nil {
		if strings.TrimSpace(*dto.Name) == "" {
			return PolicyDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		policy.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.Version != nil && strings.TrimSpace(*dto.Version) != "" {
		policy.Version = strings.TrimSpace(*dto.Version)
	}
	if dto.Summary != nil {
		policy.Summary = dto.Summary
	}
	if dto.DocumentID != nil {
		policy.DocumentID = dto.DocumentID
	}

	if err := s.repo.Update(ctx, policy); err != nil {
		return PolicyDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update policy")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "policy.updated",
		Resource:   "policy",
		ResourceID: policy.ID.String(),
	})
	return ToDTO(policy), nil
}

// Transition moves a policy along its workflow. Approval stamps approved_by,
// approved_at, and effective_at (defaulting to now when the caller does not
// schedule one).
func (s *Service) Transition(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto TransitionPolicyDTO) (PolicyDTO, error) {
	policy, err := s.load(ctx, orgID, id)
	if err != nil {
		return PolicyDTO{}, err
	}

	next, err := enums.ParsePolicyStatus(dto.Status)
	if err != nil {
		return PolicyDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if !policy.Status.CanTransitionTo(next) {
		return PolicyDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "policy cannot move from "+policy.Status.String()+" to "+next.String())
	}

	previous := policy.Status
	policy.Status = next
	if next == enums.PolicyStatusApproved {
		now := s.now().UTC()
		policy.ApprovedBy = actorID
		policy.ApprovedAt = &now
		if dto.EffectiveAt != nil {
			effective := dto.EffectiveAt.UTC()
			policy.EffectiveAt = &effective
		} else {
			policy.EffectiveAt = &now
		}
	}
	if next == enums.PolicyStatusDraft {
		// Review sent it back; the previous approval trail no longer applies.
		policy.ApprovedBy = nil
		policy.ApprovedAt = nil
		policy.EffectiveAt = nil
	}

	if err := s.repo.Update(ctx, policy); err != nil {
		return PolicyDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "transition policy")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "policy.transitioned",
		Resource:   "policy",
		ResourceID: policy.ID.String(),
		Metadata:   map[string]string{"from": previous.String(), "to": next.String()},
	})
	return ToDTO(policy), nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.Policy, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and policy id are required")
	}
	policy, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "policy not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load policy")
	}
	return policy, nil
}
