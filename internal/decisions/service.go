package decisions

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, decision *models.Decision) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Decision, error)
	List(ctx context.Context, orgID uuid.UUID, query ListDecisionsQuery) ([]models.Decision, *pagination.Cursor, error)
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Service keeps the governance decision log. Entries are append-only apart
// from deletion by an admin; there is no edit path.
type Service struct {
	repo  repository
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the decision log service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "decision repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor, now: time.Now}, nil
}

// Create logs a decision. The actor is recorded as the decider.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateDecisionDTO) (DecisionDTO, error) {
	if orgID == uuid.Nil {
		return DecisionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.Summary) == "" {
		return DecisionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "summary is required")
	}

	decidedAt := s.now().UTC()
	if dto.DecidedAt != nil {
		decidedAt = dto.DecidedAt.UTC()
	}

	decision := &models.Decision{
		OrgID:     orgID,
		Summary:   strings.TrimSpace(dto.Summary),
		Rationale: dto.Rationale,
		DecidedBy: actorID,
		RiskID:    dto.RiskID,
		DecidedAt: decidedAt,
	}
	if err := s.repo.Create(ctx, decision); err != nil {
		return DecisionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create decision")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "decision.logged",
		Resource:   "decision",
		ResourceID: decision.ID.String(),
	})
	return ToDTO(decision), nil
}

// Get loads one decision log entry.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (DecisionDTO, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return DecisionDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id and decision id are required")
	}
	decision, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DecisionDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "decision not found")
		}
		return DecisionDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load decision")
	}
	return ToDTO(decision), nil
}

// List returns one page of the org's decision log.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListDecisionsQuery) (DecisionPageDTO, error) {
	if orgID == uuid.Nil {
		return DecisionPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return DecisionPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list decisions")
	}

	page := DecisionPageDTO{Items: make([]DecisionDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Delete removes a decision log entry.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) error {
	if orgID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and decision id are required")
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "decision not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete decision")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "decision.deleted",
		Resource:   "decision",
		ResourceID: id.String(),
	})
	return nil
}
