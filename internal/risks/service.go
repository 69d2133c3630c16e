package risks

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, risk *models.Risk) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Risk, error)
	List(ctx context.Context, orgID uuid.UUID, query ListRisksQuery) ([]models.Risk, *pagination.Cursor, error)
	Update(ctx context.Context, risk *models.Risk) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Service owns the risk register rules: level computation and scoping.
type Service struct {
	repo  repository
	audit audit.Publisher
}

// NewService wires the risk register service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "risk repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor}, nil
}

// Create opens a register entry. The inherent level is always derived from
// likelihood and impact, never accepted from the client.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateRiskDTO) (RiskDTO, error) {
	if orgID == uuid.Nil {
		return RiskDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.Title) == "" {
		return RiskDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	if strings.TrimSpace(dto.Category) == "" {
		return RiskDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category is required")
	}
	likelihood, err := enums.ParseRiskLevel(dto.Likelihood)
	if err != nil {
		return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid likelihood")
	}
	impact, err := enums.ParseRiskLevel(dto.Impact)
	if err != nil {
		return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid impact")
	}

	risk := &models.Risk{
		OrgID:         orgID,
		Title:         strings.TrimSpace(dto.Title),
		Description:   dto.Description,
		Category:      strings.TrimSpace(dto.Category),
		Likelihood:    likelihood,
		Impact:        impact,
		InherentLevel: enums.RiskLevelFromScore(likelihood.Score() * impact.Score()),
		Status:        enums.RiskStatusOpen,
		OwnerID:       dto.OwnerID,
		Mitigation:    dto.Mitigation,
		ReviewAt:      dto.ReviewAt,
	}
	if err := s.repo.Create(ctx, risk); err != nil {
		return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create risk")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "risk.created",
		Resource:   "risk",
		ResourceID: risk.ID.String(),
	})
	return ToDTO(risk), nil
}

// Get loads one register entry.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (RiskDTO, error) {
	risk, err := s.load(ctx, orgID, id)
	if err != nil {
		return RiskDTO{}, err
	}
	return ToDTO(risk), nil
}

// List returns one page of the org's register.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListRisksQuery) (RiskPageDTO, error) {
	if orgID == uuid.Nil {
		return RiskPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return RiskPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list risks")
	}

	page := RiskPageDTO{Items: make([]RiskDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Update applies a partial update and recomputes the inherent level when
// either factor changed.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto UpdateRiskDTO) (RiskDTO, error) {
	risk, err := s.load(ctx, orgID, id)
	if err != nil {
		return RiskDTO{}, err
	}

	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return RiskDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		risk.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		risk.Description = dto.Description
	}
	if dto.Category != nil {
		if strings.TrimSpace(*dto.Category) == "" {
			return RiskDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		risk.Category = strings.TrimSpace(*dto.Category)
	}
	if dto.Likelihood != nil {
		likelihood, err := enums.ParseRiskLevel(*dto.Likelihood)
		if err != nil {
			return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid likelihood")
		}
		risk.Likelihood = likelihood
	}
	if dto.Impact != nil {
		impact, err := enums.ParseRiskLevel(*dto.Impact)
		if err != nil {
			return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid impact")
		}
		risk.Impact = impact
	}
	if dto.Status != nil {
		status, err := enums.ParseRiskStatus(*dto.Status)
		if err != nil {
			return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		risk.Status = status
	}
	if dto.OwnerID != nil {
		risk.OwnerID = dto.OwnerID
	}
	if dto.Mitigation != nil {
		risk.Mitigation = dto.Mitigation
	}
	if dto.ReviewAt != nil {
		risk.ReviewAt = dto.ReviewAt
	}
	risk.InherentLevel = enums.RiskLevelFromScore(risk.Likelihood.Score() * risk.Impact.Score())

	if err := s.repo.Update(ctx, risk); err != nil {
		return RiskDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update risk")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "risk.updated",
		Resource:   "risk",
		ResourceID: risk.ID.String(),
	})
	return ToDTO(risk), nil
}

// Delete removes a register entry.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) error {
	if orgID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and risk id are required")
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "risk not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete risk")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "risk.deleted",
		Resource:   "risk",
		ResourceID: id.String(),
	})
	return nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.Risk, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and risk id are required")
	}
	risk, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "risk not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load risk")
	}
	return risk, nil
}
