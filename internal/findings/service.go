package findings

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

type repository interface {
	Create(ctx context.Context, finding *models.BiasFinding) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.BiasFinding, error)
	List(ctx context.Context, orgID uuid.UUID, query ListFindingsQuery) ([]models.BiasFinding, *pagination.Cursor, error)
	Update(ctx context.Context, finding *models.BiasFinding) error
}

// Service tracks bias findings through remediation. Findings are never
// deleted; resolving one stamps resolved_at.
type Service struct {
	repo  repository
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the bias finding service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "finding repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor, now: time.Now}, nil
}

// Create records a finding. Disparity must be a positive measurement.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateFindingDTO) (FindingDTO, error) {
	if orgID == uuid.Nil {
		return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.SystemName) == "" {
		return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "system name is required")
	}
	if strings.TrimSpace(dto.Metric) == "" {
		return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "metric is required")
	}
	if strings.TrimSpace(dto.AffectedGroup) == "" {
		return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "affected group is required")
	}
	if !dto.Disparity.IsPositive() {
		return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "disparity must be greater than zero")
	}

	detectedAt := s.now().UTC()
	if dto.DetectedAt != nil {
		detectedAt = dto.DetectedAt.UTC()
	}

	finding := &models.BiasFinding{
		OrgID:         orgID,
		SystemName:    strings.TrimSpace(dto.SystemName),
		Metric:        strings.TrimSpace(dto.Metric),
		AffectedGroup: strings.TrimSpace(dto.AffectedGroup),
		Disparity:     dto.Disparity,
		Status:        enums.FindingStatusOpen,
		Notes:         dto.Notes,
		DetectedAt:    detectedAt,
	}
	if err := s.repo.Create(ctx, finding); err != nil {
		return FindingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create finding")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "finding.recorded",
		Resource:   "bias_finding",
		ResourceID: finding.ID.String(),
		Metadata: map[string]string{
			"system": finding.SystemName,
			"metric": finding.Metric,
		},
	})
	return ToDTO(finding), nil
}

// Get loads one finding.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (FindingDTO, error) {
	finding, err := s.load(ctx, orgID, id)
	if err != nil {
		return FindingDTO{}, err
	}
	return ToDTO(finding), nil
}

// List returns one page of the org's findings.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListFindingsQuery) (FindingPageDTO, error) {
	if orgID == uuid.Nil {
		return FindingPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return FindingPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list findings")
	}

	page := FindingPageDTO{Items: make([]FindingDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Update moves a finding through remediation. Resolving stamps resolved_at;
// reopening clears it.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto UpdateFindingDTO) (FindingDTO, error) {
	finding, err := s.load(ctx, orgID, id)
	if err != nil {
		return FindingDTO{}, err
	}

	if dto.Disparity != nil {
		if !dto.Disparity.IsPositive() {
			return FindingDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "disparity must be greater than zero")
		}
		finding.Disparity = *dto.Disparity
	}
	if dto.Notes != nil {
		finding.Notes = dto.Notes
	}
	if dto.Status != nil {
		status, err := enums.ParseFindingStatus(*dto.Status)
		if err != nil {
			return FindingDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if status == enums.FindingStatusResolved && finding.Status != enums.FindingStatusResolved {
			resolvedAt := s.now().UTC()
			finding.ResolvedAt = &resolvedAt
		}
		if status != enums.FindingStatusResolved {
			finding.ResolvedAt = nil
		}
		finding.Status = status
	}

	if err := s.repo.Update(ctx, finding); err != nil {
		return FindingDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update finding")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "finding.updated",
		Resource:   "bias_finding",
		ResourceID: finding.ID.String(),
		Metadata:   map[string]string{"status": string(finding.Status)},
	})
	return ToDTO(finding), nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.BiasFinding, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and finding id are required")
	}
	finding, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "finding not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load finding")
	}
	return finding, nil
}
