package incidents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, incident *models.Incident) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Incident, error)
	List(ctx context.Context, orgID uuid.UUID, query ListIncidentsQuery) ([]models.Incident, *pagination.Cursor, error)
	Update(ctx context.Context, incident *models.Incident) error
}

// Service owns the incident lifecycle. Incidents are never deleted; they are
// closed and kept for the audit trail.
type Service struct {
	repo  repository
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the incident service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "incident repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor, now: time.Now}, nil
}

// Report opens a new incident.
func (s *Service) Report(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateIncidentDTO) (IncidentDTO, error) {
	if orgID == uuid.Nil {
		return IncidentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.Title) == "" {
		return IncidentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title is required")
	}
	severity, err := enums.ParseIncidentSeverity(dto.Severity)
	if err != nil {
		return IncidentDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity")
	}

	occurredAt := s.now().UTC()
	if dto.OccurredAt != nil {
		occurredAt = dto.OccurredAt.UTC()
	}

	incident := &models.Incident{
		OrgID:           orgID,
		Title:           strings.TrimSpace(dto.Title),
		Description:     dto.Description,
		Severity:        severity,
		Status:          enums.IncidentStatusOpen,
		AffectedSystems: pq.StringArray(dto.AffectedSystems),
		ReportedByID:    actorID,
		OccurredAt:      occurredAt,
	}
	if err := s.repo.Create(ctx, incident); err != nil {
		return IncidentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create incident")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "incident.reported",
		Resource:   "incident",
		ResourceID: incident.ID.String(),
		Metadata:   map[string]string{"severity": string(severity)},
	})
	return ToDTO(incident), nil
}

// Get loads one incident.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (IncidentDTO, error) {
	incident, err := s.load(ctx, orgID, id)
	if err != nil {
		return IncidentDTO{}, err
	}
	return ToDTO(incident), nil
}

// List returns one page of the org's incidents.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListIncidentsQuery) (IncidentPageDTO, error) {
	if orgID == uuid.Nil {
		return IncidentPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return IncidentPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list incidents")
	}

	page := IncidentPageDTO{Items: make([]IncidentDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Update applies a partial update. Moving into a terminal status stamps
// resolved_at; reopening clears it.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto UpdateIncidentDTO) (IncidentDTO, error) {
	incident, err := s.load(ctx, orgID, id)
	if err != nil {
		return IncidentDTO{}, err
	}

	if dto.Title != nil {
		if strings.TrimSpace(*dto.Title) == "" {
			return IncidentDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "title cannot be empty")
		}
		incident.Title = strings.TrimSpace(*dto.Title)
	}
	if dto.Description != nil {
		incident.Description = dto.Description
	}
	if dto.Severity != nil {
		severity, err := enums.ParseIncidentSeverity(*dto.Severity)
		if err != nil {
			return IncidentDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid severity")
		}
		incident.Severity = severity
	}
	if dto.AffectedSystems != nil {
		incident.AffectedSystems = pq.StringArray(*dto.AffectedSystems)
	}
	if dto.OccurredAt != nil {
		incident.OccurredAt = dto.OccurredAt.UTC()
	}
	if dto.Status != nil {
		status, err := enums.ParseIncidentStatus(*dto.Status)
		if err != nil {
			return IncidentDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if status.IsTerminal() && !incident.Status.IsTerminal() {
			resolvedAt := s.now().UTC()
			incident.ResolvedAt = &resolvedAt
		}
		if !status.IsTerminal() {
			incident.ResolvedAt = nil
		}
		incident.Status = status
	}

	if err := s.repo.Update(ctx, incident); err != nil {
		return IncidentDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update incident")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "incident.updated",
		Resource:   "incident",
		ResourceID: incident.ID.String(),
		Metadata:   map[string]string{"status": string(incident.Status)},
	})
	return ToDTO(incident), nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.Incident, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and incident id are required")
	}
	incident, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "incident not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load incident")
	}
	return incident, nil
}
