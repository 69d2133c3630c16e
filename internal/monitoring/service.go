package monitoring

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, record *models.MetricRecord) error
	List(ctx context.Context, orgID uuid.UUID, query ListMetricsQuery) ([]models.MetricRecord, *pagination.Cursor, error)
}

// Service ingests monitoring observations for org-owned AI systems.
// Observations are append-only; there is no update or delete path.
type Service struct {
	repo repository
	now  func() time.Time
}

// NewService wires the monitoring service.
func NewService(repo repository) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "metric repository required")
	}
	return &Service{repo: repo, now: time.Now}, nil
}

// Record stores one observation.
func (s *Service) Record(ctx context.Context, orgID uuid.UUID, dto RecordMetricDTO) (MetricRecordDTO, error) {
	if orgID == uuid.Nil {
		return MetricRecordDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.SystemName) == "" {
		return MetricRecordDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "system name is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return MetricRecordDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "metric name is required")
	}

	recordedAt := s.now().UTC()
	if dto.RecordedAt != nil {
		recordedAt = dto.RecordedAt.UTC()
	}

	record := &models.MetricRecord{
		OrgID:      orgID,
		SystemName: strings.TrimSpace(dto.SystemName),
		Name:       strings.TrimSpace(dto.Name),
		Value:      dto.Value,
		Unit:       dto.Unit,
		RecordedAt: recordedAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return MetricRecordDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "record metric")
	}
	return ToDTO(record), nil
}

// List returns one page of observations. A range where from is after to is
// rejected before it reaches the database.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListMetricsQuery) (MetricPageDTO, error) {
	if orgID == uuid.Nil {
		return MetricPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if query.From != nil && query.To != nil && query.From.After(*query.To) {
		return MetricPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "time range start must not be after its end")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return MetricPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list metrics")
	}

	page := MetricPageDTO{Items: make([]MetricRecordDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}
