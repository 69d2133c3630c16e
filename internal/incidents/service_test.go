package incidents

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type stubIncidentRepo struct {
	incident *models.Incident
	created  []*models.Incident
	updated  []*models.Incident
}

func (s *stubIncidentRepo) Create(ctx context.Context, incident *models.Incident) error {
	incident.ID = uuid.New()
	s.created = append(s.created, incident)
	return nil
}

func (s *stubIncidentRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Incident, error) {
	if s.incident == nil || s.incident.OrgID != orgID || s.incident.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.incident, nil
}

func (s *stubIncidentRepo) List(ctx context.Context, orgID uuid.UUID, query ListIncidentsQuery) ([]models.Incident, *pagination.Cursor, error) {
	if s.incident == nil {
		return nil, nil, nil
	}
	return []models.Incident{*s.incident}, nil, nil
}

func (s *stubIncidentRepo) Update(ctx context.Context, incident *models.Incident) error {
	s.updated = append(s.updated, incident)
	return nil
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Record(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func newIncidentService(t *testing.T, repo *stubIncidentRepo, auditor *recordingAuditor) *Service {
	t.Helper()
	service, err := NewService(repo, auditor)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func TestServiceReportDefaultsOccurredAt(t *testing.T) {
	repo := &stubIncidentRepo{}
	auditor := &recordingAuditor{}
	service := newIncidentService(t, repo, auditor)
	frozen := time.Date(2026, time.March, 4, 12, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	orgID := uuid.New()
	dto, err := service.Report(context.Background(), orgID, nil, CreateIncidentDTO{
		Title:           "Recommendation model returned toxic output",
		Severity:        "high",
		AffectedSystems: []string{"recommender-v3"},
	})
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if dto.Status != enums.IncidentStatusOpen {
		t.Fatalf("expected new incidents to open, got %s", dto.Status)
	}
	if !dto.OccurredAt.Equal(frozen) {
		t.Fatalf("expected occurred_at to default to now, got %s", dto.OccurredAt)
	}
	if len(dto.AffectedSystems) != 1 || dto.AffectedSystems[0] != "recommender-v3" {
		t.Fatalf("unexpected affected systems %v", dto.AffectedSystems)
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != "incident.reported" {
		t.Fatalf("expected incident.reported audit event, got %+v", auditor.events)
	}
	if auditor.events[0].Metadata["severity"] != "high" {
		t.Fatalf("expected severity in audit metadata, got %+v", auditor.events[0].Metadata)
	}
}

func TestServiceReportRejectsBadInput(t *testing.T) {
	repo := &stubIncidentRepo{}
	service := newIncidentService(t, repo, &recordingAuditor{})

	cases := []struct {
		name string
		dto  CreateIncidentDTO
	}{
		{"missing title", CreateIncidentDTO{Severity: "high"}},
		{"unknown severity", CreateIncidentDTO{Title: "outage", Severity: "catastrophic"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Report(context.Background(), uuid.New(), nil, tc.dto)
			if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
	if len(repo.created) != 0 {
		t.Fatalf("expected no incidents created, got %d", len(repo.created))
	}
}

func TestServiceUpdateResolvingStampsResolvedAt(t *testing.T) {
	orgID := uuid.New()
	repo := &stubIncidentRepo{incident: &models.Incident{
		ID:       uuid.New(),
		OrgID:    orgID,
		Title:    "Data pipeline backfill corrupted features",
		Severity: enums.IncidentSeverityMedium,
		Status:   enums.IncidentStatusInvestigating,
	}}
	auditor := &recordingAuditor{}
	service := newIncidentService(t, repo, auditor)
	frozen := time.Date(2026, time.March, 5, 9, 30, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	status := "resolved"
	dto, err := service.Update(context.Background(), orgID, repo.incident.ID, nil, UpdateIncidentDTO{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.IncidentStatusResolved {
		t.Fatalf("expected resolved status, got %s", dto.Status)
	}
	if dto.ResolvedAt == nil || !dto.ResolvedAt.Equal(frozen) {
		t.Fatalf("expected resolved_at stamped at now, got %v", dto.ResolvedAt)
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != "incident.updated" {
		t.Fatalf("expected incident.updated audit event, got %+v", auditor.events)
	}
}

func TestServiceUpdateReopeningClearsResolvedAt(t *testing.T) {
	orgID := uuid.New()
	resolvedAt := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	repo := &stubIncidentRepo{incident: &models.Incident{
		ID:         uuid.New(),
		OrgID:      orgID,
		Title:      "Chat relay dropped streams",
		Severity:   enums.IncidentSeverityLow,
		Status:     enums.IncidentStatusResolved,
		ResolvedAt: &resolvedAt,
	}}
	service := newIncidentService(t, repo, &recordingAuditor{})

	status := "investigating"
	dto, err := service.Update(context.Background(), orgID, repo.incident.ID, nil, UpdateIncidentDTO{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.Status != enums.IncidentStatusInvestigating {
		t.Fatalf("expected investigating status, got %s", dto.Status)
	}
	if dto.ResolvedAt != nil {
		t.Fatalf("expected resolved_at cleared on reopen, got %v", dto.ResolvedAt)
	}
}

func TestServiceUpdateKeepsResolvedAtBetweenTerminalStates(t *testing.T) {
	orgID := uuid.New()
	resolvedAt := time.Date(2026, time.February, 1, 8, 0, 0, 0, time.UTC)
	repo := &stubIncidentRepo{incident: &models.Incident{
		ID:         uuid.New(),
		OrgID:      orgID,
		Title:      "Vendor API leaked prompts",
		Severity:   enums.IncidentSeverityCritical,
		Status:     enums.IncidentStatusResolved,
		ResolvedAt: &resolvedAt,
	}}
	service := newIncidentService(t, repo, &recordingAuditor{})

	status := "closed"
	dto, err := service.Update(context.Background(), orgID, repo.incident.ID, nil, UpdateIncidentDTO{Status: &status})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.ResolvedAt == nil || !dto.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("expected original resolved_at kept, got %v", dto.ResolvedAt)
	}
}

func TestServiceGetScopesByOrganization(t *testing.T) {
	repo := &stubIncidentRepo{incident: &models.Incident{
		ID:       uuid.New(),
		OrgID:    uuid.New(),
		Title:    "Scoped incident",
		Severity: enums.IncidentSeverityLow,
		Status:   enums.IncidentStatusOpen,
	}}
	service := newIncidentService(t, repo, &recordingAuditor{})

	_, err := service.Get(context.Background(), uuid.New(), repo.incident.ID)
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign org, got %v", err)
	}
}
