package risks

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type stubRiskRepo struct {
	risk    *models.Risk
	created []*models.Risk
	updated []*models.Risk
	deleted []uuid.UUID
}

func (s *stubRiskRepo) Create(ctx context.Context, risk *models.Risk) error {
	risk.ID = uuid.New()
	s.created = append(s.created, risk)
	return nil
}

func (s *stubRiskRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Risk, error) {
	if s.risk == nil || s.risk.OrgID != orgID || s.risk.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.risk, nil
}

func (s *stubRiskRepo) List(ctx context.Context, orgID uuid.UUID, query ListRisksQuery) ([]models.Risk, *pagination.Cursor, error) {
	if s.risk == nil {
		return nil, nil, nil
	}
	return []models.Risk{*s.risk}, nil, nil
}

func (s *stubRiskRepo) Update(ctx context.Context, risk *models.Risk) error {
	s.updated = append(s.updated, risk)
	return nil
}

func (s *stubRiskRepo) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	if s.risk == nil || s.risk.ID != id {
		return gorm.ErrRecordNotFound
	}
	s.deleted = append(s.deleted, id)
	return nil
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Record(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func TestServiceCreateComputesInherentLevel(t *testing.T) {
	repo := &stubRiskRepo{}
	auditor := &recordingAuditor{}
	service, err := NewService(repo, auditor)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	orgID := uuid.New()
	dto, err := service.Create(context.Background(), orgID, nil, CreateRiskDTO{
		Title:      "Model drift in scoring pipeline",
		Category:   "model",
		Likelihood: "high",
		Impact:     "critical",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.InherentLevel != enums.RiskLevelCritical {
		t.Fatalf("expected critical inherent level for high x critical, got %s", dto.InherentLevel)
	}
	if dto.Status != enums.RiskStatusOpen {
		t.Fatalf("expected new risks to open, got %s", dto.Status)
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != "risk.created" {
		t.Fatalf("expected risk.created audit event, got %+v", auditor.events)
	}
}

func TestServiceCreateValidation(t *testing.T) {
	service, err := NewService(&stubRiskRepo{}, nil)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	cases := []struct {
		name string
		dto  CreateRiskDTO
	}{
		{"missing title", CreateRiskDTO{Category: "model", Likelihood: "low", Impact: "low"}},
		{"missing category", CreateRiskDTO{Title: "t", Likelihood: "low", Impact: "low"}},
		{"bad likelihood", CreateRiskDTO{Title: "t", Category: "model", Likelihood: "sometimes", Impact: "low"}},
		{"bad impact", CreateRiskDTO{Title: "t", Category: "model", Likelihood: "low", Impact: "huge"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Create(context.Background(), uuid.New(), nil, tc.dto)
			if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}
}

func TestServiceUpdateRecomputesInherentLevel(t *testing.T) {
	orgID := uuid.New()
	riskID := uuid.New()
	repo := &stubRiskRepo{
		risk: &models.Risk{
			ID:            riskID,
			OrgID:         orgID,
			Title:         "Vendor data exposure",
			Category:      "vendor",
			Likelihood:    enums.RiskLevelLow,
			Impact:        enums.RiskLevelLow,
			InherentLevel: enums.RiskLevelLow,
			Status:        enums.RiskStatusOpen,
		},
	}
	service, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	likelihood := "critical"
	impact := "critical"
	status := "mitigating"
	dto, err := service.Update(context.Background(), orgID, riskID, nil, UpdateRiskDTO{
		Likelihood: &likelihood,
		Impact:     &impact,
		Status:     &status,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if dto.InherentLevel != enums.RiskLevelCritical {
		t.Fatalf("expected inherent level recomputed, got %s", dto.InherentLevel)
	}
	if dto.Status != enums.RiskStatusMitigating {
		t.Fatalf("expected status mitigating, got %s", dto.Status)
	}
	if len(repo.updated) != 1 {
		t.Fatalf("expected one persisted update")
	}
}

func TestServiceGetScopedToOrg(t *testing.T) {
	orgID := uuid.New()
	riskID := uuid.New()
	repo := &stubRiskRepo{
		risk: &models.Risk{ID: riskID, OrgID: orgID, Title: "x", Category: "model"},
	}
	service, err := NewService(repo, nil)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	if _, err := service.Get(context.Background(), orgID, riskID); err != nil {
		t.Fatalf("expected get to succeed, got %v", err)
	}
	_, err = service.Get(context.Background(), uuid.New(), riskID)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for other org, got %v", err)
	}
}

func TestServiceDelete(t *testing.T) {
	orgID := uuid.New()
	riskID := uuid.New()
	repo := &stubRiskRepo{risk: &models.Risk{ID: riskID, OrgID: orgID}}
	auditor := &recordingAuditor{}
	service, err := NewService(repo, auditor)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	if err := service.Delete(context.Background(), orgID, riskID, nil); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(repo.deleted) != 1 {
		t.Fatalf("expected delete persisted")
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != "risk.deleted" {
		t.Fatalf("expected risk.deleted audit event")
	}

	err = service.Delete(context.Background(), orgID, uuid.New(), nil)
	if pkgerrors.As(err) == nil || pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
