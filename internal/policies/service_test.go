package policies

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

type stubPolicyRepo struct {
	policy  *models.Policy
	created []*models.Policy
	updated []*models.Policy
}

func (s *stubPolicyRepo) Create(ctx context.Context, policy *models.Policy) error {
	policy.ID = uuid.New()
	s.created = append(s.created, policy)
	return nil
}

func (s *stubPolicyRepo) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Policy, error) {
	if s.policy == nil || s.policy.OrgID != orgID || s.policy.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.policy, nil
}

func (s *stubPolicyRepo) List(ctx context.Context, orgID uuid.UUID, query ListPoliciesQuery) ([]models.Policy, *pagination.Cursor, error) {
	if s.policy == nil {
		return nil, nil, nil
	}
	return []models.Policy{*s.policy}, nil, nil
}

func (s *stubPolicyRepo) Update(ctx context.Context, policy *models.Policy) error {
	s.updated = append(s.updated, policy)
	return nil
}

type recordingAuditor struct {
	events []audit.Event
}

func (r *recordingAuditor) Record(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func newPolicyService(t *testing.T, repo *stubPolicyRepo, auditor *recordingAuditor) *Service {
	t.Helper()
	service, err := NewService(repo, auditor)
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}
	return service
}

func TestServiceCreateStartsInDraft(t *testing.T) {
	repo := &stubPolicyRepo{}
	auditor := &recordingAuditor{}
	service := newPolicyService(t, repo, auditor)

	dto, err := service.Create(context.Background(), uuid.New(), nil, CreatePolicyDTO{Name: "Model release policy"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if dto.Status != enums.PolicyStatusDraft {
		t.Fatalf("expected draft status, got %s", dto.Status)
	}
	if dto.Version != defaultPolicyVersion {
		t.Fatalf("expected default version, got %s", dto.Version)
	}
	if len(auditor.events) != 1 || auditor.events[0].Action != "policy.created" {
		t.Fatalf("expected policy.created audit event, got %+v", auditor.events)
	}
}

func TestServiceTransitionApprovalStampsApproval(t *testing.T) {
	orgID := uuid.New()
	repo := &stubPolicyRepo{policy: &models.Policy{
		ID:      uuid.New(),
		OrgID:   orgID,
		Name:    "Acceptable use policy",
		Version: "2.1",
		Status:  enums.PolicyStatusInReview,
	}}
	service := newPolicyService(t, repo, &recordingAuditor{})
	frozen := time.Date(2026, time.April, 1, 10, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return frozen }

	approver := uuid.New()
	dto, err := service.Transition(context.Background(), orgID, repo.policy.ID, &approver, TransitionPolicyDTO{Status: "approved"})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if dto.Status != enums.PolicyStatusApproved {
		t.Fatalf("expected approved status, got %s", dto.Status)
	}
	if dto.ApprovedBy == nil || *dto.ApprovedBy != approver {
		t.Fatalf("expected approved_by stamped, got %v", dto.ApprovedBy)
	}
	if dto.ApprovedAt == nil || !dto.ApprovedAt.Equal(frozen) {
		t.Fatalf("expected approved_at stamped, got %v", dto.ApprovedAt)
	}
	if dto.EffectiveAt == nil || !dto.EffectiveAt.Equal(frozen) {
		t.Fatalf("expected effective_at defaulted to now, got %v", dto.EffectiveAt)
	}
}

func TestServiceTransitionApprovalHonorsScheduledEffectiveAt(t *testing.T) {
	orgID := uuid.New()
	repo := &stubPolicyRepo{policy: &models.Policy{
		ID:     uuid.New(),
		OrgID:  orgID,
		Name:   "Third-party model policy",
		Status: enums.PolicyStatusInReview,
	}}
	service := newPolicyService(t, repo, &recordingAuditor{})

	effective := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
	dto, err := service.Transition(context.Background(), orgID, repo.policy.ID, nil, TransitionPolicyDTO{
		Status:      "approved",
		EffectiveAt: &effective,
	})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if dto.EffectiveAt == nil || !dto.EffectiveAt.Equal(effective) {
		t.Fatalf("expected scheduled effective_at, got %v", dto.EffectiveAt)
	}
}

func TestServiceTransitionRejectsIllegalMoves(t *testing.T) {
	orgID := uuid.New()
	repo := &stubPolicyRepo{policy: &models.Policy{
		ID:     uuid.New(),
		OrgID:  orgID,
		Name:   "Data retention policy",
		Status: enums.PolicyStatusDraft,
	}}
	service := newPolicyService(t, repo, &recordingAuditor{})

	_, err := service.Transition(context.Background(), orgID, repo.policy.ID, nil, TransitionPolicyDTO{Status: "approved"})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict for draft -> approved, got %v", err)
	}
	if len(repo.updated) != 0 {
		t.Fatalf("expected no writes on illegal transition, got %d", len(repo.updated))
	}
}

func TestServiceTransitionBackToDraftClearsApproval(t *testing.T) {
	orgID := uuid.New()
	approvedAt := time.Date(2026, time.January, 10, 0, 0, 0, 0, time.UTC)
	approver := uuid.New()
	repo := &stubPolicyRepo{policy: &models.Policy{
		ID:          uuid.New(),
		OrgID:       orgID,
		Name:        "Incident response policy",
		Status:      enums.PolicyStatusInReview,
		ApprovedBy:  &approver,
		ApprovedAt:  &approvedAt,
		EffectiveAt: &approvedAt,
	}}
	service := newPolicyService(t, repo, &recordingAuditor{})

	dto, err := service.Transition(context.Background(), orgID, repo.policy.ID, nil, TransitionPolicyDTO{Status: "draft"})
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if dto.ApprovedBy != nil || dto.ApprovedAt != nil || dto.EffectiveAt != nil {
		t.Fatalf("expected approval trail cleared, got %+v", dto)
	}
}

func TestServiceUpdateRejectsApprovedPolicies(t *testing.T) {
	orgID := uuid.New()
	repo := &stubPolicyRepo{policy: &models.Policy{
		ID:     uuid.New(),
		OrgID:  orgID,
		Name:   "Frozen policy",
		Status: enums.PolicyStatusApproved,
	}}
	service := newPolicyService(t, repo, &recordingAuditor{})

	name := "Renamed"
	_, err := service.Update(context.Background(), orgID, repo.policy.ID, nil, UpdatePolicyDTO{Name: &name})
	if pkgerrors.As(err).Code() != pkgerrors.CodeStateConflict {
		t.Fatalf("expected state conflict editing approved policy, got %v", err)
	}
}
