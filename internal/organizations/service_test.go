package organizations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/veridianlabs/governport-backend/internal/memberships"
	"github.com/veridianlabs/governport-backend/internal/users"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func TestNewServiceRequiresRepo(t *testing.T) {
	_, err := NewService(nil, &stubMembershipsRepo{}, &stubUsersRepo{}, config.PasswordConfig{})
	if err == nil {
		t.Fatal("expected error creating service without repo")
	}
}

func TestNewServiceRequiresMembershipRepo(t *testing.T) {
	repo := &stubOrgRepo{}
	_, err := NewService(repo, nil, &stubUsersRepo{}, config.PasswordConfig{})
	if err == nil {
		t.Fatal("expected error creating service without memberships repo")
	}
}

func TestServiceGetByIDSuccess(t *testing.T) {
	org := baseOrg()
	repo := &stubOrgRepo{org: org}
	svc := mustService(t, repo, &stubMembershipsRepo{allowed: true})

	dto, err := svc.GetByID(context.Background(), org.ID)
	if err != nil {
		t.Fatalf("get organization: %v", err)
	}
	if dto.ID != org.ID {
		t.Fatalf("expected id %s got %s", org.ID, dto.ID)
	}
	if dto.Name != org.Name {
		t.Fatalf("expected name %s got %s", org.Name, dto.Name)
	}
	if dto.Plan != org.Plan {
		t.Fatalf("expected plan %s got %s", org.Plan, dto.Plan)
	}
}

func TestServiceGetByIDNotFound(t *testing.T) {
	repo := &stubOrgRepo{err: gorm.ErrRecordNotFound}
	svc := mustService(t, repo, &stubMembershipsRepo{allowed: true})

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found code, got %v", gotErr)
	}
}

func TestServiceGetByIDDependencyError(t *testing.T) {
	repo := &stubOrgRepo{err: errors.New("boom")}
	svc := mustService(t, repo, &stubMembershipsRepo{allowed: true})

	_, gotErr := svc.GetByID(context.Background(), uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", gotErr)
	}
}

func TestServiceUpdateSuccess(t *testing.T) {
	org := baseOrg()
	repo := &stubOrgRepo{org: org}
	svc := mustService(t, repo, &stubMembershipsRepo{allowed: true})

	newDescription := "AI assurance program for the energy sector"
	newWebsite := "https://acme.example"
	input := UpdateOrganizationInput{
		Name:        stringPtr("Acme Assurance"),
		Description: &newDescription,
		Website:     &newWebsite,
	}

	dto, err := svc.Update(context.Background(), uuid.New(), org.ID, input)
	if err != nil {
		t.Fatalf("update organization: %v", err)
	}
	if dto.Name != "Acme Assurance" {
		t.Fatalf("expected name updated, got %s", dto.Name)
	}
	if dto.Description == nil || *dto.Description != newDescription {
		t.Fatalf("expected description %q got %v", newDescription, dto.Description)
	}
	if dto.Website == nil || *dto.Website != newWebsite {
		t.Fatalf("expected website %q got %v", newWebsite, dto.Website)
	}
}

func TestServiceUpdateForbidden(t *testing.T) {
	repo := &stubOrgRepo{org: baseOrg()}
	svc := mustService(t, repo, &stubMembershipsRepo{allowed: false})

	_, gotErr := svc.Update(context.Background(), uuid.New(), uuid.New(), UpdateOrganizationInput{})
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden code, got %v", gotErr)
	}
}

func TestServiceRemoveUserProtectsLastOwner(t *testing.T) {
	org := baseOrg()
	repo := &stubOrgRepo{org: org}
	members := &stubMembershipsRepo{
		allowed:    true,
		membership: &models.Membership{Role: enums.MemberRoleOwner},
		ownerCount: 1,
	}
	svc := mustService(t, repo, members)

	gotErr := svc.RemoveUser(context.Background(), uuid.New(), org.ID, uuid.New())
	if gotErr == nil {
		t.Fatal("expected error")
	}
	if typed := pkgerrors.As(gotErr); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict code, got %v", gotErr)
	}
}

func TestServiceInviteExistingMemberReturnsMembership(t *testing.T) {
	org := baseOrg()
	existing := &models.User{ID: uuid.New(), Email: "member@example.com"}
	members := &stubMembershipsRepo{
		allowed:    true,
		membership: &models.Membership{OrgID: org.ID, UserID: existing.ID, Role: enums.MemberRoleMember},
		orgUsers: []memberships.OrgUserDTO{{
			OrgID:  org.ID,
			UserID: existing.ID,
			Email:  existing.Email,
			Role:   enums.MemberRoleMember,
		}},
	}
	svc, err := NewService(&stubOrgRepo{org: org}, members, &stubUsersRepo{user: existing}, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	dto, tempPassword, err := svc.InviteUser(context.Background(), uuid.New(), org.ID, InviteUserInput{
		Email: existing.Email,
		Role:  enums.MemberRoleMember,
	})
	if err != nil {
		t.Fatalf("invite user: %v", err)
	}
	if tempPassword != "" {
		t.Fatalf("expected no temp password for existing member, got %q", tempPassword)
	}
	if dto.UserID != existing.ID {
		t.Fatalf("unexpected member %+v", dto)
	}
}

func mustService(t *testing.T, repo orgRepository, members membershipsRepository) Service {
	t.Helper()
	svc, err := NewService(repo, members, &stubUsersRepo{}, config.PasswordConfig{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func baseOrg() *models.Organization {
	return &models.Organization{
		ID:                 uuid.New(),
		Name:               "Acme Governance",
		Slug:               "acme-governance",
		Plan:               enums.PlanProfessional,
		SubscriptionActive: true,
		OwnerID:            uuid.New(),
		CreatedAt:          time.Now(),
		UpdatedAt:          time.Now(),
		Description:        stringPtr("model risk program"),
	}
}

type stubOrgRepo struct {
	org       *models.Organization
	err       error
	updateErr error
	updated   *models.Organization
}

func (s *stubOrgRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	return s.org, s.err
}

func (s *stubOrgRepo) Update(ctx context.Context, org *models.Organization) error {
	if s.updateErr != nil {
		return s.updateErr
	}
	s.updated = org
	return nil
}

type stubMembershipsRepo struct {
	allowed    bool
	err        error
	membership *models.Membership
	orgUsers   []memberships.OrgUserDTO
	ownerCount int64
}

func (s *stubMembershipsRepo) UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.allowed, nil
}

func (s *stubMembershipsRepo) ListOrgUsers(ctx context.Context, orgID uuid.UUID) ([]memberships.OrgUserDTO, error) {
	return s.orgUsers, nil
}

func (s *stubMembershipsRepo) GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	if s.membership == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.membership, nil
}

func (s *stubMembershipsRepo) CreateMembership(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
	return &models.Membership{OrgID: orgID, UserID: userID, Role: role, Status: status}, nil
}

func (s *stubMembershipsRepo) DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error {
	return nil
}

func (s *stubMembershipsRepo) CountMembersWithRoles(ctx context.Context, orgID uuid.UUID, roles ...enums.MemberRole) (int64, error) {
	return s.ownerCount, nil
}

type stubUsersRepo struct {
	user *models.User
}

func (s *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if s.user == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.user, nil
}

func (s *stubUsersRepo) Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error) {
	u := dto.ToModel()
	u.ID = uuid.New()
	return u, nil
}

func (s *stubUsersRepo) UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error {
	return nil
}

func stringPtr(s string) *string { return &s }
