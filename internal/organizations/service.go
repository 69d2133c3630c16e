package organizations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veridianlabs/governport-backend/internal/memberships"
	"github.com/veridianlabs/governport-backend/internal/users"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type orgRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error)
	Update(ctx context.Context, org *models.Organization) error
}

type membershipsRepository interface {
	UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error)
	ListOrgUsers(ctx context.Context, orgID uuid.UUID) ([]memberships.OrgUserDTO, error)
	GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error)
	CreateMembership(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.Membership, error)
	DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error
	CountMembersWithRoles(ctx context.Context, orgID uuid.UUID, roles ...enums.MemberRole) (int64, error)
}

type usersRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, dto users.CreateUserDTO) (*models.User, error)
	UpdatePasswordHash(ctx context.Context, id uuid.UUID, hash string) error
}

// Service exposes organization operations.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error)
	Update(ctx context.Context, userID, orgID uuid.UUID, input UpdateOrganizationInput) (*OrganizationDTO, error)
	ListUsers(ctx context.Context, userID, orgID uuid.UUID) ([]memberships.OrgUserDTO, error)
	InviteUser(ctx context.Context, inviterID, orgID uuid.UUID, input InviteUserInput) (*memberships.OrgUserDTO, string, error)
	RemoveUser(ctx context.Context, actorID, orgID, targetUserID uuid.UUID) error
}

type service struct {
	repo        orgRepository
	memberships membershipsRepository
	users       usersRepository
	passwordCfg config.PasswordConfig
}

// NewService builds an organization service with the provided repositories.
func NewService(repo orgRepository, memberships membershipsRepository, usersRepo usersRepository, passwordCfg config.PasswordConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("organization repository required")
	}
	if memberships == nil {
		return nil, fmt.Errorf("memberships repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	return &service{
		repo:        repo,
		memberships: memberships,
		users:       usersRepo,
		passwordCfg: passwordCfg,
	}, nil
}

// UpdateOrganizationInput captures the allowed organization fields for mutation.
type UpdateOrganizationInput struct {
	Name         *string
	Description  *string
	Website      *string
	ContactEmail *string
}

// InviteUserInput captures the data required to invite an organization user.
type InviteUserInput struct {
	Email     string
	FirstName string
	LastName  string
	Role      enums.MemberRole
}

func (s *service) createNewUser(ctx context.Context, email, firstName, lastName string, orgID uuid.UUID) (*models.User, string, error) {
	if !strings.Contains(email, "@") {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid email")
	}

	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, users.CreateUserDTO{
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: hash,
		OrgIDs:       []uuid.UUID{orgID},
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create user")
	}
	return user, tempPassword, nil
}

func (s *service) resetUserPassword(ctx context.Context, userID uuid.UUID) (string, error) {
	tempPassword, err := security.GenerateTempPassword(16)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate temp password")
	}
	hash, err := security.HashPassword(tempPassword, s.passwordCfg)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePasswordHash(ctx, userID, hash); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update user password")
	}
	return tempPassword, nil
}

func (s *service) fetchOrgUser(ctx context.Context, orgID, userID uuid.UUID) (*memberships.OrgUserDTO, error) {
	members, err := s.memberships.ListOrgUsers(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list org users")
	}
	for _, m := range members {
		if m.UserID == userID {
			return &m, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*OrganizationDTO, error) {
	org, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}
	return FromModel(org), nil
}

func (s *service) Update(ctx context.Context, userID, orgID uuid.UUID, input UpdateOrganizationInput) (*OrganizationDTO, error) {
	allowedRoles := []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin}
	ok, err := s.memberships.UserHasRole(ctx, userID, orgID, allowedRoles...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	org, err := s.repo.FindByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load organization")
	}

	if input.Name != nil {
		org.Name = *input.Name
	}
	if input.Description != nil {
		org.Description = cloneStringPtr(input.Description)
	}
	if input.Website != nil {
		org.Website = cloneStringPtr(input.Website)
	}
	if input.ContactEmail != nil {
		org.ContactEmail = cloneStringPtr(input.ContactEmail)
	}

	if err := s.repo.Update(ctx, org); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update organization")
	}
	return FromModel(org), nil
}

func (s *service) ListUsers(ctx context.Context, userID, orgID uuid.UUID) ([]memberships.OrgUserDTO, error) {
	allowedRoles := []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin}
	ok, err := s.memberships.UserHasRole(ctx, userID, orgID, allowedRoles...)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	members, err := s.memberships.ListOrgUsers(ctx, orgID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list org users")
	}
	return members, nil
}

func (s *service) InviteUser(ctx context.Context, inviterID, orgID uuid.UUID, input InviteUserInput) (*memberships.OrgUserDTO, string, error) {
	allowedRoles := []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin}
	ok, err := s.memberships.UserHasRole(ctx, inviterID, orgID, allowedRoles...)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return nil, "", pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.Role.IsValid() {
		return nil, "", pkgerrors.New(pkgerrors.CodeValidation, "invalid role")
	}

	var usr *models.User
	var tempPassword string
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			usr, tempPassword, err = s.createNewUser(ctx, email, input.FirstName, input.LastName, orgID)
			if err != nil {
				return nil, "", err
			}
		} else {
			return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "lookup user")
		}
	} else {
		usr = user
	}

	membership, err := s.memberships.GetMembership(ctx, usr.ID, orgID)
	if err == nil && membership != nil {
		dto, fetchErr := s.fetchOrgUser(ctx, orgID, usr.ID)
		if fetchErr != nil {
			return nil, "", fetchErr
		}
		return dto, "", nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}

	if tempPassword == "" {
		tempPassword, err = s.resetUserPassword(ctx, usr.ID)
		if err != nil {
			return nil, "", err
		}
	}

	if _, err := s.memberships.CreateMembership(ctx, orgID, usr.ID, input.Role, &inviterID, enums.MembershipStatusInvited); err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	dto, fetchErr := s.fetchOrgUser(ctx, orgID, usr.ID)
	if fetchErr != nil {
		return nil, "", fetchErr
	}
	return dto, tempPassword, nil
}

func (s *service) RemoveUser(ctx context.Context, actorID, orgID, targetUserID uuid.UUID) error {
	allowedRoles := []enums.MemberRole{enums.MemberRoleOwner, enums.MemberRoleAdmin}
	ok, err := s.memberships.UserHasRole(ctx, actorID, orgID, allowedRoles...)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !ok {
		return pkgerrors.New(pkgerrors.CodeForbidden, "insufficient organization role")
	}

	membership, err := s.memberships.GetMembership(ctx, targetUserID, orgID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load membership")
	}

	if membership.Role == enums.MemberRoleOwner {
		count, err := s.memberships.CountMembersWithRoles(ctx, orgID, enums.MemberRoleOwner)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count owners")
		}
		if count <= 1 {
			return pkgerrors.New(pkgerrors.CodeConflict, "cannot remove last owner")
		}
	}

	if err := s.memberships.DeleteMembership(ctx, orgID, targetUserID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete membership")
	}

	return nil
}
