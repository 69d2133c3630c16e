package memberships

import (
	"context"
	"fmt"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes membership persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// ListUserOrgs returns the organizations a user belongs to along with membership metadata.
func (r *Repository) ListUserOrgs(ctx context.Context, userID uuid.UUID) ([]MembershipWithOrg, error) {
	var rows []membershipWithOrgRow

	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.*, organizations.name AS org_name, organizations.plan AS org_plan").
		Joins("JOIN organizations ON organizations.id = memberships.org_id").
		Where("memberships.user_id = ?", userID).
		Order("organizations.name").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	return membershipRowsToDTO(rows), nil
}

// GetMembership retrieves a membership by user and organization.
func (r *Repository) GetMembership(ctx context.Context, userID, orgID uuid.UUID) (*models.Membership, error) {
	var membership models.Membership
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND org_id = ?", userID, orgID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// CreateMembership persists a new membership record.
func (r *Repository) CreateMembership(ctx context.Context, orgID, userID uuid.UUID, role enums.MemberRole, invitedBy *uuid.UUID, status enums.MembershipStatus) (*models.Membership, error) {
	if !role.IsValid() {
		return nil, fmt.Errorf("invalid member role %q", role)
	}
	if !status.IsValid() {
		return nil, fmt.Errorf("invalid membership status %q", status)
	}

	membership := &models.Membership{
		OrgID:           orgID,
		UserID:          userID,
		Role:            role,
		Status:          status,
		InvitedByUserID: invitedBy,
	}

	if err := r.db.WithContext(ctx).Create(membership).Error; err != nil {
		return nil, err
	}
	return membership, nil
}

// UserHasRole reports whether the user holds one of the provided roles in the organization.
func (r *Repository) UserHasRole(ctx context.Context, userID, orgID uuid.UUID, roles ...enums.MemberRole) (bool, error) {
	if len(roles) == 0 {
		return false, nil
	}

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("user_id = ? AND org_id = ? AND role IN ?", userID, orgID, roles).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetMembershipWithOrg returns membership details joined with organization metadata.
func (r *Repository) GetMembershipWithOrg(ctx context.Context, userID, orgID uuid.UUID) (*MembershipWithOrg, error) {
	var row membershipWithOrgRow
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.*, organizations.name AS org_name, organizations.plan AS org_plan").
		Joins("JOIN organizations ON organizations.id = memberships.org_id").
		Where("memberships.user_id = ? AND memberships.org_id = ?", userID, orgID).
		Scan(&row).Error
	if err != nil {
		return nil, err
	}
	dto := membershipWithOrgFromRow(row)
	return &dto, nil
}

// DeleteMembership removes a user's membership for the organization.
func (r *Repository) DeleteMembership(ctx context.Context, orgID, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("org_id = ? AND user_id = ?", orgID, userID).
		Delete(&models.Membership{}).Error
}

// CountMembersWithRoles counts org members holding any of the provided roles.
func (r *Repository) CountMembersWithRoles(ctx context.Context, orgID uuid.UUID, roles ...enums.MemberRole) (int64, error) {
	if len(roles) == 0 {
		return 0, nil
	}
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Where("org_id = ? AND role IN ?", orgID, roles).
		Count(&count).Error
	return count, err
}

// ListOrgUsers returns memberships for the organization along with user metadata.
func (r *Repository) ListOrgUsers(ctx context.Context, orgID uuid.UUID) ([]OrgUserDTO, error) {
	var rows []orgUserRow
	err := r.db.WithContext(ctx).
		Model(&models.Membership{}).
		Select("memberships.*, users.email, users.first_name, users.last_name, users.last_login_at").
		Joins("JOIN users ON users.id = memberships.user_id").
		Where("memberships.org_id = ?", orgID).
		Order("memberships.created_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return orgUsersFromRows(rows), nil
}
