package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Membership links a user with an organization and captures their role/status.
type Membership struct {
	ID              uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID           uuid.UUID              `gorm:"column:org_id;type:uuid;not null;index:idx_memberships_org_user,unique"`
	UserID          uuid.UUID              `gorm:"column:user_id;type:uuid;not null;index:idx_memberships_org_user,unique"`
	Role            enums.MemberRole       `gorm:"column:role;type:member_role;not null"`
	Status          enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	InvitedByUserID *uuid.UUID             `gorm:"column:invited_by_user_id;type:uuid"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
