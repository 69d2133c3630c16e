package memberships

import (
	"time"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

type membershipWithOrgRow struct {
	models.Membership
	OrgName string     `gorm:"column:org_name"`
	OrgPlan enums.Plan `gorm:"column:org_plan"`
}

type orgUserRow struct {
	models.Membership
	Email       string     `gorm:"column:email"`
	FirstName   string     `gorm:"column:first_name"`
	LastName    string     `gorm:"column:last_name"`
	LastLoginAt *time.Time `gorm:"column:last_login_at"`
}

func membershipWithOrgFromRow(row membershipWithOrgRow) MembershipWithOrg {
	return MembershipWithOrg{
		MembershipID:    row.ID,
		OrgID:           row.OrgID,
		UserID:          row.UserID,
		OrgName:         row.OrgName,
		OrgPlan:         row.OrgPlan,
		Role:            row.Role,
		Status:          row.Status,
		InvitedByUserID: copyUUIDPointer(row.InvitedByUserID),
		CreatedAt:       row.CreatedAt,
		UpdatedAt:       row.UpdatedAt,
	}
}

func membershipRowsToDTO(rows []membershipWithOrgRow) []MembershipWithOrg {
	out := make([]MembershipWithOrg, 0, len(rows))
	for _, row := range rows {
		out = append(out, membershipWithOrgFromRow(row))
	}
	return out
}

func orgUsersFromRows(rows []orgUserRow) []OrgUserDTO {
	out := make([]OrgUserDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, OrgUserDTO{
			MembershipID: row.ID,
			OrgID:        row.OrgID,
			UserID:       row.UserID,
			Email:        row.Email,
			FirstName:    row.FirstName,
			LastName:     row.LastName,
			Role:         row.Role,
			Status:       row.Status,
			CreatedAt:    row.CreatedAt,
			LastLoginAt:  row.LastLoginAt,
		})
	}
	return out
}
