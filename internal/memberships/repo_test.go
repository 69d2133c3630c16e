//go:build db
// +build db

package memberships

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("GOVERNPORT_DB_DSN")
	if dsn == "" {
		t.Skip("GOVERNPORT_DB_DSN is not set")
	}

	conn, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	return conn
}

func TestRepositoryMembershipFlow(t *testing.T) {
	conn := openTestDB(t)
	tx := conn.Begin()
	if tx.Error != nil {
		t.Fatalf("begin tx: %v", tx.Error)
	}
	t.Cleanup(func() {
		_ = tx.Rollback()
	})

	repo := NewRepository(tx)
	ctx := context.Background()

	user := &models.User{
		ID:           uuid.New(),
		Email:        fmt.Sprintf("gp_test_%s@example.com", uuid.NewString()),
		PasswordHash: "hash",
		FirstName:    "Test",
		LastName:     "Member",
		IsActive:     true,
	}
	if err := tx.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}

	org := &models.Organization{
		ID:      uuid.New(),
		Name:    "Acme Governance",
		Slug:    fmt.Sprintf("acme-%s", uuid.NewString()[:8]),
		Plan:    enums.PlanObserver,
		OwnerID: user.ID,
	}
	if err := tx.Create(org).Error; err != nil {
		t.Fatalf("create organization: %v", err)
	}

	created, err := repo.CreateMembership(ctx, org.ID, user.ID, enums.MemberRoleOwner, nil, enums.MembershipStatusActive)
	if err != nil {
		t.Fatalf("create membership: %v", err)
	}
	if created.OrgID != org.ID || created.UserID != user.ID {
		t.Fatalf("membership ids mismatch")
	}

	found, err := repo.GetMembership(ctx, user.ID, org.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if found.Role != enums.MemberRoleOwner {
		t.Fatalf("expected owner role, got %s", found.Role)
	}

	hasRole, err := repo.UserHasRole(ctx, user.ID, org.ID, enums.MemberRoleOwner, enums.MemberRoleAdmin)
	if err != nil {
		t.Fatalf("user has role: %v", err)
	}
	if !hasRole {
		t.Fatal("expected user to hold owner role")
	}

	orgs, err := repo.ListUserOrgs(ctx, user.ID)
	if err != nil {
		t.Fatalf("list user orgs: %v", err)
	}
	if len(orgs) != 1 || orgs[0].OrgName != org.Name {
		t.Fatalf("unexpected org list %+v", orgs)
	}

	members, err := repo.ListOrgUsers(ctx, org.ID)
	if err != nil {
		t.Fatalf("list org users: %v", err)
	}
	if len(members) != 1 || members[0].Email != user.Email {
		t.Fatalf("unexpected member list %+v", members)
	}
}

func TestCreateMembershipRejectsInvalidRole(t *testing.T) {
	repo := NewRepository(nil)
	_, err := repo.CreateMembership(context.Background(), uuid.New(), uuid.New(), "bogus", nil, enums.MembershipStatusActive)
	if err == nil {
		t.Fatal("expected invalid role error")
	}
}
