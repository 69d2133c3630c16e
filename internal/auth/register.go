package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/veridianlabs/governport-backend/internal/memberships"
	"github.com/veridianlabs/governport-backend/internal/organizations"
	"github.com/veridianlabs/governport-backend/internal/users"
	"github.com/veridianlabs/governport-backend/pkg/config"
	"github.com/veridianlabs/governport-backend/pkg/db"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/security"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RegisterRequest contains the payload required for onboarding a new organization.
type RegisterRequest struct {
	FirstName        string  `json:"first_name" validate:"required"`
	LastName         string  `json:"last_name" validate:"required"`
	Email            string  `json:"email" validate:"required,email"`
	Password         string  `json:"password" validate:"required"`
	OrganizationName string  `json:"organization_name" validate:"required"`
	Website          *string `json:"website,omitempty"`
	AcceptTOS        bool    `json:"accept_tos"`
}

// RegisterService handles the onboarding transaction.
type RegisterService interface {
	Register(ctx context.Context, req RegisterRequest) error
}

// RegisterServiceParams packages the dependencies for the registration flow.
type RegisterServiceParams struct {
	DB             *db.Client
	PasswordConfig config.PasswordConfig
}

type registerService struct {
	db          *db.Client
	passwordCfg config.PasswordConfig
}

// NewRegisterService builds a registration service with the provided dependencies.
func NewRegisterService(params RegisterServiceParams) (RegisterService, error) {
	if params.DB == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "database client required")
	}
	return &registerService{
		db:          params.DB,
		passwordCfg: params.PasswordConfig,
	}, nil
}

func (s *registerService) Register(ctx context.Context, req RegisterRequest) error {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	orgName := strings.TrimSpace(req.OrganizationName)
	if orgName == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	if !req.AcceptTOS {
		return pkgerrors.New(pkgerrors.CodeValidation, "accept_tos must be true")
	}

	passwordHash, err := security.HashPassword(req.Password, s.passwordCfg)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	return s.db.WithTx(ctx, func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		orgRepo := organizations.NewRepository(tx)
		membershipRepo := memberships.NewRepository(tx)

		if _, err := userRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check user email")
		}

		user, err := userRepo.Create(ctx, users.CreateUserDTO{
			Email:        email,
			PasswordHash: passwordHash,
			FirstName:    req.FirstName,
			LastName:     req.LastName,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
		}

		org, err := orgRepo.Create(ctx, organizations.CreateOrganizationDTO{
			Name:    orgName,
			Slug:    slugify(orgName),
			Website: req.Website,
			OwnerID: user.ID,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create organization")
		}

		if _, err := membershipRepo.CreateMembership(
			ctx,
			org.ID,
			user.ID,
			enums.MemberRoleOwner,
			nil,
			enums.MembershipStatusActive,
		); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create membership")
		}

		if err := userRepo.UpdateOrgIDs(ctx, user.ID, []uuid.UUID{org.ID}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "associate organization with user")
		}

		return nil
	})
}

// slugify normalizes an organization name into a URL-safe slug with a random
// suffix so repeated names never collide.
func slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "org"
	}
	return fmt.Sprintf("%s-%s", slug, uuid.NewString()[:8])
}
