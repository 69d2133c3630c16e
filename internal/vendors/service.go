package vendors

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/internal/audit"
	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	pkgerrors "github.com/veridianlabs/governport-backend/pkg/errors"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

type repository interface {
	Create(ctx context.Context, vendor *models.Vendor) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Vendor, error)
	List(ctx context.Context, orgID uuid.UUID, query ListVendorsQuery) ([]models.Vendor, *pagination.Cursor, error)
	Update(ctx context.Context, vendor *models.Vendor) error
	Delete(ctx context.Context, orgID, id uuid.UUID) error
}

// Service manages the vendor assessment register.
type Service struct {
	repo  repository
	audit audit.Publisher
	now   func() time.Time
}

// NewService wires the vendor service.
func NewService(repo repository, auditor audit.Publisher) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "vendor repository required")
	}
	if auditor == nil {
		auditor = audit.NopPublisher{}
	}
	return &Service{repo: repo, audit: auditor, now: time.Now}, nil
}

// Create registers a vendor. The risk tier defaults to moderate and the
// assessment starts as not started.
func (s *Service) Create(ctx context.Context, orgID uuid.UUID, actorID *uuid.UUID, dto CreateVendorDTO) (VendorDTO, error) {
	if orgID == uuid.Nil {
		return VendorDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	if strings.TrimSpace(dto.Name) == "" {
		return VendorDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	tier := enums.VendorRiskTierModerate
	if strings.TrimSpace(dto.RiskTier) != "" {
		parsed, err := enums.ParseVendorRiskTier(dto.RiskTier)
		if err != nil {
			return VendorDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid risk tier")
		}
		tier = parsed
	}

	vendor := &models.Vendor{
		OrgID:            orgID,
		Name:             strings.TrimSpace(dto.Name),
		AIUsage:          dto.AIUsage,
		RiskTier:         tier,
		AssessmentStatus: enums.VendorAssessmentStatusNotStarted,
		ContactEmail:     dto.ContactEmail,
		Website:          dto.Website,
	}
	if err := s.repo.Create(ctx, vendor); err != nil {
		return VendorDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create vendor")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "vendor.created",
		Resource:   "vendor",
		ResourceID: vendor.ID.String(),
		Metadata:   map[string]string{"risk_tier": string(tier)},
	})
	return ToDTO(vendor), nil
}

// Get loads one vendor.
func (s *Service) Get(ctx context.Context, orgID, id uuid.UUID) (VendorDTO, error) {
	vendor, err := s.load(ctx, orgID, id)
	if err != nil {
		return VendorDTO{}, err
	}
	return ToDTO(vendor), nil
}

// List returns one page of the org's vendors.
func (s *Service) List(ctx context.Context, orgID uuid.UUID, query ListVendorsQuery) (VendorPageDTO, error) {
	if orgID == uuid.Nil {
		return VendorPageDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "organization id is required")
	}
	rows, next, err := s.repo.List(ctx, orgID, query)
	if err != nil {
		return VendorPageDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list vendors")
	}

	page := VendorPageDTO{Items: make([]VendorDTO, 0, len(rows))}
	for i := range rows {
		page.Items = append(page.Items, ToDTO(&rows[i]))
	}
	if next != nil {
		encoded := pagination.EncodeCursor(*next)
		page.NextCursor = &encoded
	}
	return page, nil
}

// Update applies a partial update. Settling an assessment (approved or
// rejected) stamps last_reviewed_at.
func (s *Service) Update(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID, dto UpdateVendorDTO) (VendorDTO, error) {
	vendor, err := s.load(ctx, orgID, id)
	if err != nil {
		return VendorDTO{}, err
	}

	if dto.Name != nil {
		if strings.TrimSpace(*dto.Name) == "" {
			return VendorDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name cannot be empty")
		}
		vendor.Name = strings.TrimSpace(*dto.Name)
	}
	if dto.AIUsage != nil {
		vendor.AIUsage = dto.AIUsage
	}
	if dto.RiskTier != nil {
		tier, err := enums.ParseVendorRiskTier(*dto.RiskTier)
		if err != nil {
			return VendorDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid risk tier")
		}
		vendor.RiskTier = tier
	}
	if dto.AssessmentStatus != nil {
		status, err := enums.ParseVendorAssessmentStatus(*dto.AssessmentStatus)
		if err != nil {
			return VendorDTO{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid assessment status")
		}
		if status != vendor.AssessmentStatus && (status == enums.VendorAssessmentStatusApproved || status == enums.VendorAssessmentStatusRejected) {
			reviewed := s.now().UTC()
			vendor.LastReviewedAt = &reviewed
		}
		vendor.AssessmentStatus = status
	}
	if dto.ContactEmail != nil {
		vendor.ContactEmail = dto.ContactEmail
	}
	if dto.Website != nil {
		vendor.Website = dto.Website
	}

	if err := s.repo.Update(ctx, vendor); err != nil {
		return VendorDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update vendor")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "vendor.updated",
		Resource:   "vendor",
		ResourceID: vendor.ID.String(),
		Metadata:   map[string]string{"assessment_status": string(vendor.AssessmentStatus)},
	})
	return ToDTO(vendor), nil
}

// Delete removes a vendor from the register.
func (s *Service) Delete(ctx context.Context, orgID, id uuid.UUID, actorID *uuid.UUID) error {
	if orgID == uuid.Nil || id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "organization id and vendor id are required")
	}
	if err := s.repo.Delete(ctx, orgID, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete vendor")
	}

	s.audit.Record(ctx, audit.Event{
		OrgID:      orgID,
		ActorID:    actorID,
		Action:     "vendor.deleted",
		Resource:   "vendor",
		ResourceID: id.String(),
	})
	return nil
}

func (s *Service) load(ctx context.Context, orgID, id uuid.UUID) (*models.Vendor, error) {
	if orgID == uuid.Nil || id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization id and vendor id are required")
	}
	vendor, err := s.repo.FindByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "vendor not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load vendor")
	}
	return vendor, nil
}
