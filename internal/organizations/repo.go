package organizations

import (
	"context"
	"fmt"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository handles organization persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository binds a GORM DB to organization operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new organization row.
func (r *Repository) Create(ctx context.Context, dto CreateOrganizationDTO) (*models.Organization, error) {
	org := dto.ToModel()
	if err := r.db.WithContext(ctx).Create(org).Error; err != nil {
		return nil, err
	}
	return org, nil
}

// FindByID loads an organization by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindBySlug loads an organization by its slug.
func (r *Repository) FindBySlug(ctx context.Context, slug string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// FindByOwner returns all organizations owned by the provided user.
func (r *Repository) FindByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Organization, error) {
	var orgs []models.Organization
	if err := r.db.WithContext(ctx).Where("owner = ?", ownerID).Find(&orgs).Error; err != nil {
		return nil, err
	}
	return orgs, nil
}

// FindByStripeCustomerID resolves the organization owning the billing customer reference.
func (r *Repository) FindByStripeCustomerID(ctx context.Context, customerID string) (*models.Organization, error) {
	var org models.Organization
	if err := r.db.WithContext(ctx).Where("stripe_customer_id = ?", customerID).First(&org).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// Update saves the provided organization.
func (r *Repository) Update(ctx context.Context, org *models.Organization) error {
	if org == nil {
		return fmt.Errorf("organization is required")
	}
	return r.db.WithContext(ctx).Save(org).Error
}

// UpdatePlanState applies the billing-derived plan fields in one UPDATE.
func (r *Repository) UpdatePlanState(ctx context.Context, id uuid.UUID, plan enums.Plan, subscriptionActive bool) error {
	return r.db.WithContext(ctx).
		Model(&models.Organization{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"plan":                plan,
			"subscription_active": subscriptionActive,
		}).Error
}

// UpdatePlanStateWithTx applies the billing-derived plan fields inside a transaction.
func (r *Repository) UpdatePlanStateWithTx(tx *gorm.DB, id uuid.UUID, plan enums.Plan, subscriptionActive bool) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.
		Model(&models.Organization{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"plan":                plan,
			"subscription_active": subscriptionActive,
		}).Error
}

// FindByIDWithTx loads an organization using the provided transaction.
func (r *Repository) FindByIDWithTx(tx *gorm.DB, id uuid.UUID) (*models.Organization, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var org models.Organization
	if err := tx.First(&org, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &org, nil
}

// UpdateWithTx persists the organization using the provided transaction.
func (r *Repository) UpdateWithTx(tx *gorm.DB, org *models.Organization) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if org == nil {
		return fmt.Errorf("organization is required")
	}
	return tx.Save(org).Error
}
