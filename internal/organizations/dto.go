package organizations

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// OrganizationDTO exposes safe tenant data in API responses.
type OrganizationDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Name               string     `json:"name"`
	Slug               string     `json:"slug"`
	Description        *string    `json:"description,omitempty"`
	Website            *string    `json:"website,omitempty"`
	ContactEmail       *string    `json:"contact_email,omitempty"`
	Plan               enums.Plan `json:"plan"`
	SubscriptionActive bool       `json:"subscription_active"`
	OwnerID            uuid.UUID  `json:"owner"`
	LastActiveAt       *time.Time `json:"last_active_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// CreateOrganizationDTO holds creation-time data for a new organization.
type CreateOrganizationDTO struct {
	Name         string
	Slug         string
	Description  *string
	Website      *string
	ContactEmail *string
	Plan         *enums.Plan
	OwnerID      uuid.UUID
}

// FromModel maps the persisted organization into a DTO.
func FromModel(m *models.Organization) *OrganizationDTO {
	if m == nil {
		return nil
	}

	return &OrganizationDTO{
		ID:                 m.ID,
		Name:               m.Name,
		Slug:               m.Slug,
		Description:        cloneStringPtr(m.Description),
		Website:            cloneStringPtr(m.Website),
		ContactEmail:       cloneStringPtr(m.ContactEmail),
		Plan:               m.Plan,
		SubscriptionActive: m.SubscriptionActive,
		OwnerID:            m.OwnerID,
		LastActiveAt:       m.LastActiveAt,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

// ToModel builds the persistence model for a new organization.
func (c CreateOrganizationDTO) ToModel() *models.Organization {
	plan := enums.PlanObserver
	if c.Plan != nil {
		plan = *c.Plan
	}

	return &models.Organization{
		Name:         c.Name,
		Slug:         c.Slug,
		Description:  cloneStringPtr(c.Description),
		Website:      cloneStringPtr(c.Website),
		ContactEmail: cloneStringPtr(c.ContactEmail),
		Plan:         plan,
		OwnerID:      c.OwnerID,
	}
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	cpy := *value
	return &cpy
}
