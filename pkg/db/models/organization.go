package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Organization represents the canonical tenant model.
type Organization struct {
	ID                 uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name               string     `gorm:"column:name;not null"`
	Slug               string     `gorm:"column:slug;not null;uniqueIndex"`
	Description        *string    `gorm:"column:description"`
	Website            *string    `gorm:"column:website"`
	ContactEmail       *string    `gorm:"column:contact_email"`
	Plan               enums.Plan `gorm:"column:plan;type:plan;not null;default:'observer'"`
	SubscriptionActive bool       `gorm:"column:subscription_active;not null;default:false"`
	StripeCustomerID   *string    `gorm:"column:stripe_customer_id"`
	OwnerID            uuid.UUID  `gorm:"column:owner;type:uuid;not null"`
	LastActiveAt       *time.Time `gorm:"column:last_active_at"`
	CreatedAt          time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
