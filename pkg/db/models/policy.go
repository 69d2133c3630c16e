package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Policy is a versioned governance policy document reference.
type Policy struct {
	ID          uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID       uuid.UUID          `gorm:"column:org_id;type:uuid;not null;index"`
	Name        string             `gorm:"column:name;not null"`
	Version     string             `gorm:"column:version;not null"`
	Status      enums.PolicyStatus `gorm:"column:status;type:policy_status;not null;default:'draft'"`
	Summary     *string            `gorm:"column:summary"`
	DocumentID  *uuid.UUID         `gorm:"column:document_id;type:uuid"`
	EffectiveAt *time.Time         `gorm:"column:effective_at"`
	ApprovedBy  *uuid.UUID         `gorm:"column:approved_by;type:uuid"`
	ApprovedAt  *time.Time         `gorm:"column:approved_at"`
	CreatedAt   time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
