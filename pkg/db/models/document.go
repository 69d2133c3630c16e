package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Document is the metadata row for an object stored in the documents bucket.
type Document struct {
	ID           uuid.UUID            `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID        uuid.UUID            `gorm:"column:org_id;type:uuid;not null;index"`
	Name         string               `gorm:"column:name;not null"`
	Kind         enums.DocumentKind   `gorm:"column:kind;type:document_kind;not null;default:'other'"`
	Status       enums.DocumentStatus `gorm:"column:status;type:document_status;not null;default:'pending'"`
	Bucket       string               `gorm:"column:bucket;not null"`
	ObjectKey    string               `gorm:"column:object_key;not null;uniqueIndex"`
	ContentType  string               `gorm:"column:content_type;not null"`
	SizeBytes    int64                `gorm:"column:size_bytes;not null;default:0"`
	UploadedByID *uuid.UUID           `gorm:"column:uploaded_by_id;type:uuid"`
	ConfirmedAt  *time.Time           `gorm:"column:confirmed_at"`
	CreatedAt    time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
