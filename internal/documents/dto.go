package documents

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// DocumentDTO is the API view of a stored document's metadata.
type DocumentDTO struct {
	ID           uuid.UUID            `json:"id"`
	OrgID        uuid.UUID            `json:"org_id"`
	Name         string               `json:"name"`
	Kind         enums.DocumentKind   `json:"kind"`
	Status       enums.DocumentStatus `json:"status"`
	ContentType  string               `json:"content_type"`
	SizeBytes    int64                `json:"size_bytes"`
	UploadedByID *uuid.UUID           `json:"uploaded_by_id,omitempty"`
	ConfirmedAt  *time.Time           `json:"confirmed_at,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// CreateUploadDTO carries the fields accepted when requesting an upload slot.
type CreateUploadDTO struct {
	Name        string `json:"name" validate:"required,max=255"`
	Kind        string `json:"kind,omitempty"`
	ContentType string `json:"content_type" validate:"required"`
	SizeBytes   int64  `json:"size_bytes" validate:"gte=0"`
}

// UploadSlotDTO is the response to an upload request: the pending metadata
// row plus a presigned PUT URL the client uploads directly to.
type UploadSlotDTO struct {
	Document  DocumentDTO `json:"document"`
	UploadURL string      `json:"upload_url"`
}

// DownloadDTO carries a presigned GET URL for a confirmed document.
type DownloadDTO struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ListDocumentsQuery filters the document listing.
type ListDocumentsQuery struct {
	Kind   *enums.DocumentKind
	Status *enums.DocumentStatus
	Limit  int
	Cursor string
}

// DocumentPageDTO is one page of documents.
type DocumentPageDTO struct {
	Items      []DocumentDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view. Bucket and object key
// stay internal; clients only ever see signed URLs.
func ToDTO(document *models.Document) DocumentDTO {
	return DocumentDTO{
		ID:           document.ID,
		OrgID:        document.OrgID,
		Name:         document.Name,
		Kind:         document.Kind,
		Status:       document.Status,
		ContentType:  document.ContentType,
		SizeBytes:    document.SizeBytes,
		UploadedByID: document.UploadedByID,
		ConfirmedAt:  document.ConfirmedAt,
		CreatedAt:    document.CreatedAt,
		UpdatedAt:    document.UpdatedAt,
	}
}
