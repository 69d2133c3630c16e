package documents

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates document metadata persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a document repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the document row.
func (r *Repository) Create(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Create(document).Error
}

// FindByID loads a document scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Document, error) {
	var document models.Document
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&document).Error; err != nil {
		return nil, err
	}
	return &document, nil
}

// List returns one cursor page of the org's documents, newest first. Deleted
// documents are excluded unless the query asks for them.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListDocumentsQuery) ([]models.Document, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Document{}).
		Where("org_id = ?", orgID)
	if query.Kind != nil {
		q = q.Where("kind = ?", *query.Kind)
	}
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	} else {
		q = q.Where("status <> ?", enums.DocumentStatusDeleted)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Document
	if err := q.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(query.Limit)).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	var next *pagination.Cursor
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = &pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID}
	}
	return rows, next, nil
}

// Update saves the full document row.
func (r *Repository) Update(ctx context.Context, document *models.Document) error {
	return r.db.WithContext(ctx).Save(document).Error
}
