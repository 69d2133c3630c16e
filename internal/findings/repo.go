package findings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates bias finding persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a finding repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the finding row.
func (r *Repository) Create(ctx context.Context, finding *models.BiasFinding) error {
	return r.db.WithContext(ctx).Create(finding).Error
}

// FindByID loads a finding scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.BiasFinding, error) {
	var finding models.BiasFinding
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&finding).Error; err != nil {
		return nil, err
	}
	return &finding, nil
}

// List returns one cursor page of the org's findings, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListFindingsQuery) ([]models.BiasFinding, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.BiasFinding{}).
		Where("org_id = ?", orgID)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if system := strings.TrimSpace(query.SystemName); system != "" {
		q = q.Where("system_name = ?", system)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.BiasFinding
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

// Update saves the full finding row.
func (r *Repository) Update(ctx context.Context, finding *models.BiasFinding) error {
	return r.db.WithContext(ctx).Save(finding).Error
}
