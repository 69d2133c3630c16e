package decisions

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates decision log persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a decision repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the decision row.
func (r *Repository) Create(ctx context.Context, decision *models.Decision) error {
	return r.db.WithContext(ctx).Create(decision).Error
}

// FindByID loads a decision scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Decision, error) {
	var decision models.Decision
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&decision).Error; err != nil {
		return nil, err
	}
	return &decision, nil
}

// List returns one cursor page of the org's decision log, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListDecisionsQuery) ([]models.Decision, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Decision{}).
		Where("org_id = ?", orgID)
	if query.RiskID != nil {
		q = q.Where("risk_id = ?", *query.RiskID)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Decision
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

// Delete removes a decision scoped to its organization.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&models.Decision{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
