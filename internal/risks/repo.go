package risks

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates risk register persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a risk repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the risk row.
func (r *Repository) Create(ctx context.Context, risk *models.Risk) error {
	return r.db.WithContext(ctx).Create(risk).Error
}

// FindByID loads a risk scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Risk, error) {
	var risk models.Risk
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&risk).Error; err != nil {
		return nil, err
	}
	return &risk, nil
}

// List returns one cursor page of the org's register, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListRisksQuery) ([]models.Risk, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Risk{}).
		Where("org_id = ?", orgID)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Risk
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

// Update saves the full risk row.
func (r *Repository) Update(ctx context.Context, risk *models.Risk) error {
	return r.db.WithContext(ctx).Save(risk).Error
}

// Delete removes a risk scoped to its organization.
func (r *Repository) Delete(ctx context.Context, orgID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		Delete(&models.Risk{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
