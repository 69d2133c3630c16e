package incidents

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates incident persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs an incident repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the incident row.
func (r *Repository) Create(ctx context.Context, incident *models.Incident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

// FindByID loads an incident scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Incident, error) {
	var incident models.Incident
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&incident).Error; err != nil {
		return nil, err
	}
	return &incident, nil
}

// List returns one cursor page of the org's incidents, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListIncidentsQuery) ([]models.Incident, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Incident{}).
		Where("org_id = ?", orgID)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Severity != nil {
		q = q.Where("severity = ?", *query.Severity)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Incident
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

// Update saves the full incident row.
func (r *Repository) Update(ctx context.Context, incident *models.Incident) error {
	return r.db.WithContext(ctx).Save(incident).Error
}
