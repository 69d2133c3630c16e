package monitoring

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates metric record persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a metric repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the observation row.
func (r *Repository) Create(ctx context.Context, record *models.MetricRecord) error {
	return r.db.WithContext(ctx).Create(record).Error
}

// List returns one cursor page of the org's observations, newest first,
// optionally narrowed to a series and a recorded_at range.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListMetricsQuery) ([]models.MetricRecord, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.MetricRecord{}).
		Where("org_id = ?", orgID)
	if system := strings.TrimSpace(query.SystemName); system != "" {
		q = q.Where("system_name = ?", system)
	}
	if name := strings.TrimSpace(query.Name); name != "" {
		q = q.Where("name = ?", name)
	}
	if query.From != nil {
		q = q.Where("recorded_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("recorded_at <= ?", *query.To)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.MetricRecord
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
