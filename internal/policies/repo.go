package policies

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/pagination"
)

// Repository encapsulates policy persistence.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a policy repository bound to the provided gorm DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts the policy row.
func (r *Repository) Create(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Create(policy).Error
}

// FindByID loads a policy scoped to its organization.
func (r *Repository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*models.Policy, error) {
	var policy models.Policy
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", orgID, id).
		First(&policy).Error; err != nil {
		return nil, err
	}
	return &policy, nil
}

// List returns one cursor page of the org's policies, newest first.
func (r *Repository) List(ctx context.Context, orgID uuid.UUID, query ListPoliciesQuery) ([]models.Policy, *pagination.Cursor, error) {
	limit := pagination.NormalizeLimit(query.Limit)
	cursor, err := pagination.ParseCursor(strings.TrimSpace(query.Cursor))
	if err != nil {
		return nil, nil, err
	}

	q := r.db.WithContext(ctx).
		Model(&models.Policy{}).
		Where("org_id = ?", orgID)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.Policy
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

// Update saves the full policy row.
func (r *Repository) Update(ctx context.Context, policy *models.Policy) error {
	return r.db.WithContext(ctx).Save(policy).Error
}
