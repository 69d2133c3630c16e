package monitoring

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
)

// MetricRecordDTO is the API view of one monitoring observation.
type MetricRecordDTO struct {
	ID         uuid.UUID       `json:"id"`
	OrgID      uuid.UUID       `json:"org_id"`
	SystemName string          `json:"system_name"`
	Name       string          `json:"name"`
	Value      decimal.Decimal `json:"value"`
	Unit       *string         `json:"unit,omitempty"`
	RecordedAt time.Time       `json:"recorded_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// RecordMetricDTO carries the fields accepted when recording an observation.
type RecordMetricDTO struct {
	SystemName string          `json:"system_name" validate:"required,max=200"`
	Name       string          `json:"name" validate:"required,max=200"`
	Value      decimal.Decimal `json:"value"`
	Unit       *string         `json:"unit,omitempty"`
	RecordedAt *time.Time      `json:"recorded_at,omitempty"`
}

// ListMetricsQuery filters the observation listing by series and time range.
type ListMetricsQuery struct {
	SystemName string
	Name       string
	From       *time.Time
	To         *time.Time
	Limit      int
	Cursor     string
}

// MetricPageDTO is one page of observations.
type MetricPageDTO struct {
	Items      []MetricRecordDTO `json:"items"`
	NextCursor *string           `json:"next_cursor,omitempty"`
}

// ToDTO maps the persistence model to its API view.
func ToDTO(record *models.MetricRecord) MetricRecordDTO {
	return MetricRecordDTO{
		ID:         record.ID,
		OrgID:      record.OrgID,
		SystemName: record.SystemName,
		Name:       record.Name,
		Value:      record.Value,
		Unit:       record.Unit,
		RecordedAt: record.RecordedAt,
		CreatedAt:  record.CreatedAt,
	}
}
