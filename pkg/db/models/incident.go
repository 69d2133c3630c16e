package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// Incident records an AI-system incident for an organization.
type Incident struct {
	ID              uuid.UUID              `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OrgID           uuid.UUID              `gorm:"column:org_id;type:uuid;not null;index"`
	Title           string                 `gorm:"column:title;not null"`
	Description     *string                `gorm:"column:description"`
	Severity        enums.IncidentSeverity `gorm:"column:severity;type:incident_severity;not null"`
	Status          enums.IncidentStatus   `gorm:"column:status;type:incident_status;not null;default:'open'"`
	AffectedSystems pq.StringArray         `gorm:"column:affected_systems;type:text[];default:ARRAY[]::text[]"`
	ReportedByID    *uuid.UUID             `gorm:"column:reported_by_id;type:uuid"`
	OccurredAt      time.Time              `gorm:"column:occurred_at;not null"`
	ResolvedAt      *time.Time             `gorm:"column:resolved_at"`
	CreatedAt       time.Time              `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time              `gorm:"column:updated_at;autoUpdateTime"`
}
