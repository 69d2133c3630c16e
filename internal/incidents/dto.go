package incidents

import (
	"time"

	"github.com/google/uuid"

	"github.com/veridianlabs/governport-backend/pkg/db/models"
	"github.com/veridianlabs/governport-backend/pkg/enums"
)

// IncidentDTO is the API view of an incident.
type IncidentDTO struct {
	ID              uuid.UUID              `json:"id"`
	OrgID           uuid.UUID              `json:"org_id"`
	Title           string                 `json:"title"`
	Description     *string                `json:"description,omitempty"`
	Severity        enums.IncidentSeverity `json:"severity"`
	Status          enums.IncidentStatus   `json:"status"`
	AffectedSystems []string               `json:"affected_systems"`
	ReportedByID    *uuid.UUID             `json:"reported_by_id,omitempty"`
	OccurredAt      time.Time              `json:"occurred_at"`
	ResolvedAt      *time.Time             `json:"resolved_at,omitempty"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// CreateIncidentDTO carries the fields accepted when reporting an incident.
type CreateIncidentDTO struct {
	Title           string     `json:"title" validate:"required,max=200"`
	Description     *string    `json:"description,omitempty"`
	Severity        string     `json:"severity" validate:"required"`
	AffectedSystems []string   `json:"affected_systems,omitempty"`
	OccurredAt      *time.Time `json:"occurred_at,omitempty"`
}

// UpdateIncidentDTO carries optional updates; nil fields are left untouched.
type UpdateIncidentDTO struct {
	Title           *string    `json:"title,omitempty" validate:"omitempty,max=200"`
	Description     *string    `json:"description,omitempty"`
	Severity        *string    `json:"severity,omitempty"`
	Status          *string    `json:"status,omitempty"`
	AffectedSystems *[]string  `json:"affected_systems,omitempty"`
	OccurredAt      *time.Time `json:"occurred_at,omitempty"`
}

// ListIncidentsQuery filters the incident listing.
type ListIncidentsQuery struct {
	Status   *enums.IncidentStatus
	Severity *enums.IncidentSeverity
	Limit    int
	Cursor   string
}

// IncidentPageDTO is one page of incidents.
type IncidentPageDTO struct {
	Items      []IncidentDTO `json:"items"`
	NextCursor *string       `json:"next_cursor,omitempty"`
}

// ToDTO maps the model into its API view.
func ToDTO(incident *models.Incident) IncidentDTO {
	systems := make([]string, len(incident.AffectedSystems))
	copy(systems, incident.AffectedSystems)
	return IncidentDTO{
		ID:              incident.ID,
		OrgID:           incident.OrgID,
		Title:           incident.Title,
		Description:     incident.Description,
		Severity:        incident.Severity,
		Status:          incident.Status,
		AffectedSystems: systems,
		ReportedByID:    incident.ReportedByID,
		OccurredAt:      incident.OccurredAt,
		ResolvedAt:      incident.ResolvedAt,
		CreatedAt:       incident.CreatedAt,
		UpdatedAt:       incident.UpdatedAt,
	}
}
