package enums

import "fmt"

// IncidentSeverity grades the blast radius of an AI incident.
type IncidentSeverity string

const (
	IncidentSeverityLow      IncidentSeverity = "low"
	IncidentSeverityMedium   IncidentSeverity = "medium"
	IncidentSeverityHigh     IncidentSeverity = "high"
	IncidentSeverityCritical IncidentSeverity = "critical"
)

var validIncidentSeverities = []IncidentSeverity{
	IncidentSeverityLow,
	IncidentSeverityMedium,
	IncidentSeverityHigh,
	IncidentSeverityCritical,
}

// String implements fmt.Stringer.
func (i IncidentSeverity) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IncidentSeverity.
func (i IncidentSeverity) IsValid() bool {
	for _, candidate := range validIncidentSeverities {
		if candidate == i {
			return true
		}
	}
	return false
}

// ParseIncidentSeverity converts raw input into an IncidentSeverity.
func ParseIncidentSeverity(value string) (IncidentSeverity, error) {
	for _, candidate := range validIncidentSeverities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incident severity %q", value)
}

// IncidentStatus captures the investigation lifecycle of an incident.
type IncidentStatus string

const (
	IncidentStatusOpen          IncidentStatus = "open"
	IncidentStatusInvestigating IncidentStatus = "investigating"
	IncidentStatusResolved      IncidentStatus = "resolved"
	IncidentStatusClosed        IncidentStatus = "closed"
)

var validIncidentStatuses = []IncidentStatus{
	IncidentStatusOpen,
	IncidentStatusInvestigating,
	IncidentStatusResolved,
	IncidentStatusClosed,
}

// String implements fmt.Stringer.
func (i IncidentStatus) String() string {
	return string(i)
}

// IsValid reports whether the value is a known IncidentStatus.
func (i IncidentStatus) IsValid() bool {
	for _, candidate := range validIncidentStatuses {
		if candidate == i {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the incident no longer requires action.
func (i IncidentStatus) IsTerminal() bool {
	return i == IncidentStatusResolved || i == IncidentStatusClosed
}

// ParseIncidentStatus converts raw input into an IncidentStatus.
func ParseIncidentStatus(value string) (IncidentStatus, error) {
	for _, candidate := range validIncidentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid incident status %q", value)
}
