package enums

import "fmt"

// RiskLevel grades likelihood, impact, and the derived inherent level.
type RiskLevel string

const (
	RiskLevelLow      RiskLevel = "low"
	RiskLevelMedium   RiskLevel = "medium"
	RiskLevelHigh     RiskLevel = "high"
	RiskLevelCritical RiskLevel = "critical"
)

var validRiskLevels = []RiskLevel{
	RiskLevelLow,
	RiskLevelMedium,
	RiskLevelHigh,
	RiskLevelCritical,
}

// String implements fmt.Stringer.
func (r RiskLevel) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RiskLevel.
func (r RiskLevel) IsValid() bool {
	for _, candidate := range validRiskLevels {
		if candidate == r {
			return true
		}
	}
	return false
}

// Score returns the ordinal weight used when combining likelihood and impact.
func (r RiskLevel) Score() int {
	switch r {
	case RiskLevelLow:
		return 1
	case RiskLevelMedium:
		return 2
	case RiskLevelHigh:
		return 3
	case RiskLevelCritical:
		return 4
	default:
		return 0
	}
}

// RiskLevelFromScore maps a combined likelihood/impact score back to a level.
func RiskLevelFromScore(score int) RiskLevel {
	switch {
	case score >= 12:
		return RiskLevelCritical
	case score >= 6:
		return RiskLevelHigh
	case score >= 3:
		return RiskLevelMedium
	default:
		return RiskLevelLow
	}
}

// ParseRiskLevel converts raw input into a RiskLevel.
func ParseRiskLevel(value string) (RiskLevel, error) {
	for _, candidate := range validRiskLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk level %q", value)
}

// RiskStatus captures the treatment state of a risk register entry.
type RiskStatus string

const (
	RiskStatusOpen       RiskStatus = "open"
	RiskStatusMitigating RiskStatus = "mitigating"
	RiskStatusAccepted   RiskStatus = "accepted"
	RiskStatusClosed     RiskStatus = "closed"
)

var validRiskStatuses = []RiskStatus{
	RiskStatusOpen,
	RiskStatusMitigating,
	RiskStatusAccepted,
	RiskStatusClosed,
}

// String implements fmt.Stringer.
func (r RiskStatus) String() string {
	return string(r)
}

// IsValid reports whether the value is a known RiskStatus.
func (r RiskStatus) IsValid() bool {
	for _, candidate := range validRiskStatuses {
		if candidate == r {
			return true
		}
	}
	return false
}

// ParseRiskStatus converts raw input into a RiskStatus.
func ParseRiskStatus(value string) (RiskStatus, error) {
	for _, candidate := range validRiskStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid risk status %q", value)
}
