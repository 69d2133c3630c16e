package enums

import "fmt"

// FindingStatus captures the remediation state of a bias finding.
type FindingStatus string

const (
	FindingStatusOpen        FindingStatus = "open"
	FindingStatusRemediating FindingStatus = "remediating"
	FindingStatusResolved    FindingStatus = "resolved"
)

var validFindingStatuses = []FindingStatus{
	FindingStatusOpen,
	FindingStatusRemediating,
	FindingStatusResolved,
}

// String implements fmt.Stringer.
func (f FindingStatus) String() string {
	return string(f)
}

// IsValid reports whether the value is a known FindingStatus.
func (f FindingStatus) IsValid() bool {
	for _, candidate := range validFindingStatuses {
		if candidate == f {
			return true
		}
	}
	return false
}

// ParseFindingStatus converts raw input into a FindingStatus.
func ParseFindingStatus(value string) (FindingStatus, error) {
	for _, candidate := range validFindingStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid finding status %q", value)
}
