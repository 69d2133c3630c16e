package enums

import "fmt"

// PolicyStatus captures the approval workflow for a governance policy.
type PolicyStatus string

const (
	PolicyStatusDraft    PolicyStatus = "draft"
	PolicyStatusInReview PolicyStatus = "in_review"
	PolicyStatusApproved PolicyStatus = "approved"
	PolicyStatusRetired  PolicyStatus = "retired"
)

var validPolicyStatuses = []PolicyStatus{
	PolicyStatusDraft,
	PolicyStatusInReview,
	PolicyStatusApproved,
	PolicyStatusRetired,
}

// String implements fmt.Stringer.
func (p PolicyStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PolicyStatus.
func (p PolicyStatus) IsValid() bool {
	for _, candidate := range validPolicyStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the workflow allows moving to next.
func (p PolicyStatus) CanTransitionTo(next PolicyStatus) bool {
	switch p {
	case PolicyStatusDraft:
		return next == PolicyStatusInReview || next == PolicyStatusRetired
	case PolicyStatusInReview:
		return next == PolicyStatusApproved || next == PolicyStatusDraft || next == PolicyStatusRetired
	case PolicyStatusApproved:
		return next == PolicyStatusRetired
	default:
		return false
	}
}

// ParsePolicyStatus converts raw input into a PolicyStatus.
func ParsePolicyStatus(value string) (PolicyStatus, error) {
	for _, candidate := range validPolicyStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid policy status %q", value)
}
