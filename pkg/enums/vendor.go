package enums

import "fmt"

// VendorRiskTier grades the exposure created by a third-party AI vendor.
type VendorRiskTier string

const (
	VendorRiskTierLow      VendorRiskTier = "low"
	VendorRiskTierModerate VendorRiskTier = "moderate"
	VendorRiskTierHigh     VendorRiskTier = "high"
)

var validVendorRiskTiers = []VendorRiskTier{
	VendorRiskTierLow,
	VendorRiskTierModerate,
	VendorRiskTierHigh,
}

// String implements fmt.Stringer.
func (v VendorRiskTier) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorRiskTier.
func (v VendorRiskTier) IsValid() bool {
	for _, candidate := range validVendorRiskTiers {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorRiskTier converts raw input into a VendorRiskTier.
func ParseVendorRiskTier(value string) (VendorRiskTier, error) {
	for _, candidate := range validVendorRiskTiers {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor risk tier %q", value)
}

// VendorAssessmentStatus captures the due-diligence state for a vendor.
type VendorAssessmentStatus string

const (
	VendorAssessmentStatusNotStarted VendorAssessmentStatus = "not_started"
	VendorAssessmentStatusInProgress VendorAssessmentStatus = "in_progress"
	VendorAssessmentStatusApproved   VendorAssessmentStatus = "approved"
	VendorAssessmentStatusRejected   VendorAssessmentStatus = "rejected"
)

var validVendorAssessmentStatuses = []VendorAssessmentStatus{
	VendorAssessmentStatusNotStarted,
	VendorAssessmentStatusInProgress,
	VendorAssessmentStatusApproved,
	VendorAssessmentStatusRejected,
}

// String implements fmt.Stringer.
func (v VendorAssessmentStatus) String() string {
	return string(v)
}

// IsValid reports whether the value is a known VendorAssessmentStatus.
func (v VendorAssessmentStatus) IsValid() bool {
	for _, candidate := range validVendorAssessmentStatuses {
		if candidate == v {
			return true
		}
	}
	return false
}

// ParseVendorAssessmentStatus converts raw input into a VendorAssessmentStatus.
func ParseVendorAssessmentStatus(value string) (VendorAssessmentStatus, error) {
	for _, candidate := range validVendorAssessmentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid vendor assessment status %q", value)
}
