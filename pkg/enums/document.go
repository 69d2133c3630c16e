package enums

import "fmt"

// DocumentStatus tracks the upload lifecycle of a stored document.
type DocumentStatus string

const (
	DocumentStatusPending   DocumentStatus = "pending"
	DocumentStatusConfirmed DocumentStatus = "confirmed"
	DocumentStatusDeleted   DocumentStatus = "deleted"
)

var validDocumentStatuses = []DocumentStatus{
	DocumentStatusPending,
	DocumentStatusConfirmed,
	DocumentStatusDeleted,
}

// String implements fmt.Stringer.
func (d DocumentStatus) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentStatus.
func (d DocumentStatus) IsValid() bool {
	for _, candidate := range validDocumentStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentStatus converts raw input into a DocumentStatus.
func ParseDocumentStatus(value string) (DocumentStatus, error) {
	for _, candidate := range validDocumentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document status %q", value)
}

// DocumentKind labels what a stored document evidences.
type DocumentKind string

const (
	DocumentKindPolicy     DocumentKind = "policy"
	DocumentKindAssessment DocumentKind = "assessment"
	DocumentKindContract   DocumentKind = "contract"
	DocumentKindEvidence   DocumentKind = "evidence"
	DocumentKindOther      DocumentKind = "other"
)

var validDocumentKinds = []DocumentKind{
	DocumentKindPolicy,
	DocumentKindAssessment,
	DocumentKindContract,
	DocumentKindEvidence,
	DocumentKindOther,
}

// String implements fmt.Stringer.
func (d DocumentKind) String() string {
	return string(d)
}

// IsValid reports whether the value is a known DocumentKind.
func (d DocumentKind) IsValid() bool {
	for _, candidate := range validDocumentKinds {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDocumentKind converts raw input into a DocumentKind.
func ParseDocumentKind(value string) (DocumentKind, error) {
	for _, candidate := range validDocumentKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid document kind %q", value)
}
