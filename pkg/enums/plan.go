package enums

import "fmt"

// Plan identifies the subscription tier an organization is on.
type Plan string

const (
	// PlanObserver is the free default tier every organization starts on.
	PlanObserver     Plan = "observer"
	PlanProfessional Plan = "professional"
	PlanEnterprise   Plan = "enterprise"
)

var validPlans = []Plan{
	PlanObserver,
	PlanProfessional,
	PlanEnterprise,
}

// String implements fmt.Stringer.
func (p Plan) String() string {
	return string(p)
}

// IsValid reports whether the value is a known Plan.
func (p Plan) IsValid() bool {
	for _, candidate := range validPlans {
		if candidate == p {
			return true
		}
	}
	return false
}

// IsPaid reports whether the plan requires an active billing subscription.
func (p Plan) IsPaid() bool {
	return p == PlanProfessional || p == PlanEnterprise
}

// ParsePlan converts raw input into a Plan.
func ParsePlan(value string) (Plan, error) {
	for _, candidate := range validPlans {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan %q", value)
}
