package account

import "fmt"

// Plan is a subscription tier stored on the account record.
type Plan string

const (
	PlanFree        Plan = "free"
	PlanEchoPro     Plan = "echopro"
	PlanEchoProPlus Plan = "echoproplus"
)

var paidPlans = []Plan{PlanEchoPro, PlanEchoProPlus}

// PaidPlans returns the paid tiers in a stable order.
func PaidPlans() []Plan {
	out := make([]Plan, len(paidPlans))
	copy(out, paidPlans)
	return out
}

// PaidPlanStrings returns PaidPlans as strings for store filters.
func PaidPlanStrings() []string {
	out := make([]string, len(paidPlans))
	for i, p := range paidPlans {
		out[i] = string(p)
	}
	return out
}

func (p Plan) String() string {
	return string(p)
}

func (p Plan) IsValid() bool {
	return p == PlanFree || p.IsPaid()
}

// IsPaid reports whether p is any tier other than free.
func (p Plan) IsPaid() bool {
	return p == PlanEchoPro || p == PlanEchoProPlus
}

func ParsePlan(s string) (Plan, error) {
	p := Plan(s)
	if !p.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPlan, s)
	}
	return p, nil
}

// UserType is the role recorded on the account.
type UserType string

const (
	UserTypeUser       UserType = "user"
	UserTypeAdmin      UserType = "admin"
	UserTypeSuperAdmin UserType = "super_admin"
)

func (t UserType) String() string {
	return string(t)
}

func (t UserType) IsValid() bool {
	switch t {
	case UserTypeUser, UserTypeAdmin, UserTypeSuperAdmin:
		return true
	}
	return false
}
