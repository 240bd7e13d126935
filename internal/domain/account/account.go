package account

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// Account is the slice of the user record the expiry engine reads and writes.
// Identity and profile fields are owned elsewhere and only carried along for
// reporting.
type Account struct {
	uid        int64
	username   string
	email      string
	userType   UserType
	plan       Plan
	planStart  *time.Time
	planExpiry *time.Time
}

// ReconstructAccount rebuilds an account from persistence.
func ReconstructAccount(
	uid int64,
	username, email string,
	userType UserType,
	plan Plan,
	planStart, planExpiry *time.Time,
) (*Account, error) {
	if uid <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidUID, uid)
	}
	if !plan.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidPlan, plan)
	}
	if !userType.IsValid() {
		userType = UserTypeUser
	}

	return &Account{
		uid:        uid,
		username:   username,
		email:      email,
		userType:   userType,
		plan:       plan,
		planStart:  utcPtr(planStart),
		planExpiry: utcPtr(planExpiry),
	}, nil
}

func (a *Account) UID() int64 {
	return a.uid
}

func (a *Account) Username() string {
	return a.username
}

func (a *Account) Email() string {
	return a.email
}

func (a *Account) UserType() UserType {
	return a.userType
}

func (a *Account) Plan() Plan {
	return a.plan
}

func (a *Account) PlanStart() *time.Time {
	return a.planStart
}

func (a *Account) PlanExpiry() *time.Time {
	return a.planExpiry
}

func (a *Account) IsAdmin() bool {
	return a.userType == UserTypeAdmin || a.userType == UserTypeSuperAdmin
}

// IsExpiredAt reports whether a paid plan has a recorded expiry strictly
// before now. A paid account without an expiry is never expired.
func (a *Account) IsExpiredAt(now time.Time) bool {
	if !a.plan.IsPaid() || a.planExpiry == nil {
		return false
	}
	return a.planExpiry.Before(now)
}

// IsActiveAt reports whether a paid plan is still running at now. An absent
// expiry counts as active.
func (a *Account) IsActiveAt(now time.Time) bool {
	if !a.plan.IsPaid() {
		return false
	}
	return a.planExpiry == nil || a.planExpiry.After(now)
}

// DaysUntilExpiry returns ceil((planExpiry - now) / 24h). The boolean is false
// when the account has no expiry.
func (a *Account) DaysUntilExpiry(now time.Time) (int, bool) {
	if a.planExpiry == nil {
		return 0, false
	}
	return CeilDays(a.planExpiry.Sub(now)), true
}

// Downgrade moves the account to the free tier and clears both plan dates.
// It returns the previous plan and whether anything changed.
func (a *Account) Downgrade() (Plan, bool) {
	prev := a.plan
	if prev == PlanFree && a.planStart == nil && a.planExpiry == nil {
		return prev, false
	}
	a.plan = PlanFree
	a.planStart = nil
	a.planExpiry = nil
	return prev, true
}

// CeilDays rounds a duration up to whole days. Negative durations round
// towards zero, so anything less than a day overdue reports 0.
func CeilDays(d time.Duration) int {
	days := int(d / day)
	if d%day > 0 {
		days++
	}
	return days
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
