package dto

import "time"

// UpdatedAccountDTO is one account moved to the free tier by a cycle.
type UpdatedAccountDTO struct {
	UID          int64  `json:"uid"`
	Username     string `json:"username,omitempty"`
	PreviousPlan string `json:"previous_plan"`
	NewPlan      string `json:"new_plan"`
}

// FailedAccountDTO is one account whose downgrade write failed.
type FailedAccountDTO struct {
	UID          int64  `json:"uid"`
	PreviousPlan string `json:"previous_plan"`
	Error        string `json:"error"`
}

// CycleStatisticsDTO reports candidates per tier in PerTierExpired, which sums
// to TotalExpired whatever the write outcome.
type CycleStatisticsDTO struct {
	TotalExpired      int            `json:"total_expired"`
	PerTierExpired    map[string]int `json:"per_tier_expired"`
	PerTierDowngraded map[string]int `json:"per_tier_downgraded"`
	Succeeded         int            `json:"succeeded"`
	Failed            int            `json:"failed"`
	Skipped           int            `json:"skipped"`
}

// ExpiryCycleResultDTO is the structured outcome of one expiry cycle. It is
// returned for failed and refused cycles too.
type ExpiryCycleResultDTO struct {
	Success         bool                `json:"success"`
	Message         string              `json:"message"`
	RunID           string              `json:"run_id,omitempty"`
	Trigger         string              `json:"trigger"`
	Timestamp       time.Time           `json:"timestamp"`
	Statistics      CycleStatisticsDTO  `json:"statistics"`
	UpdatedAccounts []UpdatedAccountDTO `json:"updated_accounts"`
	Failures        []FailedAccountDTO  `json:"failures"`
	Error           string              `json:"error,omitempty"`
	// InProgress is set when the cycle was refused because another one was running.
	InProgress bool `json:"-"`
}

type TierStatisticsDTO struct {
	Total        int `json:"total"`
	Active       int `json:"active"`
	Expired      int `json:"expired"`
	ExpiringSoon int `json:"expiring_soon"`
}

type ExpiringAccountDTO struct {
	UID           int64     `json:"uid"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	Plan          string    `json:"plan"`
	PlanExpiry    time.Time `json:"plan_expiry"`
	DaysRemaining int       `json:"days_remaining"`
}

type ExpiryStatisticsDTO struct {
	TotalPaidAccounts int                          `json:"total_paid_accounts"`
	Active            int                          `json:"active"`
	Expired           int                          `json:"expired"`
	ExpiringSoon      int                          `json:"expiring_soon"`
	PerTier           map[string]TierStatisticsDTO `json:"per_tier"`
	ExpiringList      []ExpiringAccountDTO         `json:"expiring_list"`
	HorizonDays       int                          `json:"horizon_days"`
	GeneratedAt       time.Time                    `json:"generated_at"`
}

type ExpiringAccountsDTO struct {
	Days             int                  `json:"days"`
	TotalExpiring    int                  `json:"total_expiring"`
	ExpiringToday    int                  `json:"expiring_today"`
	ExpiringThisWeek int                  `json:"expiring_this_week"`
	PerTier          map[string]int       `json:"per_tier"`
	Accounts         []ExpiringAccountDTO `json:"accounts"`
	GeneratedAt      time.Time            `json:"generated_at"`
}

type ExpiryRunDTO struct {
	RunID      string             `json:"run_id"`
	Trigger    string             `json:"trigger"`
	StartedAt  time.Time          `json:"started_at"`
	FinishedAt *time.Time         `json:"finished_at,omitempty"`
	Success    bool               `json:"success"`
	Message    string             `json:"message"`
	Candidates int                `json:"candidates"`
	Succeeded  int                `json:"succeeded"`
	Failed     int                `json:"failed"`
	Skipped    int                `json:"skipped"`
	PerTier    map[string]int     `json:"per_tier"`
	Failures   []FailedAccountDTO `json:"failures,omitempty"`
	Error      string             `json:"error,omitempty"`
}

type SchedulerStatusDTO struct {
	Status          string        `json:"status"`
	Interval        string        `json:"interval"`
	NextRunEstimate *time.Time    `json:"next_run_estimate,omitempty"`
	LastRunEstimate *time.Time    `json:"last_run_estimate,omitempty"`
	CycleInProgress bool          `json:"cycle_in_progress"`
	LastRun         *ExpiryRunDTO `json:"last_run,omitempty"`
}
