package dto

import "time"

type MonthlyRevenueDTO struct {
	Month    string  `json:"month"`
	Revenue  float64 `json:"revenue"`
	Payments int     `json:"payments"`
}

type TierRevenueDTO struct {
	Revenue        float64 `json:"revenue"`
	Payments       int     `json:"payments"`
	ActiveAccounts int     `json:"active_accounts"`
}

// RevenueSummaryDTO aggregates completed payments over whole business months.
type RevenueSummaryDTO struct {
	Months       int                       `json:"months"`
	From         time.Time                 `json:"from"`
	To           time.Time                 `json:"to"`
	TotalRevenue float64                   `json:"total_revenue"`
	Payments     int                       `json:"payments"`
	Currencies   []string                  `json:"currencies"`
	Monthly      []MonthlyRevenueDTO       `json:"monthly"`
	PerTier      map[string]TierRevenueDTO `json:"per_tier"`
	GeneratedAt  time.Time                 `json:"generated_at"`
}
