package usecases

import (
	"sort"
	"time"

	"github.com/echomag/echomag/internal/application/expiry/dto"
	"github.com/echomag/echomag/internal/domain/account"
)

const (
	DefaultHorizonDays = 30
	// MaxHorizonDays bounds horizon arithmetic well inside time.Duration.
	MaxHorizonDays = 3650
)

// expiryStanding is how one paid account relates to now and a horizon.
type expiryStanding struct {
	active       bool
	expired      bool
	expiringSoon bool
	days         int
}

// classify places a paid account into exactly one of active or expired.
// Expired here means planExpiry <= now; expiring-soon is the subset of active
// accounts with at least one day left and expiry inside the horizon.
func classify(acc *account.Account, now time.Time, horizonDays int) expiryStanding {
	days, hasExpiry := acc.DaysUntilExpiry(now)
	if !hasExpiry {
		return expiryStanding{active: true}
	}

	exp := *acc.PlanExpiry()
	if !exp.After(now) {
		return expiryStanding{expired: true, days: days}
	}

	horizonEnd := now.Add(time.Duration(horizonDays) * 24 * time.Hour)
	return expiryStanding{
		active:       true,
		expiringSoon: days >= 1 && !exp.After(horizonEnd),
		days:         days,
	}
}

func toExpiringAccountDTO(acc *account.Account, days int) dto.ExpiringAccountDTO {
	return dto.ExpiringAccountDTO{
		UID:           acc.UID(),
		Username:      acc.Username(),
		Email:         acc.Email(),
		Plan:          string(acc.Plan()),
		PlanExpiry:    *acc.PlanExpiry(),
		DaysRemaining: days,
	}
}

// sortExpiring orders by days remaining, then uid.
func sortExpiring(list []dto.ExpiringAccountDTO) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].DaysRemaining != list[j].DaysRemaining {
			return list[i].DaysRemaining < list[j].DaysRemaining
		}
		return list[i].UID < list[j].UID
	})
}
