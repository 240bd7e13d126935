package models

import (
	"time"

	"github.com/echomag/echomag/internal/shared/constants"
)

// AccountModel maps the plan columns of the accounts table. The expiry engine
// never inserts rows; profile columns are read for reporting only.
type AccountModel struct {
	ID         uint       `gorm:"primarykey"`
	UID        int64      `gorm:"column:uid;uniqueIndex;not null"`
	Username   string     `gorm:"size:100"`
	Email      string     `gorm:"size:255"`
	UserType   string     `gorm:"size:20;not null;default:user"`
	Plan       string     `gorm:"size:20;not null;default:free;index:idx_accounts_plan_expiry,priority:1"`
	PlanStart  *time.Time `gorm:"column:plan_start"`
	PlanExpiry *time.Time `gorm:"column:plan_expiry;index:idx_accounts_plan_expiry,priority:2"`
	CreatedAt  time.Time
}

// TableName specifies the table name for GORM
func (AccountModel) TableName() string {
	return constants.TableAccounts
}
