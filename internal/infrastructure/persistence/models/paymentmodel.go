package models

import (
	"time"

	"github.com/echomag/echomag/internal/shared/constants"
)

// PaymentModel is the read side of the payments table.
type PaymentModel struct {
	ID           uint       `gorm:"primarykey"`
	PaymentID    string     `gorm:"column:payment_id;uniqueIndex;size:100;not null"`
	UserID       int64      `gorm:"column:user_id;index;not null"`
	Provider     string     `gorm:"size:50"`
	PlanType     string     `gorm:"column:plan_type;size:20;not null"`
	PlanDuration int        `gorm:"column:plan_duration"`
	Amount       float64    `gorm:"not null"`
	Currency     string     `gorm:"size:10"`
	Status       string     `gorm:"size:20;not null;index:idx_payments_status_completed,priority:1"`
	RefundAmount float64    `gorm:"column:refund_amount;default:0"`
	CompletedAt  *time.Time `gorm:"column:completed_at;index:idx_payments_status_completed,priority:2"`
	CreatedAt    time.Time
}

// TableName specifies the table name for GORM
func (PaymentModel) TableName() string {
	return constants.TablePayments
}
