package payment

import (
	"errors"
	"fmt"
	"time"

	"github.com/echomag/echomag/internal/domain/account"
)

// Status is the lifecycle state of a payment as recorded by the gateway flow.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusRefunded  Status = "refunded"
	StatusCancelled Status = "cancelled"
)

var ErrInvalidPayment = errors.New("invalid payment")

// Payment is a read-only view of a plan purchase. Only completed payments
// count towards revenue.
type Payment struct {
	paymentID    string
	userID       int64
	planType     account.Plan
	amount       float64
	currency     string
	status       Status
	refundAmount float64
	completedAt  *time.Time
	createdAt    time.Time
}

func ReconstructPayment(
	paymentID string,
	userID int64,
	planType account.Plan,
	amount float64,
	currency string,
	status Status,
	refundAmount float64,
	completedAt *time.Time,
	createdAt time.Time,
) (*Payment, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: payment id is required", ErrInvalidPayment)
	}
	if !planType.IsPaid() {
		return nil, fmt.Errorf("%w: plan type %q is not a paid plan", ErrInvalidPayment, planType)
	}
	var completed *time.Time
	if completedAt != nil {
		c := completedAt.UTC()
		completed = &c
	}
	return &Payment{
		paymentID:    paymentID,
		userID:       userID,
		planType:     planType,
		amount:       amount,
		currency:     currency,
		status:       status,
		refundAmount: refundAmount,
		completedAt:  completed,
		createdAt:    createdAt.UTC(),
	}, nil
}

func (p *Payment) PaymentID() string       { return p.paymentID }
func (p *Payment) UserID() int64           { return p.userID }
func (p *Payment) PlanType() account.Plan  { return p.planType }
func (p *Payment) Amount() float64         { return p.amount }
func (p *Payment) Currency() string        { return p.currency }
func (p *Payment) Status() Status          { return p.status }
func (p *Payment) RefundAmount() float64   { return p.refundAmount }
func (p *Payment) CompletedAt() *time.Time { return p.completedAt }
func (p *Payment) CreatedAt() time.Time    { return p.createdAt }
func (p *Payment) IsCompleted() bool       { return p.status == StatusCompleted }

// RevenueTime is the instant a payment is attributed to: completion when
// known, creation otherwise.
func (p *Payment) RevenueTime() time.Time {
	if p.completedAt != nil {
		return *p.completedAt
	}
	return p.createdAt
}

// NetAmount is the amount kept after partial refunds.
func (p *Payment) NetAmount() float64 {
	net := p.amount - p.refundAmount
	if net < 0 {
		return 0
	}
	return net
}
