package mongostore

import (
	"fmt"
	"time"

	"github.com/echomag/echomag/internal/domain/account"
	"github.com/echomag/echomag/internal/domain/expiry"
	"github.com/echomag/echomag/internal/domain/payment"
)

type accountDocument struct {
	UID        int64      `bson:"uid"`
	Username   string     `bson:"username,omitempty"`
	Email      string     `bson:"email,omitempty"`
	UserType   string     `bson:"userType,omitempty"`
	Plan       string     `bson:"plan"`
	PlanStart  *time.Time `bson:"planStart"`
	PlanExpiry *time.Time `bson:"planExpiry"`
}

func (d *accountDocument) toEntity() (*account.Account, error) {
	return account.ReconstructAccount(
		d.UID,
		d.Username,
		d.Email,
		account.UserType(d.UserType),
		account.Plan(d.Plan),
		d.PlanStart,
		d.PlanExpiry,
	)
}

type paymentDocument struct {
	PaymentID    string     `bson:"paymentId"`
	UserID       int64      `bson:"userId"`
	PlanType     string     `bson:"planType"`
	Amount       float64    `bson:"amount"`
	Currency     string     `bson:"currency,omitempty"`
	Status       string     `bson:"status"`
	RefundAmount float64    `bson:"refundAmount,omitempty"`
	CompletedAt  *time.Time `bson:"completedAt"`
	CreatedAt    time.Time  `bson:"createdAt"`
}

func (d *paymentDocument) toEntity() (*payment.Payment, error) {
	return payment.ReconstructPayment(
		d.PaymentID,
		d.UserID,
		account.Plan(d.PlanType),
		d.Amount,
		d.Currency,
		payment.Status(d.Status),
		d.RefundAmount,
		d.CompletedAt,
		d.CreatedAt,
	)
}

type failureDocument struct {
	UID          int64  `bson:"uid"`
	PreviousPlan string `bson:"previousPlan"`
	Error        string `bson:"error"`
}

type runDocument struct {
	RunID      string            `bson:"runId"`
	Trigger    string            `bson:"trigger"`
	StartedAt  time.Time         `bson:"startedAt"`
	FinishedAt *time.Time        `bson:"finishedAt,omitempty"`
	Success    bool              `bson:"success"`
	Message    string            `bson:"message"`
	Candidates int               `bson:"candidates"`
	Succeeded  int               `bson:"succeeded"`
	Failed     int               `bson:"failed"`
	Skipped    int               `bson:"skipped"`
	PerTier    map[string]int    `bson:"perTier"`
	Failures   []failureDocument `bson:"failures"`
	Error      string            `bson:"error,omitempty"`
}

func newRunDocument(run *expiry.Run) *runDocument {
	counts := run.Counts()
	failures := make([]failureDocument, 0, len(run.Failures()))
	for _, f := range run.Failures() {
		failures = append(failures, failureDocument{UID: f.UID, PreviousPlan: f.PreviousPlan, Error: f.Error})
	}

	return &runDocument{
		RunID:      run.ID(),
		Trigger:    string(run.Trigger()),
		StartedAt:  run.StartedAt(),
		FinishedAt: run.FinishedAt(),
		Success:    run.Success(),
		Message:    run.Message(),
		Candidates: counts.Candidates,
		Succeeded:  counts.Succeeded,
		Failed:     counts.Failed,
		Skipped:    counts.Skipped,
		PerTier:    counts.PerTier,
		Failures:   failures,
		Error:      run.ErrorMessage(),
	}
}

func (d *runDocument) toEntity() (*expiry.Run, error) {
	failures := make([]expiry.Failure, 0, len(d.Failures))
	for _, f := range d.Failures {
		failures = append(failures, expiry.Failure{UID: f.UID, PreviousPlan: f.PreviousPlan, Error: f.Error})
	}

	run, err := expiry.ReconstructRun(
		d.RunID,
		expiry.Trigger(d.Trigger),
		d.StartedAt,
		d.FinishedAt,
		d.Success,
		d.Message,
		expiry.Counts{
			Candidates: d.Candidates,
			Succeeded:  d.Succeeded,
			Failed:     d.Failed,
			Skipped:    d.Skipped,
			PerTier:    d.PerTier,
		},
		failures,
		d.Error,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to reconstruct expiry run %s: %w", d.RunID, err)
	}
	return run, nil
}
