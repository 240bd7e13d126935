package expiry

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Trigger names what started an expiry cycle.
type Trigger string

const (
	TriggerScheduled Trigger = "scheduled"
	TriggerAPI       Trigger = "api"
	TriggerCLI       Trigger = "cli"
)

func (t Trigger) IsValid() bool {
	switch t {
	case TriggerScheduled, TriggerAPI, TriggerCLI:
		return true
	}
	return false
}

var (
	ErrInvalidTrigger  = errors.New("invalid expiry trigger")
	ErrRunAlreadyEnded = errors.New("expiry run already finished")
)

// Failure is one account that could not be downgraded.
type Failure struct {
	UID          int64  `json:"uid"`
	PreviousPlan string `json:"previous_plan"`
	Error        string `json:"error"`
}

// Counts summarises the downgrade batch of a run.
type Counts struct {
	Candidates int            `json:"candidates"`
	Succeeded  int            `json:"succeeded"`
	Failed     int            `json:"failed"`
	Skipped    int            `json:"skipped"`
	PerTier    map[string]int `json:"per_tier"`
}

// Run is the audit record of one expiry cycle.
type Run struct {
	id         string
	trigger    Trigger
	startedAt  time.Time
	finishedAt *time.Time
	success    bool
	message    string
	counts     Counts
	failures   []Failure
	errMsg     string
}

// NewRun starts a run record for a cycle evaluated at startedAt.
func NewRun(trigger Trigger, startedAt time.Time) (*Run, error) {
	if !trigger.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrigger, trigger)
	}
	return &Run{
		id:        uuid.NewString(),
		trigger:   trigger,
		startedAt: startedAt.UTC(),
		counts:    Counts{PerTier: map[string]int{}},
	}, nil
}

// ReconstructRun rebuilds a run from persistence.
func ReconstructRun(
	id string,
	trigger Trigger,
	startedAt time.Time,
	finishedAt *time.Time,
	success bool,
	message string,
	counts Counts,
	failures []Failure,
	errMsg string,
) (*Run, error) {
	if id == "" {
		return nil, fmt.Errorf("run id is required")
	}
	if !trigger.IsValid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTrigger, trigger)
	}
	if counts.PerTier == nil {
		counts.PerTier = map[string]int{}
	}
	return &Run{
		id:         id,
		trigger:    trigger,
		startedAt:  startedAt.UTC(),
		finishedAt: finishedAt,
		success:    success,
		message:    message,
		counts:     counts,
		failures:   failures,
		errMsg:     errMsg,
	}, nil
}

// Complete marks the run as finished with the batch outcome.
func (r *Run) Complete(at time.Time, message string, counts Counts, failures []Failure) error {
	if r.finishedAt != nil {
		return ErrRunAlreadyEnded
	}
	if counts.PerTier == nil {
		counts.PerTier = map[string]int{}
	}
	t := at.UTC()
	r.finishedAt = &t
	r.success = true
	r.message = message
	r.counts = counts
	r.failures = failures
	return nil
}

// Fail marks the run as aborted before or during the batch.
func (r *Run) Fail(at time.Time, message string, cause error) error {
	if r.finishedAt != nil {
		return ErrRunAlreadyEnded
	}
	t := at.UTC()
	r.finishedAt = &t
	r.success = false
	r.message = message
	if cause != nil {
		r.errMsg = cause.Error()
	}
	return nil
}

func (r *Run) ID() string             { return r.id }
func (r *Run) Trigger() Trigger       { return r.trigger }
func (r *Run) StartedAt() time.Time   { return r.startedAt }
func (r *Run) FinishedAt() *time.Time { return r.finishedAt }
func (r *Run) Success() bool          { return r.success }
func (r *Run) Message() string        { return r.message }
func (r *Run) Counts() Counts         { return r.counts }
func (r *Run) Failures() []Failure    { return r.failures }
func (r *Run) ErrorMessage() string   { return r.errMsg }
func (r *Run) IsFinished() bool       { return r.finishedAt != nil }
