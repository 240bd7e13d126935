package dto

import (
	"github.com/echomag/echomag/internal/domain/expiry"
)

// ToExpiryRunDTO converts a run record to its API shape.
func ToExpiryRunDTO(run *expiry.Run) *ExpiryRunDTO {
	if run == nil {
		return nil
	}

	counts := run.Counts()
	perTier := make(map[string]int, len(counts.PerTier))
	for tier, n := range counts.PerTier {
		perTier[tier] = n
	}

	var failures []FailedAccountDTO
	for _, f := range run.Failures() {
		failures = append(failures, FailedAccountDTO{
			UID:          f.UID,
			PreviousPlan: f.PreviousPlan,
			Error:        f.Error,
		})
	}

	return &ExpiryRunDTO{
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
		PerTier:    perTier,
		Failures:   failures,
		Error:      run.ErrorMessage(),
	}
}

// ToExpiryRunDTOs converts a slice of run records.
func ToExpiryRunDTOs(runs []*expiry.Run) []*ExpiryRunDTO {
	out := make([]*ExpiryRunDTO, 0, len(runs))
	for _, r := range runs {
		out = append(out, ToExpiryRunDTO(r))
	}
	return out
}

// ToFailures converts failed account rows to run failure records.
func ToFailures(failed []FailedAccountDTO) []expiry.Failure {
	out := make([]expiry.Failure, 0, len(failed))
	for _, f := range failed {
		out = append(out, expiry.Failure{UID: f.UID, PreviousPlan: f.PreviousPlan, Error: f.Error})
	}
	return out
}
