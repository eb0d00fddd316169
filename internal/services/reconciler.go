package services

import (
	"fmt"
	"time"

	"github.com/dmolina/caselink/internal/casedesk"
)

// AssignmentResult is one client-constructed per-email outcome, built by
// zipping a completed job's ordered results against the submitted email list
type AssignmentResult struct {
	EmailID   string
	Email     casedesk.Email
	Success   bool
	Error     string
	CaseID    string // set only on success
	Timestamp time.Time
}

// ReconcileReport partitions a completed job's outcomes. Results holds every
// outcome in submission order; Successes and Errors are its partition, so
// len(Successes)+len(Errors) always equals the submitted count.
type ReconcileReport struct {
	JobID     string
	CaseID    string
	Results   []AssignmentResult
	Successes []AssignmentResult
	Errors    []AssignmentResult
}

// FailedEmails returns the emails of the failed outcomes, in order
func (r *ReconcileReport) FailedEmails() []casedesk.Email {
	out := make([]casedesk.Email, 0, len(r.Errors))
	for _, res := range r.Errors {
		out = append(out, res.Email)
	}
	return out
}

// ReconcileResults maps a completed job's ordered per-item results back onto
// the submitted email list. Position is the only linkage the wire contract
// provides, so a count mismatch is a contract violation and fails loudly
// instead of silently mislabeling emails.
func ReconcileResults(submitted []casedesk.Email, job *casedesk.Job, caseID string) (*ReconcileReport, error) {
	if job == nil || !job.Status.Terminal() {
		return nil, ErrJobNotTerminal
	}
	if job.Status == casedesk.JobFailed {
		// No partial result of a failed job is trustworthy
		if job.ErrorMessage != "" {
			return nil, fmt.Errorf("%w: %s", ErrJobFailed, job.ErrorMessage)
		}
		return nil, ErrJobFailed
	}

	results := job.Results()
	if len(results) != len(submitted) {
		return nil, fmt.Errorf("%w: got %d results for %d emails", ErrResultMismatch, len(results), len(submitted))
	}

	now := time.Now()
	report := &ReconcileReport{
		JobID:   job.ID,
		CaseID:  caseID,
		Results: make([]AssignmentResult, 0, len(submitted)),
	}
	for i, email := range submitted {
		res := AssignmentResult{
			EmailID:   email.ID,
			Email:     email,
			Success:   results[i].Success,
			Error:     results[i].Error,
			Timestamp: now,
		}
		if res.Success {
			res.CaseID = caseID
			report.Successes = append(report.Successes, res)
		} else {
			report.Errors = append(report.Errors, res)
		}
		report.Results = append(report.Results, res)
	}
	return report, nil
}
