package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/dmolina/caselink/internal/casedesk"
	"github.com/dmolina/caselink/internal/db"
)

// AssignOptions tunes a bulk assignment submission
type AssignOptions struct {
	BatchSize    int
	SkipExisting bool
	Priority     casedesk.Priority
}

// normalize fills in wire defaults
func (o AssignOptions) normalize() AssignOptions {
	if o.BatchSize <= 0 {
		o.BatchSize = 10
	}
	if o.Priority == "" {
		o.Priority = casedesk.PriorityNormal
	}
	return o
}

// AssignmentServiceImpl implements AssignmentService: it validates and
// submits bulk assignments, drives a progress poller per job, reconciles
// results, and scopes retries to the failed subset.
type AssignmentServiceImpl struct {
	client          JobClient
	history         AssignmentHistory // optional
	pollInterval    time.Duration
	maxPollFailures int
	logger          *log.Logger // optional
}

// NewAssignmentService creates a new assignment service. history may be nil.
func NewAssignmentService(client JobClient, history AssignmentHistory, pollInterval time.Duration, maxPollFailures int) *AssignmentServiceImpl {
	return &AssignmentServiceImpl{
		client:          client,
		history:         history,
		pollInterval:    pollInterval,
		maxPollFailures: maxPollFailures,
	}
}

// SetLogger sets the logger for debug output
func (s *AssignmentServiceImpl) SetLogger(logger *log.Logger) {
	s.logger = logger
}

// AssignmentRun is the handle for one in-flight bulk assignment. The email
// list is a snapshot taken at submit time; later selection changes never
// affect it.
type AssignmentRun struct {
	JobID       string
	CaseID      string
	Emails      []casedesk.Email
	SubmittedAt time.Time

	service *AssignmentServiceImpl
	poller  *ProgressPoller
}

// StartAssignment validates, submits and begins polling one bulk assignment.
// Validation failures (empty selection, missing case) never reach the
// backend; submission is all-or-nothing.
func (s *AssignmentServiceImpl) StartAssignment(ctx context.Context, emails []casedesk.Email, caseID string, opts AssignOptions) (*AssignmentRun, error) {
	if len(emails) == 0 {
		return nil, ErrNoEmailsSelected
	}
	if strings.TrimSpace(caseID) == "" {
		return nil, ErrMissingCaseID
	}
	opts = opts.normalize()

	// Snapshot the submission order; reconciliation is positional
	snapshot := make([]casedesk.Email, len(emails))
	copy(snapshot, emails)
	ids := make([]string, len(snapshot))
	for i, e := range snapshot {
		ids[i] = e.ID
	}

	handle, err := s.client.SubmitBulkAssign(ctx, casedesk.BulkAssignRequest{
		EmailIDs:     ids,
		CaseID:       caseID,
		BatchSize:    opts.BatchSize,
		SkipExisting: opts.SkipExisting,
		Priority:     opts.Priority,
	})
	if err != nil {
		return nil, fmt.Errorf("submit assignment: %w", err)
	}

	poller := NewProgressPoller(s.client, s.pollInterval, s.maxPollFailures)
	poller.SetLogger(s.logger)
	if err := poller.Start(ctx, handle.JobID); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.Printf("assignment: job %s started for case %s (%d emails)", handle.JobID, caseID, len(snapshot))
	}
	return &AssignmentRun{
		JobID:       handle.JobID,
		CaseID:      caseID,
		Emails:      snapshot,
		SubmittedAt: time.Now(),
		service:     s,
		poller:      poller,
	}, nil
}

// Retry resubmits exactly the failed subset of a previous run as a new,
// independent job against the same target case. Prior successes are never
// retried and prior results are not merged in.
func (s *AssignmentServiceImpl) Retry(ctx context.Context, previous []AssignmentResult, caseID string, opts AssignOptions) (*AssignmentRun, error) {
	var emails []casedesk.Email
	for _, res := range previous {
		if res.Success {
			continue
		}
		emails = append(emails, res.Email)
	}
	if len(emails) == 0 {
		return nil, ErrNoFailedResults
	}
	return s.StartAssignment(ctx, emails, caseID, opts)
}

// OnProgress registers the callback for progress updates
func (r *AssignmentRun) OnProgress(cb func(ProgressSummary)) {
	r.poller.OnProgress(cb)
}

// Detach removes the progress callback while the job keeps running in the
// background. Safe to call repeatedly.
func (r *AssignmentRun) Detach() {
	r.poller.Detach()
}

// Cancel stops observing the job. The backend job itself keeps running; only
// client-side polling ends. Safe to call repeatedly.
func (r *AssignmentRun) Cancel() {
	r.poller.Stop()
}

// State returns the current observation state of the run
func (r *AssignmentRun) State() PollerState {
	return r.poller.State()
}

// Wait blocks until the job reaches a terminal state (or ctx ends) and
// returns the reconciled report. Outcomes are recorded to the local history,
// best-effort.
func (r *AssignmentRun) Wait(ctx context.Context) (*ReconcileReport, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-r.poller.Done():
	}

	job, err := r.poller.Result()
	if err != nil {
		return nil, err
	}
	report, err := ReconcileResults(r.Emails, job, r.CaseID)
	if err != nil {
		return nil, err
	}
	r.service.recordHistory(ctx, report)
	return report, nil
}

// recordHistory persists reconciled outcomes. Failures are logged only;
// history is never allowed to fail an assignment.
func (s *AssignmentServiceImpl) recordHistory(ctx context.Context, report *ReconcileReport) {
	if s.history == nil {
		return
	}
	records := make([]db.AssignmentRecord, 0, len(report.Results))
	for _, res := range report.Results {
		records = append(records, db.AssignmentRecord{
			JobID:     report.JobID,
			CaseID:    report.CaseID,
			EmailID:   res.EmailID,
			Subject:   res.Email.Subject,
			Sender:    res.Email.From,
			Success:   res.Success,
			Error:     res.Error,
			CreatedAt: res.Timestamp,
		})
	}
	if err := s.history.RecordAssignments(ctx, records); err != nil && s.logger != nil {
		s.logger.Printf("assignment: recording history for job %s failed: %v", report.JobID, err)
	}
}
