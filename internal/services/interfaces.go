package services

import (
	"context"

	"github.com/dmolina/caselink/internal/casedesk"
	"github.com/dmolina/caselink/internal/db"
)

// BulkSubmitter submits a bulk assignment request and returns a job handle.
// Submission is all-or-nothing at the request level.
type BulkSubmitter interface {
	SubmitBulkAssign(ctx context.Context, req casedesk.BulkAssignRequest) (*casedesk.JobHandle, error)
}

// JobFetcher reads the backend-owned state of a bulk job
type JobFetcher interface {
	GetJob(ctx context.Context, jobID string) (*casedesk.Job, error)
}

// JobClient combines submission and status reads; *casedesk.Client satisfies it
type JobClient interface {
	BulkSubmitter
	JobFetcher
}

// AssignmentHistory records reconciled outcomes locally, best-effort
type AssignmentHistory interface {
	RecordAssignments(ctx context.Context, records []db.AssignmentRecord) error
}

// AssignmentService drives the submit -> poll -> reconcile -> retry pipeline
type AssignmentService interface {
	StartAssignment(ctx context.Context, emails []casedesk.Email, caseID string, opts AssignOptions) (*AssignmentRun, error)
	Retry(ctx context.Context, previous []AssignmentResult, caseID string, opts AssignOptions) (*AssignmentRun, error)
}
