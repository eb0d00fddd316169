// Package casedesk implements the wire client for the case-desk backend:
// bulk assignment submission and job status polling.
package casedesk

import "time"

// Email is the archived-email summary the client works with. The backend
// only ever sees ids; the rest is carried for display and export.
type Email struct {
	ID         string    `json:"id"`
	Subject    string    `json:"subject"`
	From       string    `json:"from"`
	ReceivedAt time.Time `json:"received_at"`
}

// Priority is the backend scheduling hint for a bulk job
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ValidPriority reports whether p is one of the wire-accepted values
func ValidPriority(p Priority) bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// BulkAssignRequest is the POST /bulk-assign payload
type BulkAssignRequest struct {
	EmailIDs     []string `json:"emailIds"`
	CaseID       string   `json:"caseId"`
	BatchSize    int      `json:"batchSize"`
	SkipExisting bool     `json:"skipExisting"`
	Priority     Priority `json:"priority"`
}

// JobHandle identifies a submitted bulk job
type JobHandle struct {
	JobID string
}

// JobStatus is the backend-reported lifecycle state of a bulk job
type JobStatus string

const (
	JobQueued    JobStatus = "queued"
	JobRunning   JobStatus = "running"
	JobCompleted JobStatus = "completed"
	JobFailed    JobStatus = "failed"
)

// Terminal reports whether no further progress updates can occur
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobProgress is present only while a job is running
type JobProgress struct {
	ProcessedItems   int     `json:"processedItems"`
	TotalItems       int     `json:"totalItems"`
	Percentage       float64 `json:"percentage"`
	CurrentOperation string  `json:"currentOperation,omitempty"`
}

// ItemResult is one per-item outcome, in submission order. The backend does
// not echo identifiers; position is the only linkage.
type ItemResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// JobResult wraps the ordered per-item outcomes of a completed job
type JobResult struct {
	Data struct {
		Results []ItemResult `json:"results"`
	} `json:"data"`
}

// Job is the GET /jobs/{id} response. Status, progress and result are owned
// exclusively by the backend; the client only ever reads them.
type Job struct {
	ID           string       `json:"id,omitempty"`
	Status       JobStatus    `json:"status"`
	Progress     *JobProgress `json:"progress,omitempty"`
	Result       *JobResult   `json:"result,omitempty"`
	ErrorMessage string       `json:"errorMessage,omitempty"`
}

// Results returns the ordered per-item outcomes, or nil when absent
func (j *Job) Results() []ItemResult {
	if j == nil || j.Result == nil {
		return nil
	}
	return j.Result.Data.Results
}
