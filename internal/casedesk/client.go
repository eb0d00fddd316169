package casedesk

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Error taxonomy for the wire client. Callers classify with errors.Is.
var (
	// ErrInvalidRequest marks a request the backend rejected as malformed (4xx)
	ErrInvalidRequest = errors.New("invalid request")
	// ErrServer marks a backend-side failure (5xx)
	ErrServer = errors.New("server error")
	// ErrTransport marks a network-level failure before any response arrived
	ErrTransport = errors.New("transport error")
)

// apiError is the { success: false, error } body the backend returns on 4xx/5xx
type apiError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Client talks to the case-desk bulk assignment API
type Client struct {
	http   *resty.Client
	logger *log.Logger // optional
}

// Options configures a Client
type Options struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

// NewClient creates a case-desk API client. Submission is all-or-nothing at
// the request level, so the client carries no automatic retries; the poll
// loop owns its own retry cadence.
func NewClient(opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if opts.APIKey != "" {
		http.SetHeader("Authorization", "Bearer "+opts.APIKey)
	}

	return &Client{http: http}, nil
}

// SetLogger sets the logger for debug output
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// SubmitBulkAssign submits a bulk assignment and returns the job handle. No
// partial submission happens on failure: either the backend accepted the
// whole batch or nothing was enqueued.
func (c *Client) SubmitBulkAssign(ctx context.Context, req BulkAssignRequest) (*JobHandle, error) {
	if len(req.EmailIDs) == 0 {
		return nil, fmt.Errorf("%w: no email ids", ErrInvalidRequest)
	}
	if strings.TrimSpace(req.CaseID) == "" {
		return nil, fmt.Errorf("%w: missing case id", ErrInvalidRequest)
	}
	if req.Priority == "" {
		req.Priority = PriorityNormal
	}
	if !ValidPriority(req.Priority) {
		return nil, fmt.Errorf("%w: unknown priority %q", ErrInvalidRequest, req.Priority)
	}

	var result struct {
		Success bool `json:"success"`
		Job     struct {
			ID string `json:"id"`
		} `json:"job"`
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Request-ID", uuid.New().String()).
		SetBody(req).
		SetResult(&result).
		SetError(&apiError{}).
		Post("/bulk-assign")
	if err != nil {
		return nil, fmt.Errorf("%w: submit bulk assign: %v", ErrTransport, err)
	}
	if err := classifyResponse(resp); err != nil {
		return nil, err
	}
	if result.Job.ID == "" {
		return nil, fmt.Errorf("%w: response carried no job id", ErrServer)
	}

	if c.logger != nil {
		c.logger.Printf("casedesk: submitted %d email(s) to case %s as job %s", len(req.EmailIDs), req.CaseID, result.Job.ID)
	}
	return &JobHandle{JobID: result.Job.ID}, nil
}

// GetJob fetches the current status of a bulk job
func (c *Client) GetJob(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, fmt.Errorf("%w: empty job id", ErrInvalidRequest)
	}

	var job Job
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&job).
		SetError(&apiError{}).
		Get(fmt.Sprintf("/jobs/%s", jobID))
	if err != nil {
		return nil, fmt.Errorf("%w: get job %s: %v", ErrTransport, jobID, err)
	}
	if err := classifyResponse(resp); err != nil {
		return nil, err
	}

	job.ID = jobID
	return &job, nil
}

// classifyResponse maps HTTP status codes onto the client error taxonomy
func classifyResponse(resp *resty.Response) error {
	code := resp.StatusCode()
	if code < 400 {
		return nil
	}

	msg := resp.Status()
	if apiErr, ok := resp.Error().(*apiError); ok && apiErr != nil && apiErr.Error != "" {
		msg = apiErr.Error
	}
	if code >= 500 {
		return fmt.Errorf("%w: %s (status %d)", ErrServer, msg, code)
	}
	return fmt.Errorf("%w: %s (status %d)", ErrInvalidRequest, msg, code)
}
