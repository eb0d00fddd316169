package services

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/dmolina/caselink/internal/casedesk"
)

// PollerState is the client-side observation state of a bulk job
type PollerState int

const (
	PollerIdle PollerState = iota
	PollerPolling
	PollerDoneSuccess
	PollerDoneFailure
)

// String returns a human-readable state name
func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerPolling:
		return "polling"
	case PollerDoneSuccess:
		return "done(success)"
	case PollerDoneFailure:
		return "done(failure)"
	}
	return "unknown"
}

// Terminal reports whether the poller has reached a final state
func (s PollerState) Terminal() bool {
	return s == PollerDoneSuccess || s == PollerDoneFailure
}

// ProgressSummary is the observable progress of an in-flight job, derived
// strictly from the last-received status response
type ProgressSummary struct {
	Status           casedesk.JobStatus
	Completed        int
	Total            int
	Percentage       float64
	CurrentOperation string
}

// ProgressPoller repeatedly queries a job's status on a fixed interval until
// a terminal state is reached. Polls never overlap: each request completes
// before the next tick is honored. Transient poll failures are retried on the
// next tick and only surface once maxFailures consecutive requests have
// failed.
type ProgressPoller struct {
	fetcher     JobFetcher
	interval    time.Duration
	maxFailures int
	logger      *log.Logger // optional

	mu         sync.Mutex
	state      PollerState
	jobID      string
	onProgress func(ProgressSummary)
	appliedSeq uint64
	failures   int
	finalJob   *casedesk.Job
	finalErr   error

	stopCh   chan struct{}
	stopOnce sync.Once
	doneCh   chan struct{}
	doneOnce sync.Once
}

// NewProgressPoller creates a poller over fetcher. Non-positive interval and
// maxFailures fall back to 2s and 5.
func NewProgressPoller(fetcher JobFetcher, interval time.Duration, maxFailures int) *ProgressPoller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if maxFailures <= 0 {
		maxFailures = 5
	}
	return &ProgressPoller{
		fetcher:     fetcher,
		interval:    interval,
		maxFailures: maxFailures,
		state:       PollerIdle,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// SetLogger sets the logger for debug output
func (p *ProgressPoller) SetLogger(logger *log.Logger) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.logger = logger
}

// OnProgress registers the callback invoked after every applied status
// response. Replaces any previous callback.
func (p *ProgressPoller) OnProgress(cb func(ProgressSummary)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = cb
}

// Detach removes the progress callback without stopping the poll loop (the
// "background" action). Safe to call repeatedly and after terminal states.
func (p *ProgressPoller) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onProgress = nil
}

// Start begins polling jobID. It may be called exactly once per poller.
func (p *ProgressPoller) Start(ctx context.Context, jobID string) error {
	p.mu.Lock()
	if p.state != PollerIdle {
		p.mu.Unlock()
		return ErrPollerAlreadyStarted
	}
	p.state = PollerPolling
	p.jobID = jobID
	p.mu.Unlock()

	go p.loop(ctx)
	return nil
}

// Stop halts observation: no further status requests are issued. The backend
// job itself is never cancelled. Safe to call repeatedly.
func (p *ProgressPoller) Stop() {
	p.stopOnce.Do(func() { close(p.stopCh) })
}

// Done is closed once polling has ended, whether by a terminal job status,
// the failure threshold, cancellation or Stop
func (p *ProgressPoller) Done() <-chan struct{} {
	return p.doneCh
}

// State returns the current observation state
func (p *ProgressPoller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Result returns the final job once a terminal state was observed. Before
// that (including after a Stop with cancel intent) it returns
// ErrJobNotTerminal.
func (p *ProgressPoller) Result() (*casedesk.Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	switch p.state {
	case PollerDoneSuccess:
		return p.finalJob, nil
	case PollerDoneFailure:
		return nil, p.finalErr
	}
	return nil, ErrJobNotTerminal
}

func (p *ProgressPoller) loop(ctx context.Context) {
	defer p.doneOnce.Do(func() { close(p.doneCh) })

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	var seq uint64

	// First poll fires immediately; later ones on the interval
	for {
		seq++
		if terminal := p.pollOnce(ctx, seq); terminal {
			return
		}

		select {
		case <-ctx.Done():
			p.logf("poller: context cancelled for job %s", p.jobID)
			return
		case <-p.stopCh:
			p.logf("poller: stopped observing job %s", p.jobID)
			return
		case <-ticker.C:
		}
	}
}

// pollOnce issues a single status request and applies the response. It
// returns true when the poller reached a terminal state.
func (p *ProgressPoller) pollOnce(ctx context.Context, seq uint64) bool {
	job, err := p.fetcher.GetJob(ctx, p.jobID)
	if err != nil {
		return p.applyFailure(err)
	}
	return p.applyJob(job, seq)
}

// applyFailure counts a transient poll failure against the threshold
func (p *ProgressPoller) applyFailure(err error) bool {
	p.mu.Lock()
	p.failures++
	failures := p.failures
	if failures >= p.maxFailures {
		p.state = PollerDoneFailure
		p.finalErr = fmt.Errorf("%w: last error: %v", ErrPollLimitExceeded, err)
		p.mu.Unlock()
		p.logf("poller: job %s abandoned after %d consecutive poll failures: %v", p.jobID, failures, err)
		return true
	}
	p.mu.Unlock()
	p.logf("poller: transient failure %d/%d for job %s: %v", failures, p.maxFailures, p.jobID, err)
	return false
}

// applyJob applies a status response in arrival order, discarding stale
// responses that would rewind already-applied progress
func (p *ProgressPoller) applyJob(job *casedesk.Job, seq uint64) bool {
	p.mu.Lock()
	if seq <= p.appliedSeq {
		p.mu.Unlock()
		return false
	}
	p.appliedSeq = seq
	p.failures = 0

	summary := summarize(job)
	cb := p.onProgress

	terminal := false
	switch job.Status {
	case casedesk.JobCompleted:
		p.state = PollerDoneSuccess
		p.finalJob = job
		terminal = true
	case casedesk.JobFailed:
		p.state = PollerDoneFailure
		if job.ErrorMessage != "" {
			p.finalErr = fmt.Errorf("%w: %s", ErrJobFailed, job.ErrorMessage)
		} else {
			p.finalErr = ErrJobFailed
		}
		terminal = true
	}
	p.mu.Unlock()

	// Callback runs outside the lock so it may call Detach or Stop
	if cb != nil {
		cb(summary)
	}
	return terminal
}

// summarize derives the observable progress from a status response
func summarize(job *casedesk.Job) ProgressSummary {
	s := ProgressSummary{Status: job.Status}
	if job.Progress != nil {
		s.Completed = job.Progress.ProcessedItems
		s.Total = job.Progress.TotalItems
		s.Percentage = job.Progress.Percentage
		s.CurrentOperation = job.Progress.CurrentOperation
	}
	if job.Status == casedesk.JobCompleted {
		if n := len(job.Results()); n > 0 {
			s.Completed = n
			s.Total = n
		}
		s.Percentage = 100
	}
	return s
}

func (p *ProgressPoller) logf(format string, args ...interface{}) {
	p.mu.Lock()
	logger := p.logger
	p.mu.Unlock()
	if logger != nil {
		logger.Printf(format, args...)
	}
}
