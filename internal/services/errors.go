package services

import (
	"errors"

	"github.com/dmolina/caselink/internal/casedesk"
)

// Standard service errors for the bulk assignment pipeline
var (
	// Validation errors - caught before anything reaches the backend
	ErrNoEmailsSelected = errors.New("no emails selected")
	ErrMissingCaseID    = errors.New("missing case id")
	ErrNoFailedResults  = errors.New("no failed results to retry")

	// Job-level errors
	ErrJobFailed         = errors.New("bulk job failed")
	ErrJobNotTerminal    = errors.New("job has not reached a terminal state")
	ErrResultMismatch    = errors.New("job result count does not match submitted emails")
	ErrPollLimitExceeded = errors.New("too many consecutive poll failures")

	// Poller lifecycle errors
	ErrPollerAlreadyStarted = errors.New("poller already started")
)

// IsValidationError reports whether err should be surfaced inline and never
// sent to the backend
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNoEmailsSelected) ||
		errors.Is(err, ErrMissingCaseID) ||
		errors.Is(err, ErrNoFailedResults) ||
		errors.Is(err, casedesk.ErrInvalidRequest)
}

// IsRetryableError reports whether a whole-operation retry is reasonable
func IsRetryableError(err error) bool {
	return errors.Is(err, casedesk.ErrTransport) ||
		errors.Is(err, casedesk.ErrServer) ||
		errors.Is(err, ErrPollLimitExceeded)
}
