package domain

import "errors"

// Sentinel errors used throughout the application. The trigger-handling
// boundary (webhook handler or poll loop) is the only place they are
// allowed to stop propagating.
var (
	// ErrQueueUnavailable wraps every spreadsheet backend failure:
	// unreachable service, rejected credentials, failed structural delete.
	ErrQueueUnavailable = errors.New("queue unavailable")
)
