package domain

// SendResult is the outcome of a single mail submission attempt.
// ErrorDetail carries the classified failure reason when Success is false.
type SendResult struct {
	Success     bool
	ErrorDetail string
}

// Trigger is one inbound chat message interpreted as "process the next
// queued job". UpdateID is the platform's update identifier; the long-poll
// cursor is derived from it.
type Trigger struct {
	ChatID   int64
	UpdateID int
}
