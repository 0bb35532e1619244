package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyCandidateSet means there is no pending task at all.
	ErrEmptyCandidateSet = errors.New("no pending tasks")
	// ErrEmptyCandidates means the remote reranker was handed an empty shortlist.
	ErrEmptyCandidates = errors.New("no candidates to rerank")
	// ErrNoValidJSON means the model reply contained no parseable JSON object.
	ErrNoValidJSON = errors.New("model did not return valid JSON")
	// ErrMalformedChosen means chosen.chosenEventId or chosen.reason is missing or invalid.
	ErrMalformedChosen = errors.New("invalid chosen JSON")
	// ErrUnknownChosenID means the model chose a task that was not sent to it.
	ErrUnknownChosenID = errors.New("chosen id not among candidates")
	// ErrMissingCredential means no API key is configured for the remote path.
	ErrMissingCredential = errors.New("missing API key")
	// ErrEmptyCompletion means the completion had no usable text.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrTaskNotFound means no stored task has the requested identifier.
	ErrTaskNotFound = errors.New("task not found")
)

// TransportError wraps network and timeout failures of the remote call.
type TransportError struct {
	Timeout bool
	Err     error
}

func (e *TransportError) Error() string {
	if e.Timeout {
		return fmt.Sprintf("transport timeout: %v", e.Err)
	}
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// UpstreamError is a non-success status reported by the remote capability.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream status %d: %s", e.StatusCode, e.Body)
}
