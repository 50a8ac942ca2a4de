package review

import "fmt"

// UpstreamError means the model provider errored or returned a non-success
// status. The core never retries these; the batch layer skips forward.
type UpstreamError struct {
	Provider string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s returned status %d: %v", e.Provider, e.Status, e.Err)
	}
	return fmt.Sprintf("%s request failed: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// ParseError means the model response was not valid review JSON even after
// fence stripping. Excerpt carries a truncated slice of the raw output for
// debugging; the partial response is discarded, never saved.
type ParseError struct {
	Excerpt string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable review response (%v): %s", e.Err, e.Excerpt)
}

func (e *ParseError) Unwrap() error { return e.Err }
