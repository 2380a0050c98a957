package pipeline

import "fmt"

// ExtractionError means the source PDF yielded no usable text. The deal
// is aborted and intentionally not marked processed, so the next cycle
// retries it.
type ExtractionError struct {
	DealID string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for deal %s: %v", e.DealID, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// StoreError means a tabular-store write failed. By the time it is
// returned, the deal's Final Data Table row has already been overwritten
// with a visible processing-error marker.
type StoreError struct {
	DealID string
	Sheet  string
	Err    error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store write failed for deal %s on sheet %s: %v", e.DealID, e.Sheet, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
