package extract

import "gcpt/internal/models"

// Status tags a strategy's outcome.
type Status int

// Strategy outcomes.
const (
	StatusSuccess Status = iota
	StatusPartial
	StatusFailed
)

// String returns a readable status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusPartial:
		return "partial"
	case StatusFailed:
		return "failed"
	}

	return "unknown"
}

// Result is a strategy's tagged outcome: the raw records it gathered
// (possibly none) and how the attempt ended. Err carries the underlying
// cause for failed or partial outcomes; it is diagnostic only and is never
// re-raised by the coordinator.
type Result struct {
	Records []models.RawRecord
	Status  Status
	Err     error
}

// Strategy is one mechanism for obtaining raw records from the upstream
// source. Extract is called with no prior state and must contain every
// transport or parse failure inside its Result.
type Strategy interface {
	// Name returns the strategy identifier used in logs and state reports.
	Name() string

	// Extract attempts to produce a batch of raw records.
	Extract() Result
}

func failed(err error) Result {
	return Result{Status: StatusFailed, Err: err}
}
