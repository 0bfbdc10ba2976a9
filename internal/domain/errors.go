package domain

import "errors"

// ErrNotFound is returned by repo and service functions when the requested
// journey or point of interest does not exist.
// Handlers should map this to HTTP 404.
var ErrNotFound = errors.New("not found")

// ErrValidation is returned by service functions when input fails business
// rule validation (e.g. blank journey name, restarting an imported journey).
// Handlers should map this to HTTP 422 Unprocessable Entity.
var ErrValidation = errors.New("validation error")

// ErrConflict is returned by the record store when an insert reuses an
// identifier already present in the collection, or when an optimistic update
// keeps losing to concurrent writers.
var ErrConflict = errors.New("conflict")

// ErrWriteFailed is returned by service functions when the store rejected or
// failed a write. The underlying store error stays wrapped alongside it.
var ErrWriteFailed = errors.New("write failed")

// Outcome collapses an operation error into the small set of results a caller
// can react to without inspecting error chains.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeNotFound
	OutcomeInvalid
	OutcomeConflict
	OutcomeWriteFailed
)

// OutcomeOf classifies err. A nil error is OutcomeOK; errors that match none
// of the sentinels count as write failures.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrValidation):
		return OutcomeInvalid
	case errors.Is(err, ErrConflict):
		return OutcomeConflict
	default:
		return OutcomeWriteFailed
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeConflict:
		return "conflict"
	default:
		return "write_failed"
	}
}
