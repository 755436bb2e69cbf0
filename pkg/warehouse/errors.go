package warehouse

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrLimitExceeded is wrapped by every *LimitError.
	ErrLimitExceeded = errors.New("resource limit exceeded")

	// ErrRegistryConsumed is returned when a registry is dispatched twice.
	ErrRegistryConsumed = errors.New("collector registry already dispatched")

	// ErrCollectorPanic marks a collector failure caused by a recovered panic.
	ErrCollectorPanic = errors.New("collector panicked")

	// ErrDuplicateCollector is returned when a collector name is registered twice.
	ErrDuplicateCollector = errors.New("duplicate collector name")

	// ErrInvalidDescriptor is returned for descriptors without a name or interests.
	ErrInvalidDescriptor = errors.New("invalid collector descriptor")

	// ErrMalformedToken describes a raw token that could not be canonicalized.
	ErrMalformedToken = errors.New("malformed token")
)

// LimitError reports which resource limit a document exceeded.
type LimitError struct {
	// Limit names the limit ("tokens", "bytes").
	Limit string

	// Max is the configured maximum.
	Max int64

	// Actual is the observed value (a lower bound when counting stopped early).
	Actual int64
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("%s limit exceeded: %d > %d", e.Limit, e.Actual, e.Max)
}

func (e *LimitError) Unwrap() error {
	return ErrLimitExceeded
}

// Phase identifies where a collector failed.
type Phase string

// Collector phases.
const (
	PhaseToken    Phase = "token"
	PhaseFinalize Phase = "finalize"
)

// CollectorError records a collector failure. It is stored on Result.Err;
// it never aborts a dispatch.
type CollectorError struct {
	Collector string
	Phase     Phase

	// Token is the id being dispatched, or NoToken during finalize.
	Token TokenID

	Err error
}

func (e *CollectorError) Error() string {
	if e.Phase == PhaseToken {
		return fmt.Sprintf("collector %q failed on token %d: %v", e.Collector, e.Token, e.Err)
	}
	return fmt.Sprintf("collector %q failed during %s: %v", e.Collector, e.Phase, e.Err)
}

func (e *CollectorError) Unwrap() error {
	return e.Err
}
