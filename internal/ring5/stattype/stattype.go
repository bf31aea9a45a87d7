// Package stattype implements the five variant stat kinds that back every
// ingested gem5 variable: Scalar, Vector, Distribution, Histogram, and
// Configuration. Each kind accumulates raw observations, balances them
// against an expected repeat count, and reduces them to a single value per
// bucket. The reduced value is only readable once both steps have run.
package stattype

import (
	"errors"
	"fmt"
)

// Kind identifies one of the five stat variants.
type Kind string

// Stat kinds.
const (
	KindScalar        Kind = "scalar"
	KindVector        Kind = "vector"
	KindDistribution  Kind = "distribution"
	KindHistogram     Kind = "histogram"
	KindConfiguration Kind = "configuration"
)

// ErrNotReady is returned when reduced content is read before balancing and
// reduction have both completed exactly once.
var ErrNotReady = errors.New("reduced content read before balance and reduce")

// ErrAlreadyBalanced is returned when BalanceContent is invoked twice.
var ErrAlreadyBalanced = errors.New("stat already balanced")

// ErrAlreadyReduced is returned when ReduceDuplicates is invoked twice.
var ErrAlreadyReduced = errors.New("stat already reduced")

// ErrNotBalanced is returned when ReduceDuplicates runs before BalanceContent.
var ErrNotBalanced = errors.New("stat reduced before balance")

// ErrObservationOverflow is returned when more observations than repeat are
// accumulated for a Scalar, Vector, Distribution, or Histogram bucket.
var ErrObservationOverflow = errors.New("observation count exceeds repeat")

// ErrNonNumeric is returned when a numeric-expecting Stat receives a value
// that cannot be coerced to a float.
var ErrNonNumeric = errors.New("non-numeric value where numeric required")

// Stat is the common surface every variant implements. It mirrors §4.1 of
// the ingestion specification: one instance per requested variable per
// file-parse, never shared across parallel Works.
type Stat interface {
	// Kind reports which variant this instance is.
	Kind() Kind
	// SetContent appends one raw observation. The accepted value shape
	// depends on the variant (float64 for Scalar, map[string]float64 for
	// entry-bearing kinds, any string-coercible value for Configuration).
	SetContent(value any) error
	// BalanceContent pads or rejects the accumulated observation counts
	// against repeat. Idempotent calls after the first return
	// ErrAlreadyBalanced.
	BalanceContent() error
	// ReduceDuplicates collapses the accumulated observations into a
	// single value per bucket. Must run after BalanceContent.
	ReduceDuplicates() error
	// Entries returns the ordered entry-key list for entry-bearing kinds,
	// or nil for Scalar and Configuration.
	Entries() []string
	// ReducedContent returns the finalized value(s). Guarded: fails
	// unless both BalanceContent and ReduceDuplicates have run.
	ReducedContent() (any, error)
	// Warnings returns accumulated soft-warning messages (dropped
	// unknown entries, and similar non-fatal conditions) for the caller
	// to log with its own sanitized-path context.
	Warnings() []string
}

func coerceFloat(value any) (float64, error) {
	switch v := value.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int:
		return float64(v), nil
	case int64:
		return float64(v), nil
	default:
		return 0, fmt.Errorf("%w: %T", ErrNonNumeric, value)
	}
}

// balanceFloats pads a single observation list to length repeat with
// zeroes, or rejects it if it already holds more than repeat observations.
func balanceFloats(content []float64, repeat int) ([]float64, error) {
	if len(content) > repeat {
		return nil, fmt.Errorf("%w: have %d, repeat %d", ErrObservationOverflow, len(content), repeat)
	}

	balanced := make([]float64, repeat)
	copy(balanced, content)

	return balanced, nil
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}
