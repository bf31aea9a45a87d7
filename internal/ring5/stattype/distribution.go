package stattype

import (
	"errors"
	"fmt"
	"strconv"
)

// SafetyMaxBuckets caps the number of buckets a Distribution may declare at
// construction, guarding against a pathological [minimum, maximum] range.
const SafetyMaxBuckets = 100_000

// UnderflowsKey and OverflowsKey are the two mandatory sentinel buckets
// every Distribution observation must carry.
const (
	UnderflowsKey = "underflows"
	OverflowsKey  = "overflows"
)

// ErrBucketCapExceeded is returned when a Distribution's declared range
// would produce more buckets than SafetyMaxBuckets.
var ErrBucketCapExceeded = errors.New("distribution bucket count exceeds safety cap")

// ErrDistributionUnknownBucket is returned for an observation key outside
// the declared range and not listed in extra statistics.
var ErrDistributionUnknownBucket = errors.New("distribution bucket outside declared range")

// ErrDistributionMissingSentinel is returned when an observation omits the
// underflows/overflows sentinels or any integer key in [minimum, maximum].
var ErrDistributionMissingSentinel = errors.New("distribution observation missing mandatory keys")

// Distribution accumulates one numeric observation list per bucket over a
// fixed integer range [minimum, maximum], plus the underflows/overflows
// sentinels and any declared extra statistics, and reduces each to its
// arithmetic mean over repeat.
type Distribution struct {
	content        map[string][]float64
	reducedContent map[string]float64
	mandatory      map[string]struct{}
	entries        []string
	minimum        int
	maximum        int
	repeat         int
	balanced       bool
	reduced        bool
}

// NewDistribution constructs a Distribution over the inclusive integer
// range [minimum, maximum] plus any extraStatistics keys. Returns
// ErrBucketCapExceeded if the resulting bucket count is unsafe.
func NewDistribution(repeat, minimum, maximum int, extraStatistics []string) (*Distribution, error) {
	bucketCount := (maximum - minimum + 1) + 2 + len(extraStatistics)
	if bucketCount > SafetyMaxBuckets {
		return nil, fmt.Errorf("%w: %d", ErrBucketCapExceeded, bucketCount)
	}

	entries := make([]string, 0, bucketCount)
	mandatory := make(map[string]struct{}, bucketCount-len(extraStatistics))

	entries = append(entries, UnderflowsKey)
	mandatory[UnderflowsKey] = struct{}{}

	for i := minimum; i <= maximum; i++ {
		key := strconv.Itoa(i)
		entries = append(entries, key)
		mandatory[key] = struct{}{}
	}

	entries = append(entries, OverflowsKey)
	mandatory[OverflowsKey] = struct{}{}

	entries = append(entries, extraStatistics...)

	content := make(map[string][]float64, len(entries))
	for _, e := range entries {
		content[e] = nil
	}

	return &Distribution{
		repeat:    repeat,
		minimum:   minimum,
		maximum:   maximum,
		entries:   entries,
		mandatory: mandatory,
		content:   content,
	}, nil
}

// Kind returns KindDistribution.
func (d *Distribution) Kind() Kind { return KindDistribution }

// SetContent appends one observation across the full declared bucket set.
// Every mandatory key must be present; any key outside the declared range
// is a hard error.
func (d *Distribution) SetContent(value any) error {
	observation, ok := value.(map[string]float64)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNonNumeric, value)
	}

	for key := range observation {
		if _, declared := d.content[key]; !declared {
			return fmt.Errorf("%w: %q", ErrDistributionUnknownBucket, key)
		}
	}

	for key := range d.mandatory {
		if _, present := observation[key]; !present {
			return fmt.Errorf("%w: %q", ErrDistributionMissingSentinel, key)
		}
	}

	for key, raw := range observation {
		d.content[key] = append(d.content[key], raw)
	}

	return nil
}

// BalanceContent pads every bucket's observation list to repeat, or rejects
// any bucket holding more than repeat observations.
func (d *Distribution) BalanceContent() error {
	if d.balanced {
		return ErrAlreadyBalanced
	}

	for _, entry := range d.entries {
		balanced, err := balanceFloats(d.content[entry], d.repeat)
		if err != nil {
			return fmt.Errorf("bucket %q: %w", entry, err)
		}

		d.content[entry] = balanced
	}

	d.balanced = true

	return nil
}

// ReduceDuplicates computes the per-bucket arithmetic mean over repeat.
func (d *Distribution) ReduceDuplicates() error {
	if !d.balanced {
		return ErrNotBalanced
	}

	if d.reduced {
		return ErrAlreadyReduced
	}

	d.reducedContent = make(map[string]float64, len(d.entries))
	for _, entry := range d.entries {
		d.reducedContent[entry] = mean(d.content[entry])
	}

	d.reduced = true

	return nil
}

// Entries returns the declared bucket order: underflows, min..max,
// overflows, then extra statistics.
func (d *Distribution) Entries() []string {
	return append([]string(nil), d.entries...)
}

// ReducedContent returns the per-bucket mean map, guarded per invariant.
func (d *Distribution) ReducedContent() (any, error) {
	if !d.balanced || !d.reduced {
		return nil, ErrNotReady
	}

	return d.reducedContent, nil
}

// Warnings returns nil: Distribution has no soft-warning path, its bucket
// invariants are all hard errors.
func (d *Distribution) Warnings() []string { return nil }
