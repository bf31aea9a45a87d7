package stattype

import "fmt"

// Vector accumulates one numeric observation list per declared entry key
// and reduces each to its arithmetic mean over repeat. Unknown keys
// presented to SetContent are dropped with a warning rather than rejected.
type Vector struct {
	content        map[string][]float64
	reducedContent map[string]float64
	entries        []string
	warnings       []string
	repeat         int
	balanced       bool
	reduced        bool
}

// NewVector constructs a Vector with a fixed, caller-declared entry set.
func NewVector(repeat int, entries []string) *Vector {
	content := make(map[string][]float64, len(entries))
	for _, e := range entries {
		content[e] = nil
	}

	return &Vector{
		repeat:  repeat,
		entries: append([]string(nil), entries...),
		content: content,
	}
}

// Kind returns KindVector.
func (v *Vector) Kind() Kind { return KindVector }

// SetContent appends one observation per declared entry. The value must be
// a map[string]float64 keyed by entry; keys outside the declared set are
// dropped with a warning instead of failing the whole observation.
func (v *Vector) SetContent(value any) error {
	observation, ok := value.(map[string]float64)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNonNumeric, value)
	}

	for key, raw := range observation {
		if _, declared := v.content[key]; !declared {
			v.warnings = append(v.warnings, fmt.Sprintf("dropped unknown vector entry %q", key))
			continue
		}

		v.content[key] = append(v.content[key], raw)
	}

	return nil
}

// BalanceContent pads every entry's observation list to repeat, or rejects
// any entry holding more than repeat observations.
func (v *Vector) BalanceContent() error {
	if v.balanced {
		return ErrAlreadyBalanced
	}

	for _, entry := range v.entries {
		balanced, err := balanceFloats(v.content[entry], v.repeat)
		if err != nil {
			return fmt.Errorf("entry %q: %w", entry, err)
		}

		v.content[entry] = balanced
	}

	v.balanced = true

	return nil
}

// ReduceDuplicates computes the per-entry arithmetic mean over repeat.
func (v *Vector) ReduceDuplicates() error {
	if !v.balanced {
		return ErrNotBalanced
	}

	if v.reduced {
		return ErrAlreadyReduced
	}

	v.reducedContent = make(map[string]float64, len(v.entries))
	for _, entry := range v.entries {
		v.reducedContent[entry] = mean(v.content[entry])
	}

	v.reduced = true

	return nil
}

// Entries returns the declared entry keys in construction order.
func (v *Vector) Entries() []string {
	return append([]string(nil), v.entries...)
}

// ReducedContent returns the per-entry mean map, guarded per invariant.
func (v *Vector) ReducedContent() (any, error) {
	if !v.balanced || !v.reduced {
		return nil, ErrNotReady
	}

	return v.reducedContent, nil
}

// Warnings returns messages for any dropped unknown entries.
func (v *Vector) Warnings() []string {
	return append([]string(nil), v.warnings...)
}
