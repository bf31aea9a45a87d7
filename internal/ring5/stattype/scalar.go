package stattype

// Scalar accumulates a single ordered list of numeric observations and
// reduces them to their arithmetic mean over repeat.
type Scalar struct {
	content        []float64
	reducedContent float64
	repeat         int
	balanced       bool
	reduced        bool
}

// NewScalar constructs a Scalar expecting repeat observations per file.
func NewScalar(repeat int) *Scalar {
	return &Scalar{repeat: repeat}
}

// Kind returns KindScalar.
func (s *Scalar) Kind() Kind { return KindScalar }

// SetContent appends one numeric observation.
func (s *Scalar) SetContent(value any) error {
	v, err := coerceFloat(value)
	if err != nil {
		return err
	}

	s.content = append(s.content, v)

	return nil
}

// BalanceContent pads content to repeat with zeroes, or rejects an excess.
func (s *Scalar) BalanceContent() error {
	if s.balanced {
		return ErrAlreadyBalanced
	}

	balanced, err := balanceFloats(s.content, s.repeat)
	if err != nil {
		return err
	}

	s.content = balanced
	s.balanced = true

	return nil
}

// ReduceDuplicates computes the arithmetic mean over repeat observations.
func (s *Scalar) ReduceDuplicates() error {
	if !s.balanced {
		return ErrNotBalanced
	}

	if s.reduced {
		return ErrAlreadyReduced
	}

	s.reducedContent = mean(s.content)
	s.reduced = true

	return nil
}

// Entries returns nil: Scalar has no entry dimension.
func (s *Scalar) Entries() []string { return nil }

// ReducedContent returns the mean, guarded per the read invariant.
func (s *Scalar) ReducedContent() (any, error) {
	if !s.balanced || !s.reduced {
		return nil, ErrNotReady
	}

	return s.reducedContent, nil
}

// Warnings returns nil: Scalar never produces soft warnings.
func (s *Scalar) Warnings() []string { return nil }
