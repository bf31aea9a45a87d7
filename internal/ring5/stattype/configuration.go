package stattype

import "fmt"

// Configuration accumulates an ordered list of string observations and
// reduces to the first one observed, or a default when none were seen.
// Unlike the numeric kinds, Configuration never rejects an observation
// count in excess of repeat: the source behavior this model unifies keeps
// only the first value regardless of how many times the variable appears.
type Configuration struct {
	onEmptyDefault string
	reducedContent string
	content        []string
	balanced       bool
	reduced        bool
}

// NewConfiguration constructs a Configuration falling back to
// onEmptyDefault when no value is ever observed.
func NewConfiguration(onEmptyDefault string) *Configuration {
	return &Configuration{onEmptyDefault: onEmptyDefault}
}

// Kind returns KindConfiguration.
func (c *Configuration) Kind() Kind { return KindConfiguration }

// SetContent appends one string-coerced observation.
func (c *Configuration) SetContent(value any) error {
	switch v := value.(type) {
	case string:
		c.content = append(c.content, v)
	case fmt.Stringer:
		c.content = append(c.content, v.String())
	default:
		c.content = append(c.content, fmt.Sprint(value))
	}

	return nil
}

// BalanceContent marks the Stat balanced. Configuration has no repeat
// dimension to pad or enforce.
func (c *Configuration) BalanceContent() error {
	if c.balanced {
		return ErrAlreadyBalanced
	}

	c.balanced = true

	return nil
}

// ReduceDuplicates keeps the first observed value, or the configured
// default when none were observed.
func (c *Configuration) ReduceDuplicates() error {
	if !c.balanced {
		return ErrNotBalanced
	}

	if c.reduced {
		return ErrAlreadyReduced
	}

	if len(c.content) > 0 {
		c.reducedContent = c.content[0]
	} else {
		c.reducedContent = c.onEmptyDefault
	}

	c.reduced = true

	return nil
}

// Entries returns nil: Configuration has no entry dimension.
func (c *Configuration) Entries() []string { return nil }

// ReducedContent returns the first observed value (or default), guarded
// per invariant.
func (c *Configuration) ReducedContent() (any, error) {
	if !c.balanced || !c.reduced {
		return nil, ErrNotReady
	}

	return c.reducedContent, nil
}

// Warnings returns nil: Configuration has no soft-warning path.
func (c *Configuration) Warnings() []string { return nil }
