package stattype

import (
	"errors"
	"fmt"
)

// ErrUnknownKind is returned when a request names a kind with no
// registered constructor.
var ErrUnknownKind = errors.New("unknown stat kind")

// ErrDuplicateVariable is returned when a request list declares the same
// variable name twice.
var ErrDuplicateVariable = errors.New("duplicate variable in request list")

// ErrMissingParameter is returned when a kind's required parameters are
// absent from the request.
var ErrMissingParameter = errors.New("missing required parameter")

// ErrDuplicateKind is returned when Register is called twice for the same
// kind.
var ErrDuplicateKind = errors.New("duplicate kind registration")

// Params is the kind-specific parameter bag carried by a Request. Only the
// fields relevant to the request's Kind are consulted by the constructor.
type Params struct {
	Entries         []string
	ExtraStatistics []string
	ParsedIDs       []string
	OnEmptyDefault  string
	Minimum         int
	Maximum         int
	Bins            int
	MaxRange        float64
	HasRange        bool
}

// Request describes one variable the caller wants extracted. Name is
// either a concrete variable name or, when IsRegex is true, a pattern to
// resolve against a Scanned Variable catalog.
type Request struct {
	Name           string
	Kind           Kind
	Params         Params
	Repeat         int
	StatisticsOnly bool
	IsRegex        bool
}

// Constructor builds a Stat instance for one Kind given a repeat count and
// kind-specific parameters.
type Constructor func(repeat int, params Params) (Stat, error)

// Registry is a process-wide, immutable-after-construction mapping from
// kind name to constructor. Population is explicit rather than driven by
// import side effects: NewRegistry registers every built-in kind once.
type Registry struct {
	constructors map[Kind]Constructor
	order        []Kind
}

// NewRegistry builds a Registry with the five built-in kinds registered.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[Kind]Constructor, 5)}

	r.mustRegister(KindScalar, scalarConstructor)
	r.mustRegister(KindVector, vectorConstructor)
	r.mustRegister(KindDistribution, distributionConstructor)
	r.mustRegister(KindHistogram, histogramConstructor)
	r.mustRegister(KindConfiguration, configurationConstructor)

	return r
}

// Register adds a constructor for a new kind. Returns an error if the kind
// is already registered.
func (r *Registry) Register(kind Kind, ctor Constructor) error {
	if _, exists := r.constructors[kind]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateKind, kind)
	}

	r.constructors[kind] = ctor
	r.order = append(r.order, kind)

	return nil
}

func (r *Registry) mustRegister(kind Kind, ctor Constructor) {
	if err := r.Register(kind, ctor); err != nil {
		panic(err)
	}
}

// Kinds returns every registered kind in registration order.
func (r *Registry) Kinds() []Kind {
	return append([]Kind(nil), r.order...)
}

// Construct looks up the constructor for kind and invokes it.
func (r *Registry) Construct(kind Kind, repeat int, params Params) (Stat, error) {
	ctor, ok := r.constructors[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}

	return ctor(repeat, params)
}

// NewStat translates a Request into a Stat instance. When the request
// carries ParsedIDs (from regex expansion, §4.6), repeat is overridden to
// len(ParsedIDs) so spatial aggregation (§4.1) divides by the same count
// temporal reduction later uses.
func (r *Registry) NewStat(req Request) (Stat, error) {
	repeat := req.Repeat
	if len(req.Params.ParsedIDs) > 0 {
		repeat = len(req.Params.ParsedIDs)
	}

	return r.Construct(req.Kind, repeat, req.Params)
}

// NewStatByName builds one Stat per request plus one alias entry per
// ParsedIDs member pointing at the same shared instance, as required by
// the Strategy's work-item construction (§4.8) and the Line Parser's
// aggregated-match handling (§4.1). The returned map's keys are every name
// the Line Parser should route observations through.
func (r *Registry) NewStatByName(requests []Request) (map[string]Stat, []string, error) {
	statByName := make(map[string]Stat, len(requests))
	varNames := make([]string, 0, len(requests))
	seen := make(map[string]struct{}, len(requests))

	for _, req := range requests {
		if _, dup := seen[req.Name]; dup {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateVariable, req.Name)
		}

		seen[req.Name] = struct{}{}

		stat, err := r.NewStat(req)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", req.Name, err)
		}

		statByName[req.Name] = stat
		varNames = append(varNames, req.Name)

		for _, alias := range req.Params.ParsedIDs {
			statByName[alias] = stat
		}
	}

	return statByName, varNames, nil
}

func scalarConstructor(repeat int, _ Params) (Stat, error) {
	return NewScalar(repeat), nil
}

func vectorConstructor(repeat int, params Params) (Stat, error) {
	if len(params.Entries) == 0 {
		return nil, fmt.Errorf("%w: entries", ErrMissingParameter)
	}

	return NewVector(repeat, params.Entries), nil
}

func distributionConstructor(repeat int, params Params) (Stat, error) {
	if !params.HasRange {
		return nil, fmt.Errorf("%w: minimum/maximum", ErrMissingParameter)
	}

	return NewDistribution(repeat, params.Minimum, params.Maximum, params.ExtraStatistics)
}

func histogramConstructor(repeat int, params Params) (Stat, error) {
	return NewHistogram(repeat, params.Entries, params.Bins, params.MaxRange), nil
}

func configurationConstructor(_ int, params Params) (Stat, error) {
	return NewConfiguration(params.OnEmptyDefault), nil
}
