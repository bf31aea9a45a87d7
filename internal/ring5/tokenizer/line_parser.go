package tokenizer

import (
	"fmt"
	"strconv"

	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

const summarySuffix = "__get_summary"

// LineParser consumes a Record stream for one file and feeds observations
// into a caller-owned Stat-by-name map. It buffers entry-style records per
// base and flushes each base's accumulated entry map at Finish, matching
// §4.3's "hand buffered base to the Stat via set_content(entry_map) at
// end-of-file" contract.
type LineParser struct {
	statByName    map[string]stattype.Stat
	requestedKind map[string]stattype.Kind
	buffer        map[string]map[string]float64
	warnings      []string
}

// NewLineParser builds a LineParser over statByName (including parsed_ids
// aliases) and requestedKind, the declared Kind for every base name in
// statByName, used to reconcile the tokenizer's own kind-tag.
func NewLineParser(statByName map[string]stattype.Stat, requestedKind map[string]stattype.Kind) *LineParser {
	return &LineParser{
		statByName:    statByName,
		requestedKind: requestedKind,
		buffer:        make(map[string]map[string]float64),
	}
}

// Feed processes one record. Unknown kind-tags are a hard error; every
// other form of non-match (base not requested, tag not reconcilable with
// the requested kind) is skipped silently per §4.3.
func (p *LineParser) Feed(record Record) error {
	switch record.KindTag {
	case "configuration":
		return p.feedConfiguration(record)
	case "summary":
		return p.feedSummary(record)
	case "scalar", "vector", "histogram", "distribution":
		return p.feedTyped(record)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownKindTag, record.KindTag)
	}
}

// Finish hands every buffered base's accumulated entry map to its Stat.
// Stats with no buffered base (never seen in the file) are left untouched;
// BalanceContent will later pad them.
func (p *LineParser) Finish() error {
	for base, entries := range p.buffer {
		stat, ok := p.statByName[base]
		if !ok {
			continue
		}

		if err := stat.SetContent(entries); err != nil {
			return fmt.Errorf("%s: %w", base, err)
		}
	}

	return nil
}

// Warnings returns every soft-warning message accumulated while feeding
// records (distinct from a Stat's own Warnings(), which the caller should
// also collect after Finish).
func (p *LineParser) Warnings() []string {
	return append([]string(nil), p.warnings...)
}

func (p *LineParser) feedConfiguration(record Record) error {
	stat, ok := p.statByName[record.Base()]
	if !ok {
		return nil
	}

	if stat.Kind() != stattype.KindConfiguration {
		return nil
	}

	return stat.SetContent(record.Value)
}

func (p *LineParser) feedSummary(record Record) error {
	if entry, isEntryStyle := record.Entry(); isEntryStyle {
		return p.bufferEntry(record.Base(), entry, record.Value, "summary")
	}

	companion := record.QualifiedName + summarySuffix

	stat, ok := p.statByName[companion]
	if !ok || stat.Kind() != stattype.KindScalar {
		return nil
	}

	value, err := parseFloat(record.Value)
	if err != nil {
		return err
	}

	return stat.SetContent(value)
}

func (p *LineParser) feedTyped(record Record) error {
	entry, isEntryStyle := record.Entry()
	base := record.Base()

	if !isEntryStyle {
		return p.feedBare(base, record)
	}

	return p.bufferEntry(base, entry, record.Value, record.KindTag)
}

func (p *LineParser) feedBare(base string, record Record) error {
	requestedKind, requested := p.requestedKind[base]
	if !requested {
		return nil
	}

	if requestedKind != stattype.KindScalar || record.KindTag != "scalar" {
		return nil
	}

	stat, ok := p.statByName[base]
	if !ok {
		return nil
	}

	value, err := parseFloat(record.Value)
	if err != nil {
		return err
	}

	return stat.SetContent(value)
}

func (p *LineParser) bufferEntry(base, entry, rawValue, tag string) error {
	requestedKind, requested := p.requestedKind[base]
	if !requested || !reconcileKind(tag, requestedKind) {
		return nil
	}

	value, err := parseFloat(rawValue)
	if err != nil {
		return err
	}

	entries, ok := p.buffer[base]
	if !ok {
		entries = make(map[string]float64)
		p.buffer[base] = entries
	}

	// Spatial aggregation: multiple raw numbers for the same bucket within
	// one file (e.g. a regex match spanning several cores) are summed
	// before the temporal mean is taken at reduce time.
	entries[entry] += value

	return nil
}

// reconcileKind decides whether a tokenizer kind-tag may feed a Stat
// declared with requestedKind, per §4.3's vector/histogram/distribution
// substitution rules.
func reconcileKind(tag string, requestedKind stattype.Kind) bool {
	switch requestedKind {
	case stattype.KindVector:
		return tag == "vector" || tag == "histogram" || tag == "summary"
	case stattype.KindHistogram:
		return tag == "histogram" || tag == "vector" || tag == "summary"
	case stattype.KindDistribution:
		return tag == "distribution" || tag == "vector" || tag == "summary"
	default:
		return false
	}
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", stattype.ErrNonNumeric, raw)
	}

	return v, nil
}
