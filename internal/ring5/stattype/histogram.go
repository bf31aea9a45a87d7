package stattype

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
)

var rangeKeyPattern = regexp.MustCompile(`^(\d+)-(\d+)$`)

// Histogram accumulates one numeric observation list per dynamically
// discovered bucket key. When bins and maxRange are both positive, reduction
// redistributes each repeat's raw range buckets proportionally across
// bins uniformly-sized target buckets spanning [0, maxRange); non-range keys
// are passed through untouched and averaged across repeats like a Vector.
type Histogram struct {
	content        map[string][]float64
	reducedContent map[string]float64
	index          map[string]int
	entries        []string
	bins           int
	maxRange       float64
	repeat         int
	balanced       bool
	reduced        bool
}

// NewHistogram constructs a Histogram. entries may be empty: buckets are
// discovered dynamically as observations arrive. bins/maxRange enable
// rebinning when both are positive.
func NewHistogram(repeat int, entries []string, bins int, maxRange float64) *Histogram {
	h := &Histogram{
		repeat:   repeat,
		bins:     bins,
		maxRange: maxRange,
		content:  make(map[string][]float64),
		index:    make(map[string]int),
	}

	for _, e := range entries {
		h.declare(e)
	}

	return h
}

func (h *Histogram) declare(key string) {
	if _, known := h.index[key]; known {
		return
	}

	h.index[key] = len(h.entries)
	h.entries = append(h.entries, key)
	h.content[key] = nil
}

// Kind returns KindHistogram.
func (h *Histogram) Kind() Kind { return KindHistogram }

// SetContent appends one observation across whatever bucket keys it
// carries, declaring any key not seen before in discovery order.
func (h *Histogram) SetContent(value any) error {
	observation, ok := value.(map[string]float64)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNonNumeric, value)
	}

	for _, key := range sortedKeys(observation) {
		h.declare(key)
		h.content[key] = append(h.content[key], observation[key])
	}

	return nil
}

// BalanceContent pads every discovered bucket's observation list to repeat,
// or rejects any bucket holding more than repeat observations.
func (h *Histogram) BalanceContent() error {
	if h.balanced {
		return ErrAlreadyBalanced
	}

	for _, entry := range h.entries {
		balanced, err := balanceFloats(h.content[entry], h.repeat)
		if err != nil {
			return fmt.Errorf("bucket %q: %w", entry, err)
		}

		h.content[entry] = balanced
	}

	h.balanced = true

	return nil
}

// ReduceDuplicates computes the reduced bucket map. With rebinning
// parameters set, range-shaped keys are proportionally redistributed into
// bins uniform target buckets per repeat and then averaged; non-range keys
// are always averaged directly, whether or not rebinning is active.
func (h *Histogram) ReduceDuplicates() error {
	if !h.balanced {
		return ErrNotBalanced
	}

	if h.reduced {
		return ErrAlreadyReduced
	}

	rangeEntries, nonRangeEntries := h.splitEntries()

	result := make(map[string]float64, len(h.entries))
	for _, entry := range nonRangeEntries {
		result[entry] = mean(h.content[entry])
	}

	if h.bins > 0 && h.maxRange > 0 && len(rangeEntries) > 0 {
		h.reduceRebinned(rangeEntries, result)
	} else {
		for _, entry := range rangeEntries {
			result[entry] = mean(h.content[entry])
		}
	}

	h.reducedContent = result
	h.reduced = true

	return nil
}

type parsedRange struct {
	key   string
	start float64
	end   float64
}

func (h *Histogram) splitEntries() (rangeEntries, nonRangeEntries []string) {
	for _, entry := range h.entries {
		if rangeKeyPattern.MatchString(entry) {
			rangeEntries = append(rangeEntries, entry)
			continue
		}

		nonRangeEntries = append(nonRangeEntries, entry)
	}

	return rangeEntries, nonRangeEntries
}

func parseRangeEntries(keys []string) []parsedRange {
	parsed := make([]parsedRange, 0, len(keys))

	for _, key := range keys {
		match := rangeKeyPattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}

		start, _ := strconv.ParseFloat(match[1], 64)
		end, _ := strconv.ParseFloat(match[2], 64)
		parsed = append(parsed, parsedRange{key: key, start: start, end: end})
	}

	return parsed
}

// reduceRebinned redistributes each repeat's raw range buckets into bins
// uniform target buckets spanning [0, maxRange) and accumulates the sum,
// then divides by repeat to produce the per-target-bucket mean.
func (h *Histogram) reduceRebinned(rangeEntries []string, result map[string]float64) {
	parsed := parseRangeEntries(rangeEntries)
	width := h.maxRange / float64(h.bins)

	targetKeys := h.targetBinKeys()
	accumulated := make([]float64, h.bins)

	for repeatIndex := range h.repeat {
		for _, bucket := range parsed {
			v := h.content[bucket.key][repeatIndex]
			if v == 0 {
				continue
			}

			rawSpan := bucket.end - bucket.start
			if rawSpan <= 0 {
				continue
			}

			clippedEnd := bucket.end
			if clippedEnd > h.maxRange {
				clippedEnd = h.maxRange
			}

			for k := range h.bins {
				lo := width * float64(k)
				hi := width * float64(k+1)

				overlap := min(hi, clippedEnd) - max(lo, bucket.start)
				if overlap <= 0 {
					continue
				}

				proportion := overlap / rawSpan
				accumulated[k] += v * proportion
			}
		}
	}

	for k, key := range targetKeys {
		result[key] = accumulated[k] / float64(h.repeat)
	}
}

// targetBinKeys returns the rebinned column keys, one per bin, spanning
// [0, maxRange) uniformly. Shared by reduceRebinned (to accumulate into)
// and Entries (to advertise the post-rebinning column set).
func (h *Histogram) targetBinKeys() []string {
	width := h.maxRange / float64(h.bins)
	keys := make([]string, h.bins)

	for k := range h.bins {
		lo := width * float64(k)
		hi := width * float64(k+1)
		keys[k] = fmt.Sprintf("%d-%d", int(lo), int(hi))
	}

	return keys
}

// Entries returns the discovered bucket keys in discovery order. When
// rebinning is configured (bins and maxRange both positive), the range-
// shaped keys are replaced by the rebinned target-bin keys so the column
// set matches what ReducedContent will actually hold.
func (h *Histogram) Entries() []string {
	if h.bins <= 0 || h.maxRange <= 0 {
		return append([]string(nil), h.entries...)
	}

	_, nonRangeEntries := h.splitEntries()

	entries := make([]string, 0, len(nonRangeEntries)+h.bins)
	entries = append(entries, nonRangeEntries...)
	entries = append(entries, h.targetBinKeys()...)

	return entries
}

// ReducedContent returns the reduced bucket map, guarded per invariant.
func (h *Histogram) ReducedContent() (any, error) {
	if !h.balanced || !h.reduced {
		return nil, ErrNotReady
	}

	return h.reducedContent, nil
}

// Warnings returns nil: Histogram has no soft-warning path.
func (h *Histogram) Warnings() []string { return nil }

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	return keys
}
