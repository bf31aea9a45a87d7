// Package aggregate implements the Pattern Aggregator: collapsing families
// of scanned variable names that differ only by an integer index (core
// number, cache level, ...) into a single aggregate Scanned Variable.
package aggregate

import (
	"regexp"
	"sort"

	"github.com/nikiitin/ring5/internal/ring5/scanner"
)

var digitRun = regexp.MustCompile(`\d+`)

// Aggregate merges a raw catalog of Scanned Variables, first by name
// across files (union of entries, union of numeric range), then by
// collapsing name families that differ only by integer indices into a
// single aggregate variable carrying pattern_indices.
func Aggregate(vars []scanner.Variable) []scanner.Variable {
	merged := mergeByName(vars)

	groups := make(map[string][]string)
	order := make([]string, 0, len(merged))

	for _, name := range sortedNames(merged) {
		template := digitRun.ReplaceAllString(name, `\d+`)
		if _, seen := groups[template]; !seen {
			order = append(order, template)
		}

		groups[template] = append(groups[template], name)
	}

	result := make([]scanner.Variable, 0, len(merged))

	for _, template := range order {
		members := groups[template]
		if len(members) < 2 {
			// No digit run, or a singleton family: keep the concrete
			// variable as-is, unaggregated.
			result = append(result, merged[members[0]])

			continue
		}

		result = append(result, buildAggregate(template, members, merged))
	}

	return result
}

func mergeByName(vars []scanner.Variable) map[string]scanner.Variable {
	merged := make(map[string]scanner.Variable, len(vars))

	for _, v := range vars {
		existing, ok := merged[v.Name]
		if !ok {
			merged[v.Name] = v
			continue
		}

		merged[v.Name] = mergeOne(existing, v)
	}

	return merged
}

func mergeOne(a, b scanner.Variable) scanner.Variable {
	a.Entries = sortedUnion(a.Entries, b.Entries)

	if b.HasRange {
		if !a.HasRange {
			a.Minimum, a.Maximum, a.HasRange = b.Minimum, b.Maximum, true
		} else {
			a.Minimum = min(a.Minimum, b.Minimum)
			a.Maximum = max(a.Maximum, b.Maximum)
		}
	}

	return a
}

func sortedUnion(a, b []string) []string {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}

	set := make(map[string]struct{}, len(a)+len(b))
	for _, e := range a {
		set[e] = struct{}{}
	}

	for _, e := range b {
		set[e] = struct{}{}
	}

	union := make([]string, 0, len(set))
	for e := range set {
		union = append(union, e)
	}

	sort.Strings(union)

	return union
}

func buildAggregate(template string, members []string, merged map[string]scanner.Variable) scanner.Variable {
	sort.Strings(members)

	agg := scanner.Variable{Name: template, PatternIndices: members}

	for i, name := range members {
		member := merged[name]
		if i == 0 {
			agg.Kind = member.Kind
		}

		agg.Entries = sortedUnion(agg.Entries, member.Entries)

		if member.HasRange {
			if !agg.HasRange {
				agg.Minimum, agg.Maximum, agg.HasRange = member.Minimum, member.Maximum, true
			} else {
				agg.Minimum = min(agg.Minimum, member.Minimum)
				agg.Maximum = max(agg.Maximum, member.Maximum)
			}
		}
	}

	return agg
}

func sortedNames(merged map[string]scanner.Variable) []string {
	names := make([]string, 0, len(merged))
	for name := range merged {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}
