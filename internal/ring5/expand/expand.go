// Package expand implements the Regex Expander: resolving is_regex Stat
// Requests against a scanned catalog into concrete parsed_ids lists.
package expand

import (
	"log/slog"
	"regexp"

	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

// Expand resolves every is_regex request in requests against catalog,
// returning a new request list of equal length and order. Non-regex
// requests, already-expanded requests, and requests whose pattern matched
// nothing pass through unchanged.
func Expand(logger *slog.Logger, requests []stattype.Request, catalog []scanner.Variable) []stattype.Request {
	expanded := make([]stattype.Request, len(requests))

	for i, req := range requests {
		expanded[i] = expandOne(logger, req, catalog)
	}

	return expanded
}

func expandOne(logger *slog.Logger, req stattype.Request, catalog []scanner.Variable) stattype.Request {
	if !req.IsRegex || len(req.Params.ParsedIDs) > 0 {
		return req
	}

	pattern, err := regexp.Compile("^(?:" + req.Name + ")$")
	if err != nil {
		if logger != nil {
			logger.Warn("regex expansion: malformed pattern, passing request through unexpanded",
				"name", req.Name, "error", err)
		}

		return req
	}

	var ids []string

	for _, v := range catalog {
		if v.Name != req.Name && !pattern.MatchString(v.Name) {
			continue
		}

		if len(v.PatternIndices) > 0 {
			ids = append(ids, v.PatternIndices...)
			continue
		}

		ids = append(ids, v.Name)
	}

	if len(ids) == 0 {
		return req
	}

	req.Params.ParsedIDs = ids

	return req
}
