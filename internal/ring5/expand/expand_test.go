package expand_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikiitin/ring5/internal/ring5/expand"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

func catalog() []scanner.Variable {
	return []scanner.Variable{
		{Name: "system.cpu0.ipc", Kind: stattype.KindScalar},
		{Name: "system.cpu1.ipc", Kind: stattype.KindScalar},
		{Name: "system.cpu2.ipc", Kind: stattype.KindScalar},
		{Name: "systemXcpuXipc", Kind: stattype.KindScalar},
	}
}

func TestExpandRegexCollectsMatches(t *testing.T) {
	requests := []stattype.Request{
		{Name: `system\.cpu\d+\.ipc`, Kind: stattype.KindScalar, IsRegex: true},
	}

	result := expand.Expand(nil, requests, catalog())

	assert.Equal(t, []string{"system.cpu0.ipc", "system.cpu1.ipc", "system.cpu2.ipc"}, result[0].Params.ParsedIDs)
}

func TestExpandLiteralDotIsNotWildcard(t *testing.T) {
	requests := []stattype.Request{
		{Name: "system.cpu.ipc", Kind: stattype.KindScalar, IsRegex: false},
	}

	result := expand.Expand(nil, requests, catalog())

	assert.Nil(t, result[0].Params.ParsedIDs)
	assert.Equal(t, "system.cpu.ipc", result[0].Name)
}

func TestExpandIsIdempotent(t *testing.T) {
	requests := []stattype.Request{
		{Name: `system\.cpu\d+\.ipc`, Kind: stattype.KindScalar, IsRegex: true},
	}

	once := expand.Expand(nil, requests, catalog())
	twice := expand.Expand(nil, once, catalog())

	assert.Equal(t, once[0].Params.ParsedIDs, twice[0].Params.ParsedIDs)
}

func TestExpandPassesThroughNoMatch(t *testing.T) {
	requests := []stattype.Request{
		{Name: `nonexistent\d+`, Kind: stattype.KindScalar, IsRegex: true},
	}

	result := expand.Expand(nil, requests, catalog())

	assert.Nil(t, result[0].Params.ParsedIDs)
}

func TestExpandMalformedRegexPassesThrough(t *testing.T) {
	requests := []stattype.Request{
		{Name: `system.cpu[`, Kind: stattype.KindScalar, IsRegex: true},
	}

	result := expand.Expand(nil, requests, catalog())

	assert.Nil(t, result[0].Params.ParsedIDs)
}
