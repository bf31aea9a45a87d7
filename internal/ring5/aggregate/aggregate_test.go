package aggregate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nikiitin/ring5/internal/ring5/aggregate"
	"github.com/nikiitin/ring5/internal/ring5/scanner"
	"github.com/nikiitin/ring5/internal/ring5/stattype"
)

func TestAggregateCollapsesIndexedFamily(t *testing.T) {
	vars := []scanner.Variable{
		{Name: "system.cpu0.ipc", Kind: stattype.KindScalar},
		{Name: "system.cpu1.ipc", Kind: stattype.KindScalar},
		{Name: "system.cpu2.ipc", Kind: stattype.KindScalar},
	}

	result := aggregate.Aggregate(vars)

	assert.Len(t, result, 1)
	assert.Equal(t, `system.cpu\d+.ipc`, result[0].Name)
	assert.Equal(t, []string{"system.cpu0.ipc", "system.cpu1.ipc", "system.cpu2.ipc"}, result[0].PatternIndices)
}

func TestAggregateLeavesSingletonsAlone(t *testing.T) {
	vars := []scanner.Variable{
		{Name: "simTicks", Kind: stattype.KindScalar},
	}

	result := aggregate.Aggregate(vars)

	assert.Len(t, result, 1)
	assert.Equal(t, "simTicks", result[0].Name)
	assert.Nil(t, result[0].PatternIndices)
}

func TestAggregateMergesEntriesAndRangeAcrossFiles(t *testing.T) {
	vars := []scanner.Variable{
		{Name: "dist", Kind: stattype.KindDistribution, Minimum: 0, Maximum: 5, HasRange: true},
		{Name: "dist", Kind: stattype.KindDistribution, Minimum: 2, Maximum: 10, HasRange: true},
	}

	result := aggregate.Aggregate(vars)

	assert.Len(t, result, 1)
	assert.Equal(t, 0, result[0].Minimum)
	assert.Equal(t, 10, result[0].Maximum)
}
