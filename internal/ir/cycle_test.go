package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/ir"
)

func edgeTo(inputs ...string) *ir.BuildEdge {
	return &ir.BuildEdge{Inputs: inputs}
}

func TestDetectCyclesFindsNoneOnDAG(t *testing.T) {
	g := ir.NewBuildGraph()
	g.Edges["a.o"] = &ir.BuildEdge{ExplicitOutputs: []string{"a.o"}, Inputs: []string{"a.c"}}
	g.Edges["b.o"] = &ir.BuildEdge{ExplicitOutputs: []string{"b.o"}, Inputs: []string{"a.o"}}

	cycle, missing := ir.DetectCycles(g)
	assert.Nil(t, cycle)
	assert.Equal(t, []string{"a.c"}, missing)
}

func TestDetectCyclesReportsCanonicalCycle(t *testing.T) {
	g := ir.NewBuildGraph()
	g.Edges["a"] = &ir.BuildEdge{ExplicitOutputs: []string{"a"}, Inputs: []string{"c"}}
	g.Edges["b"] = &ir.BuildEdge{ExplicitOutputs: []string{"b"}, Inputs: []string{"a"}}
	g.Edges["c"] = &ir.BuildEdge{ExplicitOutputs: []string{"c"}, Inputs: []string{"b"}}

	cycle, _ := ir.DetectCycles(g)
	require.NotEmpty(t, cycle)
	assert.Equal(t, cycle[0], cycle[len(cycle)-1])
	smallest := cycle[0]
	for _, n := range cycle[:len(cycle)-1] {
		assert.False(t, n < smallest)
	}
}

func TestDetectCyclesReportsMissingDependencies(t *testing.T) {
	g := ir.NewBuildGraph()
	g.Edges["out"] = &ir.BuildEdge{ExplicitOutputs: []string{"out"}, Inputs: []string{"missing.c"}}

	cycle, missing := ir.DetectCycles(g)
	assert.Nil(t, cycle)
	assert.Equal(t, []string{"missing.c"}, missing)
}
