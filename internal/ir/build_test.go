package ir_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/ir"
	"github.com/leynos/netsuke-go/internal/manifest"
)

func TestBuildInterpolatesInlineCommands(t *testing.T) {
	m := &manifest.Manifest{
		Targets: []manifest.Target{
			{
				Name:    manifest.StringList{"a.o"},
				Sources: manifest.StringList{"a.c"},
				Recipe:  manifest.Recipe{Kind: manifest.RecipeCommand, Command: "cc -c $in -o $out"},
			},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)

	edge, ok := g.Edges["a.o"]
	require.True(t, ok)
	action := g.Actions[edge.ActionID]
	require.NotNil(t, action)
	assert.Equal(t, "cc -c a.c -o a.o", action.Command)
	assert.Equal(t, []string{"a.o"}, g.DefaultTargets)
}

func TestBuildDeduplicatesIdenticalActions(t *testing.T) {
	recipe := manifest.Recipe{Kind: manifest.RecipeCommand, Command: "touch $out"}
	m := &manifest.Manifest{
		Targets: []manifest.Target{
			{Name: manifest.StringList{"a"}, Recipe: recipe},
			{Name: manifest.StringList{"b"}, Recipe: recipe},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)
	assert.Equal(t, g.Edges["a"].ActionID, g.Edges["b"].ActionID)
	assert.Len(t, g.Actions, 1)
}

func TestBuildRejectsDuplicateOutput(t *testing.T) {
	recipe := manifest.Recipe{Kind: manifest.RecipeCommand, Command: "touch $out"}
	m := &manifest.Manifest{
		Targets: []manifest.Target{
			{Name: manifest.StringList{"a"}, Recipe: recipe},
			{Name: manifest.StringList{"a"}, Recipe: recipe},
		},
	}
	_, err := ir.Build(m)
	require.Error(t, err)
}

func TestBuildResolvesRuleReferenceAndInheritsAttributes(t *testing.T) {
	m := &manifest.Manifest{
		Rules: []manifest.Rule{
			{Name: "cc", Recipe: manifest.Recipe{Kind: manifest.RecipeCommand, Command: "cc $in -o $out"}, Pool: "link", Restat: true},
		},
		Targets: []manifest.Target{
			{
				Name:    manifest.StringList{"a.o"},
				Sources: manifest.StringList{"a.c"},
				Recipe:  manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"cc"}},
			},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)

	edge := g.Edges["a.o"]
	action := g.Actions[edge.ActionID]
	assert.Equal(t, "link", action.Pool)
	assert.True(t, action.Restat)
	assert.Equal(t, []string{"cc"}, action.Rules)
	assert.Equal(t, "cc a.c -o a.o", action.Command)
}

func TestBuildJoinsMultipleRuleReferencesWithAnd(t *testing.T) {
	m := &manifest.Manifest{
		Rules: []manifest.Rule{
			{Name: "gen", Recipe: manifest.Recipe{Kind: manifest.RecipeCommand, Command: "gen -o $out"}},
			{Name: "strip", Recipe: manifest.Recipe{Kind: manifest.RecipeCommand, Command: "strip $out"}},
		},
		Targets: []manifest.Target{
			{
				Name:   manifest.StringList{"a.bin"},
				Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"gen", "strip"}},
			},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)

	edge := g.Edges["a.bin"]
	action := g.Actions[edge.ActionID]
	assert.Equal(t, "gen -o a.bin && strip a.bin", action.Command)
}

func TestBuildResolvesRuleOfRuleComposition(t *testing.T) {
	m := &manifest.Manifest{
		Rules: []manifest.Rule{
			{Name: "compile", Recipe: manifest.Recipe{Kind: manifest.RecipeCommand, Command: "cc -c $in -o $out"}},
			{Name: "build", Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"compile"}}},
		},
		Targets: []manifest.Target{
			{
				Name:    manifest.StringList{"a.o"},
				Sources: manifest.StringList{"a.c"},
				Recipe:  manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"build"}},
			},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)

	edge := g.Edges["a.o"]
	action := g.Actions[edge.ActionID]
	assert.Equal(t, "cc -c a.c -o a.o", action.Command)
}

func TestBuildRejectsCyclicRuleReference(t *testing.T) {
	m := &manifest.Manifest{
		Rules: []manifest.Rule{
			{Name: "a", Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"b"}}},
			{Name: "b", Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"a"}}},
		},
		Targets: []manifest.Target{
			{Name: manifest.StringList{"out"}, Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"a"}}},
		},
	}
	_, err := ir.Build(m)
	require.Error(t, err)
}

func TestBuildRejectsUnresolvedRuleReference(t *testing.T) {
	m := &manifest.Manifest{
		Targets: []manifest.Target{
			{Name: manifest.StringList{"a.o"}, Recipe: manifest.Recipe{Kind: manifest.RecipeRuleRef, Rules: []string{"missing"}}},
		},
	}
	_, err := ir.Build(m)
	require.Error(t, err)
}

func TestBuildUsesExplicitDefaults(t *testing.T) {
	recipe := manifest.Recipe{Kind: manifest.RecipeCommand, Command: "touch $out"}
	m := &manifest.Manifest{
		Defaults: manifest.StringList{"b", "b", "a"},
		Targets: []manifest.Target{
			{Name: manifest.StringList{"a"}, Recipe: recipe},
			{Name: manifest.StringList{"b"}, Recipe: recipe},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, g.DefaultTargets)
}

func TestBuildFallsBackToFirstTargetWhenNoDefaultsDeclared(t *testing.T) {
	recipe := manifest.Recipe{Kind: manifest.RecipeCommand, Command: "touch $out"}
	m := &manifest.Manifest{
		Targets: []manifest.Target{
			{Name: manifest.StringList{"first"}, Recipe: recipe},
			{Name: manifest.StringList{"second"}, Recipe: recipe},
		},
	}
	g, err := ir.Build(m)
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, g.DefaultTargets)
}
