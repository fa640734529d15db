package manifest_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/manifest"
)

func parse(t *testing.T, src string) *manifest.Manifest {
	t.Helper()
	doc, err := manifest.ParseDocument([]byte(src), "test.yaml")
	require.NoError(t, err)
	m, err := manifest.Decode(doc)
	require.NoError(t, err)
	return m
}

func TestDecodeMinimalManifest(t *testing.T) {
	m := parse(t, `
version: "1"
targets:
  - name: out.txt
    command: echo hi > $out
`)
	require.Len(t, m.Targets, 1)
	assert.Equal(t, "out.txt", m.Targets[0].PrimaryOutput())
	assert.Equal(t, manifest.RecipeCommand, m.Targets[0].Recipe.Kind)
	assert.Nil(t, m.Defaults)
}

func TestDecodeScalarOrSequenceRelaxation(t *testing.T) {
	m := parse(t, `
targets:
  - name: out.txt
    sources: in.txt
    deps:
      - a.txt
      - b.txt
    command: cat $in > $out
`)
	require.Len(t, m.Targets, 1)
	assert.Equal(t, manifest.StringList{"in.txt"}, m.Targets[0].Sources)
	assert.Equal(t, manifest.StringList{"a.txt", "b.txt"}, m.Targets[0].Deps)
}

func TestDecodeRuleReference(t *testing.T) {
	m := parse(t, `
rules:
  - name: cc
    command: gcc -c $in -o $out
targets:
  - name: out.o
    sources: out.c
    rules: cc
`)
	require.Len(t, m.Rules, 1)
	rule, ok := m.RuleByName("cc")
	require.True(t, ok)
	assert.Equal(t, "gcc -c $in -o $out", rule.Recipe.Command)

	require.Len(t, m.Targets, 1)
	assert.Equal(t, manifest.RecipeRuleRef, m.Targets[0].Recipe.Kind)
	assert.Equal(t, manifest.StringList{"cc"}, m.Targets[0].Recipe.Rules)
}

func TestDecodeRejectsCommandAndRulesTogether(t *testing.T) {
	doc, err := manifest.ParseDocument([]byte(`
targets:
  - name: out.txt
    command: echo hi
    rules: cc
`), "test.yaml")
	require.NoError(t, err)
	_, err = manifest.Decode(doc)
	require.Error(t, err)
}

func TestDecodeExplicitDefaultsTakesPrecedence(t *testing.T) {
	m := parse(t, `
targets:
  - name: a.txt
    command: touch a.txt
  - name: b.txt
    command: touch b.txt
defaults: b.txt
`)
	assert.Equal(t, manifest.StringList{"b.txt"}, m.Defaults)
}

func TestDecodeRejectsNonMappingRoot(t *testing.T) {
	doc, err := manifest.ParseDocument([]byte("- just\n- a\n- list\n"), "test.yaml")
	require.NoError(t, err)
	_, err = manifest.Decode(doc)
	require.Error(t, err)
}

func TestDecodeRejectsUnknownTopLevelKey(t *testing.T) {
	doc, err := manifest.ParseDocument([]byte("bogus: true\n"), "test.yaml")
	require.NoError(t, err)
	_, err = manifest.Decode(doc)
	require.Error(t, err)
}

func TestLoadReportsHintForTabIndent(t *testing.T) {
	_, err := manifest.ParseDocument([]byte("targets:\n\t- name: a\n"), "test.yaml")
	require.Error(t, err)
	var e *errs.Error
	require.ErrorAs(t, err, &e)
	assert.NotEmpty(t, e.Details["hint"])
}
