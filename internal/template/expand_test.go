package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/leynos/netsuke-go/internal/template"
)

func parseNode(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var root yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &root))
	return &root
}

func TestExpandForeachPreservesOrderAndInjectsItemIndex(t *testing.T) {
	root := parseNode(t, `
targets:
  - foreach: ["a", "b", "c"]
    name: "{{ item }}-{{ index }}.txt"
    command: touch {{ item }}
`)
	env := template.NewEnv(nil)
	out, err := template.Expand(env, root)
	require.NoError(t, err)

	doc := out.Content[0]
	targets := fieldByName(doc, "targets")
	require.Len(t, targets.Content, 3)
	assert.Equal(t, "a-0.txt", fieldByName(targets.Content[0], "name").Value)
	assert.Equal(t, "b-1.txt", fieldByName(targets.Content[1], "name").Value)
	assert.Equal(t, "c-2.txt", fieldByName(targets.Content[2], "name").Value)
}

func TestExpandWhenDropsFalsyIterations(t *testing.T) {
	root := parseNode(t, `
targets:
  - foreach: ["a", "b", "c"]
    when: "item != 'b'"
    name: "{{ item }}.txt"
    command: touch {{ item }}
`)
	env := template.NewEnv(nil)
	out, err := template.Expand(env, root)
	require.NoError(t, err)

	targets := fieldByName(out.Content[0], "targets")
	require.Len(t, targets.Content, 2)
	assert.Equal(t, "a.txt", fieldByName(targets.Content[0], "name").Value)
	assert.Equal(t, "c.txt", fieldByName(targets.Content[1], "name").Value)
}

func TestExpandForeachFromExpression(t *testing.T) {
	root := parseNode(t, `
targets:
  - foreach: "names"
    name: "{{ item }}.txt"
    command: touch {{ item }}
`)
	env := template.NewEnv(nil)
	env.Set("names", []any{"x", "y"})
	out, err := template.Expand(env, root)
	require.NoError(t, err)

	targets := fieldByName(out.Content[0], "targets")
	require.Len(t, targets.Content, 2)
}

func TestExpandPlainScalarSubstitution(t *testing.T) {
	root := parseNode(t, `version: "{{ ver }}"`)
	env := template.NewEnv(nil)
	env.Set("ver", "1.2.3")
	out, err := template.Expand(env, root)
	require.NoError(t, err)
	assert.Equal(t, "1.2.3", fieldByName(out.Content[0], "version").Value)
}

func fieldByName(mapping *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == name {
			return mapping.Content[i+1]
		}
	}
	return nil
}
