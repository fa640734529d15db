package template

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leynos/netsuke-go/internal/errs"
)

// Expand walks root, rendering every scalar's embedded expressions
// against env and expanding any mapping that carries a "foreach" key into a
// sequence of cloned, substituted mappings - dropping iterations whose
// "when" expression evaluates falsy. It returns a new node tree; root itself
// is not mutated; source order is always preserved.
func Expand(env *Env, root *yaml.Node) (*yaml.Node, error) {
	switch root.Kind {
	case yaml.DocumentNode:
		out := cloneScalarNode(root)
		for _, child := range root.Content {
			expanded, err := Expand(env, child)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, expanded)
		}
		return out, nil

	case yaml.MappingNode:
		if foreachKeyIndex(root) >= 0 {
			return nil, fmt.Errorf("foreach is only valid on an item inside a sequence")
		}
		out := cloneScalarNode(root)
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i]
			val := root.Content[i+1]
			expandedVal, err := Expand(env, val)
			if err != nil {
				return nil, fmt.Errorf("field %q: %w", key.Value, err)
			}
			out.Content = append(out.Content, cloneScalarNode(key), expandedVal)
		}
		return out, nil

	case yaml.SequenceNode:
		out := cloneScalarNode(root)
		for i, item := range root.Content {
			if item.Kind == yaml.MappingNode && foreachKeyIndex(item) >= 0 {
				expanded, err := expandForeachItem(env, item)
				if err != nil {
					return nil, fmt.Errorf("foreach at index %d: %w", i, err)
				}
				out.Content = append(out.Content, expanded...)
				continue
			}
			expanded, err := Expand(env, item)
			if err != nil {
				return nil, err
			}
			out.Content = append(out.Content, expanded)
		}
		return out, nil

	case yaml.ScalarNode:
		rendered, err := Substitute(env, root.Value)
		if err != nil {
			return nil, err
		}
		out := cloneScalarNode(root)
		out.Value = rendered
		return out, nil

	default:
		return cloneScalarNode(root), nil
	}
}

func foreachKeyIndex(mapping *yaml.Node) int {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == "foreach" {
			return i
		}
	}
	return -1
}

func fieldValue(mapping *yaml.Node, name string) *yaml.Node {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == name {
			return mapping.Content[i+1]
		}
	}
	return nil
}

// expandForeachItem expands one foreach-bearing mapping into zero or more
// plain mappings (the foreach/when keys stripped out), one per surviving
// iteration, in source order. Each iteration runs against a cloned Env with
// "item" and "index" builtins injected;  either every field of
// an iteration is substituted or the iteration is dropped entirely - a
// mid-iteration error aborts the whole expansion rather than emitting a
// partially-substituted mapping.
func expandForeachItem(env *Env, mapping *yaml.Node) ([]*yaml.Node, error) {
	foreachNode := fieldValue(mapping, "foreach")
	items, err := resolveIterable(env, foreachNode)
	if err != nil {
		return nil, fmt.Errorf("foreach: %w", err)
	}

	whenNode := fieldValue(mapping, "when")

	results := make([]*yaml.Node, 0, len(items))
	for index, item := range items {
		iterEnv := env.Clone()
		iterEnv.SetBuiltin("item", item)
		iterEnv.SetBuiltin("index", index)

		if whenNode != nil {
			keep, err := evalWhen(iterEnv, whenNode)
			if err != nil {
				return nil, fmt.Errorf("when at index %d: %w", index, err)
			}
			if !keep {
				continue
			}
		}

		cloned, err := expandIterationFields(iterEnv, mapping)
		if err != nil {
			return nil, fmt.Errorf("index %d: %w", index, err)
		}
		results = append(results, cloned)
	}
	return results, nil
}

// expandIterationFields substitutes every field of mapping except foreach/
// when against iterEnv, building one plain mapping node. On any field error
// it returns nil and the error without appending a partial node.
func expandIterationFields(iterEnv *Env, mapping *yaml.Node) (*yaml.Node, error) {
	out := cloneScalarNode(mapping)
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key := mapping.Content[i]
		if key.Value == "foreach" || key.Value == "when" {
			continue
		}
		val := mapping.Content[i+1]
		expanded, err := Expand(iterEnv, val)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key.Value, err)
		}
		out.Content = append(out.Content, cloneScalarNode(key), expanded)
	}
	return out, nil
}

func evalWhen(env *Env, whenNode *yaml.Node) (bool, error) {
	if whenNode.Kind != yaml.ScalarNode {
		return false, fmt.Errorf("when must be a scalar expression")
	}
	val, err := Eval(env, strings.TrimSpace(whenNode.Value))
	if err != nil {
		return false, err
	}
	return truthy(val), nil
}

// resolveIterable implements foreach's dual form: an inline sequence node is
// rendered verbatim (item by item), while a scalar node is evaluated as an
// expression that must produce an iterable.
func resolveIterable(env *Env, foreachNode *yaml.Node) ([]any, error) {
	switch foreachNode.Kind {
	case yaml.SequenceNode:
		items := make([]any, 0, len(foreachNode.Content))
		for _, item := range foreachNode.Content {
			var v any
			if err := item.Decode(&v); err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		return items, nil
	case yaml.ScalarNode:
		val, err := Eval(env, strings.TrimSpace(foreachNode.Value))
		if err != nil {
			return nil, err
		}
		return toSlice(val)
	default:
		return nil, errs.New(errs.KindTemplateEvaluation, "foreach must be a sequence or an expression").
			WithDetail("line", foreachNode.Line)
	}
}

func toSlice(val any) ([]any, error) {
	switch v := val.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("foreach expression did not produce an iterable (got %T)", val)
	}
}

func cloneScalarNode(n *yaml.Node) *yaml.Node {
	clone := *n
	clone.Content = nil
	return &clone
}
