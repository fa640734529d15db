package manifest

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/leynos/netsuke-go/internal/errs"
)

// Decode runs the typed-decode pass over doc.Root. The caller must have
// already run template expansion over the node tree (foreach/when blocks
// resolved, expressions substituted) - Decode treats every scalar as final
// text and does no further evaluation.
func Decode(doc *Document) (*Manifest, error) {
	root := doc.Root
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return &Manifest{}, nil
		}
		root = root.Content[0]
	}
	if root.Kind != yaml.MappingNode {
		return nil, structureErr(root, "manifest root must be a mapping")
	}

	m := &Manifest{}
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		val := root.Content[i+1]
		switch key.Value {
		case "version":
			m.Version = val.Value
		case "rules":
			rules, err := decodeRules(val)
			if err != nil {
				return nil, err
			}
			m.Rules = rules
		case "targets":
			targets, err := decodeTargets(val)
			if err != nil {
				return nil, err
			}
			m.Targets = targets
		case "macros":
			macros, err := decodeMacros(val)
			if err != nil {
				return nil, err
			}
			m.Macros = macros
		case "actions":
			actions, err := decodeActions(val)
			if err != nil {
				return nil, err
			}
			m.Actions = actions
		case "defaults":
			defaults, err := decodeStringList(val)
			if err != nil {
				return nil, err
			}
			m.Defaults = defaults
		default:
			return nil, structureErr(key, fmt.Sprintf("unknown top-level key %q", key.Value))
		}
	}
	return m, nil
}

func decodeRules(node *yaml.Node) ([]Rule, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, structureErr(node, "rules must be a sequence")
	}
	rules := make([]Rule, 0, len(node.Content))
	for _, item := range node.Content {
		r, err := decodeRule(item)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, nil
}

func decodeRule(node *yaml.Node) (Rule, error) {
	if node.Kind != yaml.MappingNode {
		return Rule{}, structureErr(node, "rule entry must be a mapping")
	}
	r := Rule{Line: node.Line}
	var (
		commandSet bool
		rulesSet   bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			r.Name = val.Value
		case "command":
			r.Recipe.Kind = RecipeCommand
			r.Recipe.Command = val.Value
			commandSet = true
		case "rules":
			list, err := decodeStringList(val)
			if err != nil {
				return Rule{}, err
			}
			r.Recipe.Kind = RecipeRuleRef
			r.Recipe.Rules = list
			rulesSet = true
		case "description":
			r.Description = val.Value
		case "depfile":
			r.Depfile = val.Value
		case "deps_format":
			r.DepsFormat = val.Value
		case "pool":
			r.Pool = val.Value
		case "restat":
			r.Restat = val.Value == "true"
		default:
			return Rule{}, structureErr(key, fmt.Sprintf("unknown rule key %q", key.Value))
		}
	}
	if commandSet && rulesSet {
		return Rule{}, structureErr(node, "rule must not set both 'command' and 'rules'")
	}
	if r.Name == "" {
		return Rule{}, structureErr(node, "rule must have a name")
	}
	return r, nil
}

func decodeTargets(node *yaml.Node) ([]Target, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, structureErr(node, "targets must be a sequence")
	}
	targets := make([]Target, 0, len(node.Content))
	for _, item := range node.Content {
		t, err := decodeTarget(item)
		if err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, nil
}

func decodeTarget(node *yaml.Node) (Target, error) {
	if node.Kind != yaml.MappingNode {
		return Target{}, structureErr(node, "target entry must be a mapping")
	}
	t := Target{Line: node.Line}
	var (
		commandSet bool
		rulesSet   bool
	)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		var err error
		switch key.Value {
		case "name":
			t.Name, err = decodeStringList(val)
		case "sources":
			t.Sources, err = decodeStringList(val)
		case "deps":
			t.Deps, err = decodeStringList(val)
		case "order_only_deps":
			t.OrderOnlyDeps, err = decodeStringList(val)
		case "command":
			t.Recipe.Kind = RecipeCommand
			t.Recipe.Command = val.Value
			commandSet = true
		case "rules":
			t.Recipe.Kind = RecipeRuleRef
			t.Recipe.Rules, err = decodeStringList(val)
			rulesSet = true
		case "phony":
			t.Phony = val.Value == "true"
		case "always":
			t.Always = val.Value == "true"
		default:
			return Target{}, structureErr(key, fmt.Sprintf("unknown target key %q", key.Value))
		}
		if err != nil {
			return Target{}, err
		}
	}
	if commandSet && rulesSet {
		return Target{}, structureErr(node, "target must not set both 'command' and 'rules'")
	}
	if len(t.Name) == 0 {
		return Target{}, structureErr(node, "target must declare at least one name")
	}
	return t, nil
}

func decodeMacros(node *yaml.Node) ([]Macro, error) {
	if node.Kind != yaml.MappingNode {
		return nil, structureErr(node, "macros must be a mapping of name to body")
	}
	macros := make([]Macro, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		macros = append(macros, Macro{Name: key.Value, Body: val.Value, Line: key.Line})
	}
	return macros, nil
}

func decodeActions(node *yaml.Node) ([]Action, error) {
	if node.Kind != yaml.SequenceNode {
		return nil, structureErr(node, "actions must be a sequence")
	}
	actions := make([]Action, 0, len(node.Content))
	for _, item := range node.Content {
		a, err := decodeAction(item)
		if err != nil {
			return nil, err
		}
		actions = append(actions, a)
	}
	return actions, nil
}

func decodeAction(node *yaml.Node) (Action, error) {
	if node.Kind != yaml.MappingNode {
		return Action{}, structureErr(node, "action entry must be a mapping")
	}
	a := Action{Line: node.Line, Recipe: Recipe{Kind: RecipeCommand}}
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		switch key.Value {
		case "name":
			a.Name = val.Value
		case "command":
			a.Recipe.Command = val.Value
		case "description":
			a.Description = val.Value
		default:
			return Action{}, structureErr(key, fmt.Sprintf("unknown action key %q", key.Value))
		}
	}
	if a.Name == "" {
		return Action{}, structureErr(node, "action must have a name")
	}
	if a.Recipe.Command == "" {
		return Action{}, structureErr(node, "action must declare a command")
	}
	return a, nil
}

// decodeStringList implements the scalar-or-sequence relaxation: a bare
// scalar becomes a single-element list and a sequence decodes element by
// element. node must be non-nil: callers only invoke this for keys that are
// present, and an absent field is left as a nil StringList by not calling it.
func decodeStringList(node *yaml.Node) (StringList, error) {
	switch node.Kind {
	case yaml.ScalarNode:
		return StringList{node.Value}, nil
	case yaml.SequenceNode:
		out := make(StringList, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, structureErr(item, "list entries must be scalar strings")
			}
			out = append(out, item.Value)
		}
		return out, nil
	default:
		return nil, structureErr(node, "expected a string or a list of strings")
	}
}

func structureErr(node *yaml.Node, message string) error {
	e := errs.New(errs.KindManifestStructure, message)
	if node != nil {
		e.WithDetail("line", node.Line)
	}
	return e
}
