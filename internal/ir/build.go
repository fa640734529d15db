package ir

import (
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/manifest"
)

// Build lowers a validated, expanded Manifest into a BuildGraph: it resolves
// rule references, interpolates inline command templates, hashes and
// deduplicates Actions, and derives the default target list.
//
// Open question (recorded in DESIGN.md): the manifest schema gives inline
// Targets no description/depfile/deps-format/pool/restat fields of their
// own - only Rules carry those. So a RecipeCommand Action built from an
// inline Target's command carries none of them; a RecipeRuleRef Action
// inherits them from the first resolved Rule name (standalone Actions
// contribute only their command text; not even their description is
// inherited).
func Build(m *manifest.Manifest) (*BuildGraph, error) {
	rules := make(map[string]manifest.Rule, len(m.Rules))
	for _, r := range m.Rules {
		rules[r.Name] = r
	}
	actions := make(map[string]manifest.Action, len(m.Actions))
	for _, a := range m.Actions {
		actions[a.Name] = a
	}

	g := NewBuildGraph()

	for _, t := range m.Targets {
		edge := &BuildEdge{
			Inputs:          append(append([]string{}, t.Sources...), t.Deps...),
			ExplicitOutputs: append([]string{}, t.Name...),
			OrderOnlyDeps:   append([]string{}, t.OrderOnlyDeps...),
			Phony:           t.Phony,
			Always:          t.Always,
		}

		action, err := resolveAction(t.Recipe, edge, rules, actions)
		if err != nil {
			return nil, err
		}

		id := Hash(action)
		action.ID = id
		if existing, ok := g.Actions[id]; ok {
			action = existing
		} else {
			g.Actions[id] = action
		}
		edge.ActionID = id

		primary := edge.PrimaryOutput()
		if primary == "" {
			return nil, errs.New(errs.KindManifestStructure, "target declares no outputs")
		}
		if _, dup := g.Edges[primary]; dup {
			return nil, errs.New(errs.KindDuplicateOutput, "duplicate explicit output").
				WithDetail("output", primary)
		}
		g.Edges[primary] = edge
	}

	g.DefaultTargets = deriveDefaults(m, g)
	return g, nil
}

func resolveAction(
	recipe manifest.Recipe,
	edge *BuildEdge,
	rules map[string]manifest.Rule,
	actions map[string]manifest.Action,
) (*Action, error) {
	switch recipe.Kind {
	case manifest.RecipeCommand:
		cmd, err := InterpolateCommand(recipe.Command, edge.Inputs, edge.ExplicitOutputs)
		if err != nil {
			return nil, err
		}
		return &Action{Kind: RecipeCommand, Command: cmd}, nil

	case manifest.RecipeRuleRef:
		if len(recipe.Rules) == 0 {
			return nil, errs.New(errs.KindRuleNotFound, "rule reference names no rules")
		}
		var first *manifest.Rule
		commands := make([]string, 0, len(recipe.Rules))
		for _, name := range recipe.Rules {
			if r, ok := rules[name]; ok {
				if first == nil {
					rc := r
					first = &rc
				}
				cmd, err := resolveRuleCommand(name, edge, rules, actions, nil)
				if err != nil {
					return nil, err
				}
				commands = append(commands, cmd)
				continue
			}
			if a, ok := actions[name]; ok {
				cmd, err := InterpolateCommand(a.Recipe.Command, edge.Inputs, edge.ExplicitOutputs)
				if err != nil {
					return nil, err
				}
				commands = append(commands, cmd)
				continue
			}
			return nil, errs.New(errs.KindRuleNotFound, "unresolved rule reference").
				WithDetail("name", name)
		}
		a := &Action{
			Kind:    RecipeRuleRef,
			Rules:   append([]string{}, recipe.Rules...),
			Command: strings.Join(commands, " && "),
		}
		if first != nil {
			a.Description = first.Description
			a.Depfile = first.Depfile
			a.DepsFormat = first.DepsFormat
			a.Pool = first.Pool
			a.Restat = first.Restat
		}
		return a, nil

	default:
		return nil, errs.New(errs.KindManifestStructure, "unknown recipe kind")
	}
}

// resolveRuleCommand resolves name to its interpolated command text: a
// named Rule's own Recipe may itself be an inline Command (the common case)
// or a further RecipeRuleRef (rule composition), so resolution recurses,
// joining each composed rule's resolved command with " && ". visited guards
// against a rule that (directly or transitively) references itself.
func resolveRuleCommand(
	name string,
	edge *BuildEdge,
	rules map[string]manifest.Rule,
	actions map[string]manifest.Action,
	visited map[string]struct{},
) (string, error) {
	if _, seen := visited[name]; seen {
		return "", errs.New(errs.KindCycleDetected, "cyclic rule reference").
			WithDetail("name", name)
	}
	visited = addVisited(visited, name)

	r, ok := rules[name]
	if !ok {
		if a, ok := actions[name]; ok {
			return InterpolateCommand(a.Recipe.Command, edge.Inputs, edge.ExplicitOutputs)
		}
		return "", errs.New(errs.KindRuleNotFound, "unresolved rule reference").
			WithDetail("name", name)
	}

	switch r.Recipe.Kind {
	case manifest.RecipeCommand:
		return InterpolateCommand(r.Recipe.Command, edge.Inputs, edge.ExplicitOutputs)
	case manifest.RecipeRuleRef:
		commands := make([]string, 0, len(r.Recipe.Rules))
		for _, sub := range r.Recipe.Rules {
			cmd, err := resolveRuleCommand(sub, edge, rules, actions, visited)
			if err != nil {
				return "", err
			}
			commands = append(commands, cmd)
		}
		return strings.Join(commands, " && "), nil
	default:
		return "", errs.New(errs.KindManifestStructure, "unknown recipe kind")
	}
}

// addVisited returns a copy of visited with name added, so sibling branches
// of a rule-composition tree don't share mutated state.
func addVisited(visited map[string]struct{}, name string) map[string]struct{} {
	out := make(map[string]struct{}, len(visited)+1)
	for k := range visited {
		out[k] = struct{}{}
	}
	out[name] = struct{}{}
	return out
}

// deriveDefaults derives the default-target set: the manifest-level
// defaults list when present, else the first declared target's primary
// output, in declaration order with de-duplication by a seen-set.
func deriveDefaults(m *manifest.Manifest, g *BuildGraph) []string {
	var source []string
	if m.Defaults != nil {
		source = m.Defaults
	} else if len(m.Targets) > 0 {
		if primary := m.Targets[0].PrimaryOutput(); primary != "" {
			source = []string{primary}
		}
	}

	seen := make(map[string]struct{}, len(source))
	out := make([]string, 0, len(source))
	for _, name := range source {
		if _, ok := g.Edges[name]; !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
