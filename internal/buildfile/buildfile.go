// Package buildfile serialises a BuildGraph into ninja's textual build-file
// syntax: actions become named rules keyed by their content hash, and edges
// become build statements referencing those rule names.
package buildfile

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/leynos/netsuke-go/internal/errs"
	"github.com/leynos/netsuke-go/internal/ir"
)

// Write serialises g to w in ninja syntax. Rules are emitted in ascending
// action-id order so output is deterministic across runs; edges are emitted
// in ascending primary-output order for the same reason.
func Write(w io.Writer, g *ir.BuildGraph) error {
	ids := make([]string, 0, len(g.Actions))
	for id := range g.Actions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if err := writeRule(w, id, g.Actions[id]); err != nil {
			return err
		}
	}

	outputs := make([]string, 0, len(g.Edges))
	needsAlways := false
	for out, e := range g.Edges {
		outputs = append(outputs, out)
		if e.Always && !e.Phony {
			needsAlways = true
		}
	}
	sort.Strings(outputs)

	if needsAlways {
		if _, err := fmt.Fprintf(w, "build %s: phony\n", alwaysSentinel); err != nil {
			return err
		}
	}

	for _, out := range outputs {
		if err := writeEdge(w, g, out, g.Edges[out]); err != nil {
			return err
		}
	}

	if len(g.DefaultTargets) > 0 {
		if _, err := fmt.Fprintf(w, "default %s\n", strings.Join(g.DefaultTargets, " ")); err != nil {
			return err
		}
	}
	return nil
}

func writeRule(w io.Writer, id string, a *ir.Action) error {
	if _, err := fmt.Fprintf(w, "rule %s\n", id); err != nil {
		return err
	}
	switch a.Kind {
	case ir.RecipeCommand, ir.RecipeRuleRef:
		if _, err := fmt.Fprintf(w, "  command = %s\n", a.Command); err != nil {
			return err
		}
	}
	if a.Description != "" {
		if _, err := fmt.Fprintf(w, "  description = %s\n", a.Description); err != nil {
			return err
		}
	}
	if a.Depfile != "" {
		if _, err := fmt.Fprintf(w, "  depfile = %s\n", a.Depfile); err != nil {
			return err
		}
	}
	if a.DepsFormat != "" {
		if _, err := fmt.Fprintf(w, "  deps = %s\n", a.DepsFormat); err != nil {
			return err
		}
	}
	if a.Pool != "" {
		if _, err := fmt.Fprintf(w, "  pool = %s\n", a.Pool); err != nil {
			return err
		}
	}
	if a.Restat {
		if _, err := fmt.Fprintf(w, "  restat = 1\n"); err != nil {
			return err
		}
	}
	return nil
}

// alwaysSentinel is a synthetic phony target with no inputs, emitted once
// and referenced as an order-only dependency by every edge flagged Always:
// ninja has no native "always rebuild" statement, so this is the standard
// idiom (a phony target is perpetually out of date, and anything ordered
// after it inherits that).
const alwaysSentinel = "ALWAYS"

func writeEdge(w io.Writer, g *ir.BuildGraph, primary string, e *ir.BuildEdge) error {
	outputs := append([]string{}, e.ExplicitOutputs...)
	if len(e.ImplicitOutputs) > 0 {
		outputs = append(outputs, "|")
		outputs = append(outputs, e.ImplicitOutputs...)
	}

	if e.Phony {
		line := fmt.Sprintf("build %s: phony", strings.Join(outputs, " "))
		if len(e.Inputs) > 0 {
			line += " " + strings.Join(e.Inputs, " ")
		}
		if len(e.OrderOnlyDeps) > 0 {
			line += " || " + strings.Join(e.OrderOnlyDeps, " ")
		}
		_, err := fmt.Fprintln(w, line)
		return err
	}

	if _, ok := g.Actions[e.ActionID]; !ok {
		return errs.New(errs.KindManifestStructure, "build edge references unknown action id").
			WithDetail("output", primary).
			WithDetail("action_id", e.ActionID)
	}

	orderOnly := append([]string{}, e.OrderOnlyDeps...)
	if e.Always {
		orderOnly = append(orderOnly, alwaysSentinel)
	}

	line := fmt.Sprintf("build %s: %s", strings.Join(outputs, " "), e.ActionID)
	if len(e.Inputs) > 0 {
		line += " " + strings.Join(e.Inputs, " ")
	}
	if len(orderOnly) > 0 {
		line += " || " + strings.Join(orderOnly, " ")
	}
	_, err := fmt.Fprintln(w, line)
	return err
}
