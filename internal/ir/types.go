// Package ir is the build graph's intermediate representation: the
// normalised, post-interpolation Action and BuildEdge tables produced from a
// decoded, expanded manifest, plus the cycle detector and ninja-file
// synthesis input.
package ir

// Action is the normalised, post-interpolation unit of work. Its identity is
// the hex SHA-256 digest over its canonical encoding (see Hash); two Actions
// with identical fields always hash equal and collapse to one table entry.
type Action struct {
	ID          string
	Kind        RecipeKind
	Command     string
	Rules       []string
	Description string
	Depfile     string
	DepsFormat  string
	Pool        string
	Restat      bool
}

// RecipeKind mirrors manifest.RecipeKind without importing the manifest
// package's decode-time concerns into the IR.
type RecipeKind int

const (
	RecipeCommand RecipeKind = iota
	RecipeRuleRef
)

// BuildEdge is one node of the build graph: an action bound to concrete
// input and output paths.
type BuildEdge struct {
	ActionID        string
	Inputs          []string
	ExplicitOutputs []string
	ImplicitOutputs []string
	OrderOnlyDeps   []string
	Phony           bool
	Always          bool
}

// PrimaryOutput returns the edge's first explicit output, the key it is
// stored under in BuildGraph.Edges.
func (e *BuildEdge) PrimaryOutput() string {
	if len(e.ExplicitOutputs) == 0 {
		return ""
	}
	return e.ExplicitOutputs[0]
}

// BuildGraph is the IR root: a deduplicated action table, an edge table
// keyed by primary output path, and the ordered, deduplicated default target
// list.
type BuildGraph struct {
	Actions        map[string]*Action
	Edges          map[string]*BuildEdge
	DefaultTargets []string
}

// NewBuildGraph returns an empty graph ready for incremental construction.
func NewBuildGraph() *BuildGraph {
	return &BuildGraph{
		Actions: make(map[string]*Action),
		Edges:   make(map[string]*BuildEdge),
	}
}
