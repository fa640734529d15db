package ir

import "sort"

// state is a node's tri-state DFS marking.
type state int

const (
	unvisited state = iota
	visiting
	visited
)

// DetectCycles walks a BuildGraph's edges, keyed by primary output path,
// using an iterative depth-first traversal with tri-state node marking -
// generalising workflow.(*Workflow).findCycle from a single workflow's step
// dependencies to the full target graph. It reports the first cycle found
// (canonicalised per the rotation rule below) and every missing dependency:
// an input path that is not any edge's output. Missing dependencies do not
// halt traversal.
func DetectCycles(g *BuildGraph) (cycle []string, missing []string) {
	nodes := make([]string, 0, len(g.Edges))
	for output := range g.Edges {
		nodes = append(nodes, output)
	}
	sort.Strings(nodes)

	colors := make(map[string]state, len(nodes))
	seenMissing := make(map[string]struct{})

	type frame struct {
		node     string
		depIdx   int
		deps     []string
		fromEdge bool
	}

	depsOf := func(node string) []string {
		edge := g.Edges[node]
		all := make([]string, 0, len(edge.Inputs)+len(edge.OrderOnlyDeps))
		all = append(all, edge.Inputs...)
		all = append(all, edge.OrderOnlyDeps...)
		return all
	}

	var stack []frame
	var path []string

	for _, start := range nodes {
		if colors[start] != unvisited {
			continue
		}
		stack = append(stack, frame{node: start, deps: depsOf(start)})
		colors[start] = visiting
		path = append(path, start)

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			advanced := false
			for top.depIdx < len(top.deps) {
				dep := top.deps[top.depIdx]
				top.depIdx++

				if _, isEdge := g.Edges[dep]; !isEdge {
					if _, ok := seenMissing[dep]; !ok {
						seenMissing[dep] = struct{}{}
						missing = append(missing, dep)
					}
					continue
				}

				switch colors[dep] {
				case visiting:
					return canonicalCycle(closeCycle(path, dep)), sortedMissing(missing)
				case unvisited:
					colors[dep] = visiting
					path = append(path, dep)
					stack = append(stack, frame{node: dep, deps: depsOf(dep)})
					advanced = true
				case visited:
					// already fully explored, nothing to do
				}
				if advanced {
					break
				}
			}
			if advanced {
				continue
			}
			colors[top.node] = visited
			path = path[:len(path)-1]
			stack = stack[:len(stack)-1]
		}
	}

	return nil, sortedMissing(missing)
}

// closeCycle returns the portion of path from dep's first occurrence to the
// end, with dep appended again to close the loop.
func closeCycle(path []string, dep string) []string {
	start := 0
	for i, n := range path {
		if n == dep {
			start = i
			break
		}
	}
	cycle := make([]string, 0, len(path)-start+1)
	cycle = append(cycle, path[start:]...)
	cycle = append(cycle, dep)
	return cycle
}

// canonicalCycle rotates the cycle (excluding its closing duplicate) so the
// lexicographically smallest node appears first, then reappends the closing
// duplicate. This makes reports stable regardless of DFS start vertex.
func canonicalCycle(cycle []string) []string {
	if len(cycle) <= 1 {
		return cycle
	}
	body := cycle[:len(cycle)-1]
	minIdx := 0
	for i, n := range body {
		if n < body[minIdx] {
			minIdx = i
		}
	}
	rotated := make([]string, 0, len(cycle))
	rotated = append(rotated, body[minIdx:]...)
	rotated = append(rotated, body[:minIdx]...)
	rotated = append(rotated, body[minIdx])
	return rotated
}

func sortedMissing(missing []string) []string {
	if missing == nil {
		return nil
	}
	out := append([]string(nil), missing...)
	sort.Strings(out)
	return out
}
