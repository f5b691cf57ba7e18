package guide

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// CycleError reports a step id reachable from itself through nesting.
type CycleError struct {
	Path    []string `json:"path"`    // Cycle path: ["loop-1", "inner", "loop-1"]
	Message string   `json:"message"` // Human-readable description
}

// AnalyzeCycles detects circular step references.
//
// Steps are identified by id. The containment graph has an edge from every
// conditional, branch or loop step to each step nested directly inside it.
// A nested step that re-uses the id of one of its ancestors closes a cycle:
// editing or running "that step" becomes ambiguous and pointer-built guides
// could recurse forever.
//
// The algorithm:
//  1. Build the step-id containment graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or self-loops as a cycle
//
// An acyclic guide returns an empty list.
func AnalyzeCycles(steps []Step) []CycleError {
	graph := buildContainmentGraph(steps)
	if len(graph) == 0 {
		return []CycleError{}
	}

	errs := []CycleError{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && hasSelfLoop(scc[0], graph)) {
			errs = append(errs, sccToCycleError(scc, graph))
		}
	}
	// Map iteration order is random; report deterministically.
	slices.SortFunc(errs, func(a, b CycleError) int {
		return strings.Compare(strings.Join(a.Path, "\x00"), strings.Join(b.Path, "\x00"))
	})
	return errs
}

// containmentGraph maps step id -> ids of directly nested steps.
type containmentGraph map[string][]string

func buildContainmentGraph(steps []Step) containmentGraph {
	graph := make(containmentGraph)
	Walk(steps, func(_ string, s Step) bool {
		if s.ID == "" {
			return true
		}
		if graph[s.ID] == nil {
			graph[s.ID] = []string{}
		}
		for _, child := range children(s) {
			if child.ID != "" && !slices.Contains(graph[s.ID], child.ID) {
				graph[s.ID] = append(graph[s.ID], child.ID)
			}
		}
		return true
	})
	for _, edges := range graph {
		slices.Sort(edges)
	}
	return graph
}

// children returns the steps nested directly inside s.
func children(s Step) []Step {
	var out []Step
	if s.TrueStep != nil {
		out = append(out, *s.TrueStep)
	}
	if s.FalseStep != nil {
		out = append(out, *s.FalseStep)
	}
	for _, b := range s.Branches {
		out = append(out, b.Steps...)
	}
	return append(out, s.Steps...)
}

func hasSelfLoop(node string, graph containmentGraph) bool {
	return slices.Contains(graph[node], node)
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are stable.
func tarjanSCC(graph containmentGraph) [][]string {
	var (
		index   = 0
		stack   []string
		indices = make(map[string]int)
		lowlink = make(map[string]int)
		onStack = make(map[string]bool)
		sccs    [][]string
	)

	var strongConnect func(string)
	strongConnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range graph[v] {
			if _, visited := indices[w]; !visited {
				strongConnect(w)
				lowlink[v] = min(lowlink[v], lowlink[w])
			} else if onStack[w] {
				lowlink[v] = min(lowlink[v], indices[w])
			}
		}

		if lowlink[v] == indices[v] {
			var scc []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				scc = append(scc, w)
				if w == v {
					break
				}
			}
			slices.Sort(scc)
			sccs = append(sccs, scc)
		}
	}

	nodes := make([]string, 0, len(graph))
	for node := range graph {
		nodes = append(nodes, node)
	}
	slices.Sort(nodes)
	for _, node := range nodes {
		if _, visited := indices[node]; !visited {
			strongConnect(node)
		}
	}
	return sccs
}

func sccToCycleError(scc []string, graph containmentGraph) CycleError {
	if len(scc) == 1 {
		id := scc[0]
		return CycleError{
			Path:    []string{id, id},
			Message: fmt.Sprintf("step %s contains a step with its own id", id),
		}
	}
	path := reconstructCyclePath(scc, graph)
	return CycleError{
		Path:    path,
		Message: fmt.Sprintf("circular step reference: %s", strings.Join(path, " -> ")),
	}
}

// reconstructCyclePath follows edges inside the SCC from its first member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph containmentGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}

	start := scc[0]
	current := start
	path := []string{current}
	visited := make(map[string]bool)
	for {
		visited[current] = true

		var next string
		for _, neighbor := range graph[current] {
			if members[neighbor] && (!visited[neighbor] || neighbor == start) {
				next = neighbor
				break
			}
		}
		if next == "" {
			break
		}
		path = append(path, next)
		if next == start {
			break
		}
		current = next
	}
	return path
}

func indexPath(prefix string, i int) string {
	return prefix + "[" + strconv.Itoa(i) + "]"
}
