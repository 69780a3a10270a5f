package model

import (
	"fmt"
	"slices"
	"strings"
)

// CycleWarning reports a cycle in the interface consumer graph.
//
// Propagation does not keep a visited set, so an alert whose impacts reach a
// cycle never terminates unless the engine runs with an impact budget. Cycles
// are warnings, not errors: they are legal architecture, just dangerous input.
type CycleWarning struct {
	Path    []string `json:"path"` // interface IDs: ["a", "b", "a"]
	Message string   `json:"message"`
	Level   string   `json:"level"`
}

// AnalyzeCycles detects cycles in the graph the engine walks.
//
// There is an edge a → b when some component consumes a and provides b, and a
// is realized by no saga step (propagation switches to the saga layer at
// realized interfaces and never fans out from them).
//
// The algorithm:
//  1. Build the interface → interface graph
//  2. Use Tarjan's algorithm to find strongly connected components
//  3. Report each SCC with size > 1 or a self-loop
func AnalyzeCycles(s *System) []CycleWarning {
	graph := buildConsumerGraph(s)
	if len(graph) == 0 {
		return []CycleWarning{}
	}

	warnings := []CycleWarning{}
	for _, scc := range tarjanSCC(graph) {
		if len(scc) > 1 || (len(scc) == 1 && slices.Contains(graph[scc[0]], scc[0])) {
			warnings = append(warnings, cycleToWarning(scc, graph))
		}
	}
	return warnings
}

// consumerGraph maps interface ID → interface IDs reached in one hop.
type consumerGraph map[string][]string

func buildConsumerGraph(s *System) consumerGraph {
	graph := make(consumerGraph)
	for _, face := range s.Architecture.Interfaces {
		if graph[face.ID] == nil {
			graph[face.ID] = []string{}
		}
		if len(s.StepsRealizing(face.ID)) > 0 {
			continue
		}
		for _, c := range s.ConsumersOf(face.ID) {
			graph[face.ID] = append(graph[face.ID], c.Provides...)
		}
	}
	return graph
}

// tarjanSCC finds strongly connected components using Tarjan's algorithm.
// Nodes are visited in sorted order so results are deterministic.
func tarjanSCC(graph consumerGraph) [][]string {
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

func cycleToWarning(scc []string, graph consumerGraph) CycleWarning {
	if len(scc) == 1 {
		return CycleWarning{
			Path:    []string{scc[0], scc[0]},
			Message: fmt.Sprintf("interface feeds back into itself: %s → %s", scc[0], scc[0]),
			Level:   "warning",
		}
	}
	path := reconstructCyclePath(scc, graph)
	return CycleWarning{
		Path:    path,
		Message: fmt.Sprintf("consumer cycle detected: %s", strings.Join(path, " → ")),
		Level:   "warning",
	}
}

// reconstructCyclePath follows edges inside the SCC from its smallest member
// until it returns to the start.
func reconstructCyclePath(scc []string, graph consumerGraph) []string {
	members := make(map[string]bool, len(scc))
	for _, node := range scc {
		members[node] = true
	}
	start := slices.Min(scc)
	path := []string{start}
	visited := map[string]bool{start: true}

	current := start
	for {
		var next string
		for _, w := range graph[current] {
			if members[w] && (!visited[w] || w == start) {
				next = w
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
		visited[next] = true
		current = next
	}
	return path
}
