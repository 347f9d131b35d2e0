package depgraph

import (
	"errors"
	"fmt"
	"sort"

	graphlib "github.com/dominikbraun/graph"
)

// Edge is a resolved import from one file to another.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// ImportGraphResult is the outcome of one analysis call.
type ImportGraphResult struct {
	// Files is sorted, deduplicated, and contains only filtered source files.
	Files []string `json:"files"`
	// Entries are the requested entry points that were found, in request order.
	Entries []string           `json:"entries"`
	Errors  []ImportGraphError `json:"errors"`
	// Edges are the imports between members of Files, sorted.
	Edges []Edge `json:"edges,omitempty"`
	// Cycles are the import cycles among Files, each sorted.
	Cycles [][]string `json:"cycles,omitempty"`

	graph graphlib.Graph[string, string]
}

func emptyResult() ImportGraphResult {
	return ImportGraphResult{
		Files:   []string{},
		Entries: []string{},
		Errors:  []ImportGraphError{},
	}
}

func fatalResult(err ImportGraphError) ImportGraphResult {
	result := emptyResult()
	result.Errors = append(result.Errors, err)
	return result
}

// HasErrors reports whether any problem was recorded.
func (r ImportGraphResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// ErrorsOfType returns the recorded errors of one type.
func (r ImportGraphResult) ErrorsOfType(t ErrorType) []ImportGraphError {
	var matching []ImportGraphError
	for _, e := range r.Errors {
		if e.Type == t {
			matching = append(matching, e)
		}
	}
	return matching
}

// Graph returns the import graph among Files. Results that did not come
// from an Analyzer, such as decoded JSON, get a graph rebuilt from Files and
// Edges. Self-imports appear only in Edges and Cycles.
func (r ImportGraphResult) Graph() (graphlib.Graph[string, string], error) {
	if r.graph != nil {
		return r.graph, nil
	}

	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, file := range r.Files {
		if err := g.AddVertex(file); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, err
		}
	}
	for _, e := range r.Edges {
		if e.From == e.To {
			continue
		}
		err := g.AddEdge(e.From, e.To)
		if errors.Is(err, graphlib.ErrVertexNotFound) {
			return nil, fmt.Errorf("edge %s -> %s leaves the result files: %w", e.From, e.To, err)
		}
		if err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
			return nil, err
		}
	}
	return g, nil
}

// ErrNoChain is returned by Chain when no entry reaches the target.
var ErrNoChain = errors.New("no import chain")

// Chain returns the shortest import chain from any entry to target, starting
// with the entry and ending with target. Ties go to the earlier entry.
func (r ImportGraphResult) Chain(target string) ([]string, error) {
	g, err := r.Graph()
	if err != nil {
		return nil, err
	}
	if _, err := g.Vertex(target); err != nil {
		return nil, fmt.Errorf("%w: %s is not part of the result", ErrNoChain, target)
	}

	for _, entry := range r.Entries {
		if entry == target {
			return []string{target}, nil
		}
	}

	var best []string
	for _, entry := range r.Entries {
		if _, err := g.Vertex(entry); err != nil {
			continue
		}
		chain, err := graphlib.ShortestPath(g, entry, target)
		if err != nil {
			continue
		}
		if best == nil || len(chain) < len(best) {
			best = chain
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: no entry imports %s", ErrNoChain, target)
	}
	return best, nil
}

// subgraph builds the graph over the given files and the edges between them.
func subgraph(full graphlib.Graph[string, string], files []string) (graphlib.Graph[string, string], []Edge, error) {
	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	members := make(map[string]bool, len(files))
	for _, file := range files {
		members[file] = true
		if err := g.AddVertex(file); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
			return nil, nil, err
		}
	}

	adjacency, err := full.AdjacencyMap()
	if err != nil {
		return nil, nil, err
	}

	var edges []Edge
	for _, from := range files {
		for to := range adjacency[from] {
			if !members[to] {
				continue
			}
			edges = append(edges, Edge{From: from, To: to})
			if from == to {
				// Self-imports are reported as edges and cycles only.
				continue
			}
			if err := g.AddEdge(from, to); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
				return nil, nil, err
			}
		}
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return g, edges, nil
}

// findCycles returns every strongly connected component that forms a cycle.
func findCycles(g graphlib.Graph[string, string], edges []Edge) ([][]string, error) {
	components, err := graphlib.StronglyConnectedComponents(g)
	if err != nil {
		return nil, err
	}

	selfLoops := make(map[string]bool)
	for _, e := range edges {
		if e.From == e.To {
			selfLoops[e.From] = true
		}
	}

	var cycles [][]string
	for _, component := range components {
		if len(component) < 2 && !selfLoops[component[0]] {
			continue
		}
		cycle := append([]string(nil), component...)
		sort.Strings(cycle)
		cycles = append(cycles, cycle)
	}

	sort.Slice(cycles, func(i, j int) bool {
		return cycles[i][0] < cycles[j][0]
	})
	return cycles, nil
}
