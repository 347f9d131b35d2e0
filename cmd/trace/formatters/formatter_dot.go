package formatters

import (
	"strings"

	graphlib "github.com/dominikbraun/graph"
	"github.com/dominikbraun/graph/draw"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph"
)

// DOTFormatter formats the import graph among result files as Graphviz DOT.
type DOTFormatter struct{}

// Format draws one node per file, colored by module flavor, with entries
// outlined in bold. Self-imports are not drawn.
func (f *DOTFormatter) Format(result depgraph.ImportGraphResult, opts FormatOptions) (string, error) {
	imports, err := result.Graph()
	if err != nil {
		return "", err
	}
	adjacency, err := imports.AdjacencyMap()
	if err != nil {
		return "", err
	}

	entries := make(map[string]bool, len(result.Entries))
	for _, entry := range result.Entries {
		entries[entry] = true
	}

	g := graphlib.New(graphlib.StringHash, graphlib.Directed())
	for _, file := range result.Files {
		attributes := []func(*graphlib.VertexProperties){
			graphlib.VertexAttribute("shape", "box"),
			graphlib.VertexAttribute("style", "filled"),
			graphlib.VertexAttribute("fillcolor", fillColor(file)),
		}
		if entries[file] {
			attributes = append(attributes, graphlib.VertexAttribute("penwidth", "2"))
		}
		if err := g.AddVertex(DisplayPath(opts.RootDir, file), attributes...); err != nil {
			return "", err
		}
	}

	for _, from := range result.Files {
		for to := range adjacency[from] {
			if err := g.AddEdge(DisplayPath(opts.RootDir, from), DisplayPath(opts.RootDir, to)); err != nil {
				return "", err
			}
		}
	}

	var sb strings.Builder
	err = draw.DOT(g, &sb,
		draw.GraphAttribute("rankdir", "LR"),
		draw.GraphAttribute("label", opts.Label),
		draw.GraphAttribute("labelloc", "t"))
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
