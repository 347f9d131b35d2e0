// Package depgraph computes the set of project source files reachable from a
// set of TypeScript/JavaScript entry points.
package depgraph

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charmbracelet/log"
	graphlib "github.com/dominikbraun/graph"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph/languages/typescript"
	"github.com/LegacyCodeHQ/pkgtrace/depgraph/tsconfig"
	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

// Options configures an Analyzer.
type Options struct {
	// RootDir anchors relative entry paths and the tsconfig.json search.
	RootDir string
	// TSConfigPath optionally names the configuration file explicitly.
	TSConfigPath string
	// ExcludePatterns are extra substrings that drop files from the result.
	ExcludePatterns []string
	// FileSystem defaults to the real filesystem.
	FileSystem vcs.FileSystem
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// CacheSize bounds the resolution memo; <= 0 uses the default.
	CacheSize int
}

// Analyzer traces module reachability for one project. The resolution
// context is loaded on first use and reused by later calls.
type Analyzer struct {
	rootDir      string
	tsconfigPath string
	fs           vcs.FileSystem
	logger       *log.Logger
	filter       ResultFilter
	cacheSize    int

	mu       sync.Mutex
	ctx      *tsconfig.Context
	resolver *ReferenceResolver
}

// NewAnalyzer creates an analyzer. Configuration problems are reported by
// the trace calls, not here.
func NewAnalyzer(opts Options) (*Analyzer, error) {
	rootDir := opts.RootDir
	if rootDir == "" {
		rootDir = "."
	}
	if !filepath.IsAbs(rootDir) && !path.IsAbs(filepath.ToSlash(rootDir)) {
		abs, err := filepath.Abs(rootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root %s: %w", rootDir, err)
		}
		rootDir = abs
	}

	fs := opts.FileSystem
	if fs == nil {
		fs = vcs.NewOSFileSystem()
	}
	logger := opts.Logger
	if logger == nil {
		logger = discardLogger()
	}

	return &Analyzer{
		rootDir:      normalizePath(rootDir),
		tsconfigPath: opts.TSConfigPath,
		fs:           fs,
		logger:       logger,
		filter:       ResultFilter{ExcludePatterns: append([]string(nil), opts.ExcludePatterns...)},
		cacheSize:    opts.CacheSize,
	}, nil
}

// RootDir returns the normalized project root.
func (a *Analyzer) RootDir() string {
	return a.rootDir
}

// ResolutionContext loads the project's resolution context once. Failed
// loads are not cached.
func (a *Analyzer) ResolutionContext() (*tsconfig.Context, error) {
	ctx, _, err := a.resolution()
	return ctx, err
}

func (a *Analyzer) resolution() (*tsconfig.Context, *ReferenceResolver, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ctx != nil {
		return a.ctx, a.resolver, nil
	}

	ctx, err := tsconfig.Load(a.fs, a.rootDir, a.tsconfigPath)
	if err != nil {
		return nil, nil, err
	}
	resolver, err := NewReferenceResolver(ctx, a.cacheSize, a.logger)
	if err != nil {
		return nil, nil, err
	}

	a.logger.Debug("loaded resolution context",
		"config", ctx.ConfigPath,
		"moduleResolution", ctx.ModuleResolution,
		"aliases", len(ctx.Aliases))

	a.ctx = ctx
	a.resolver = resolver
	return ctx, resolver, nil
}

// traversalState is owned by a single TraceFromEntries call.
type traversalState struct {
	visited map[string]bool
	errors  []ImportGraphError
	graph   graphlib.Graph[string, string]
}

func newTraversalState() *traversalState {
	return &traversalState{
		visited: make(map[string]bool),
		errors:  []ImportGraphError{},
		graph:   graphlib.New(graphlib.StringHash, graphlib.Directed()),
	}
}

func (s *traversalState) markVisited(filePath string) error {
	s.visited[filePath] = true
	return s.addVertex(filePath)
}

func (s *traversalState) addVertex(filePath string) error {
	if err := s.graph.AddVertex(filePath); err != nil && !errors.Is(err, graphlib.ErrVertexAlreadyExists) {
		return fmt.Errorf("failed to record %s: %w", filePath, err)
	}
	return nil
}

// addEdge records an import. A file importing the same target twice is one
// edge.
func (s *traversalState) addEdge(from, to string) error {
	if err := s.addVertex(to); err != nil {
		return err
	}
	if err := s.graph.AddEdge(from, to); err != nil && !errors.Is(err, graphlib.ErrEdgeAlreadyExists) {
		return fmt.Errorf("failed to record import %s -> %s: %w", from, to, err)
	}
	return nil
}

// TraceFromEntries computes every public source file reachable from the
// entry paths. Relative entries are resolved against the root directory.
// Only configuration failures abort the call; everything else is recorded
// in the result's errors.
func (a *Analyzer) TraceFromEntries(entryPaths []string) ImportGraphResult {
	_, resolver, err := a.resolution()
	if err != nil {
		return fatalResult(a.configError(err))
	}

	state := newTraversalState()
	entries := []string{}
	seenEntries := make(map[string]bool)

	for _, entryPath := range entryPaths {
		absPath := a.absPath(entryPath)
		if !a.fs.FileExists(absPath) {
			a.record(state, ImportGraphError{
				Type:    ErrorEntryNotFound,
				Message: fmt.Sprintf("entry file not found: %s", entryPath),
				Path:    absPath,
			})
			continue
		}

		if !seenEntries[absPath] {
			seenEntries[absPath] = true
			entries = append(entries, absPath)
		}
		a.visit(absPath, resolver, state)
	}

	return a.buildResult(entries, state)
}

// visit expands the graph depth-first from start with an explicit stack.
// A path is marked visited before its imports are expanded, so every member
// of a cycle is expanded exactly once.
func (a *Analyzer) visit(start string, resolver *ReferenceResolver, state *traversalState) {
	stack := []string{start}

	for len(stack) > 0 {
		current := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if state.visited[current] {
			continue
		}
		if IsExternalPath(current) {
			continue
		}
		if err := state.markVisited(current); err != nil {
			a.logger.Error("failed to record file", "err", err)
		}

		// Non-code assets are members of the graph but have no imports.
		if !typescript.IsSourceFile(current) && !typescript.IsDeclarationFile(current) {
			continue
		}

		content, err := a.fs.ReadFile(current)
		if err != nil {
			a.record(state, ImportGraphError{
				Type:    ErrorFileReadError,
				Message: fmt.Sprintf("failed to read %s: %v", current, err),
				Path:    current,
			})
			continue
		}

		specifiers := typescript.ExtractSpecifiers(content, current)
		// Push in reverse so the first import is expanded first.
		for i := len(specifiers) - 1; i >= 0; i-- {
			target, ok := resolver.Resolve(specifiers[i], current)
			if !ok {
				continue
			}
			if err := state.addEdge(current, target); err != nil {
				a.logger.Error("failed to record import", "err", err)
			}
			if !state.visited[target] {
				stack = append(stack, target)
			}
		}
	}
}

// buildResult keeps the filtered files reachable from the entries without
// passing through an excluded file, so helpers imported only by tests stay
// out of the result even though they were visited. An excluded entry is
// still reported in Entries but contributes no files.
func (a *Analyzer) buildResult(entries []string, state *traversalState) ImportGraphResult {
	result := emptyResult()
	result.Entries = entries
	result.Errors = state.errors

	adjacency, err := state.graph.AdjacencyMap()
	if err != nil {
		a.logger.Error("failed to read traversal graph", "err", err)
		return result
	}

	reached := make(map[string]bool)
	queue := append([]string(nil), entries...)
	for _, entry := range entries {
		reached[entry] = true
	}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		if !a.filter.Include(current) {
			continue
		}
		for next := range adjacency[current] {
			if !reached[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for filePath := range reached {
		if state.visited[filePath] && a.filter.Include(filePath) {
			result.Files = append(result.Files, filePath)
		}
	}
	sort.Strings(result.Files)

	g, edges, err := subgraph(state.graph, result.Files)
	if err != nil {
		a.logger.Error("failed to build result graph", "err", err)
		return result
	}
	cycles, err := findCycles(g, edges)
	if err != nil {
		a.logger.Error("failed to detect cycles", "err", err)
	}

	result.graph = g
	result.Edges = edges
	result.Cycles = cycles
	return result
}

func (a *Analyzer) record(state *traversalState, e ImportGraphError) {
	a.logger.Debug("recorded error", "type", e.Type, "path", e.Path, "message", e.Message)
	state.errors = append(state.errors, e)
}

func (a *Analyzer) configError(err error) ImportGraphError {
	var configErr *tsconfig.ConfigError
	if !errors.As(err, &configErr) {
		return ImportGraphError{Type: ErrorTSConfigReadError, Message: err.Error()}
	}

	e := ImportGraphError{Message: configErr.Error(), Path: configErr.Path}
	switch configErr.Kind {
	case tsconfig.KindNotFound:
		e.Type = ErrorTSConfigNotFound
		e.Path = ""
	case tsconfig.KindReadError:
		e.Type = ErrorTSConfigReadError
	default:
		e.Type = ErrorTSConfigParseError
	}
	a.logger.Debug("resolution context unavailable", "type", e.Type, "message", e.Message)
	return e
}

func (a *Analyzer) absPath(p string) string {
	p = filepath.ToSlash(p)
	if path.IsAbs(p) || filepath.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(a.rootDir, p)
}

func normalizePath(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
