package typescript

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// SpecifierKind is the syntactic form a module specifier was found in.
type SpecifierKind int

const (
	StaticImport SpecifierKind = iota
	ReExport
	DynamicImport
	Require
)

func (k SpecifierKind) String() string {
	switch k {
	case StaticImport:
		return "import"
	case ReExport:
		return "export"
	case DynamicImport:
		return "dynamic-import"
	case Require:
		return "require"
	default:
		return "unknown"
	}
}

// Specifier is one module reference found in a source file.
type Specifier struct {
	Path     string
	Kind     SpecifierKind
	TypeOnly bool
	offset   uint32
}

type specifierQuery struct {
	kind    SpecifierKind
	pattern string
}

var specifierQueries = []specifierQuery{
	// import ... from 'module'; import 'module'
	{kind: StaticImport, pattern: `(import_statement source: (string) @source)`},
	// export * from 'module'; export { a } from 'module'
	{kind: ReExport, pattern: `(export_statement source: (string) @source)`},
	// import('module') with a literal argument
	{kind: DynamicImport, pattern: `(call_expression
  function: (import)
  arguments: (arguments . (string) @source))`},
	// require('module')
	{kind: Require, pattern: `(call_expression
  function: (identifier) @fn
  arguments: (arguments . (string) @source)
  (#eq? @fn "require"))`},
	// import(`module`) and require(`module`); templates with substitutions
	// are dropped in executeQuery
	{kind: DynamicImport, pattern: `(call_expression
  function: (import)
  arguments: (arguments . (template_string) @source))`},
	{kind: Require, pattern: `(call_expression
  function: (identifier) @fn
  arguments: (arguments . (template_string) @source)
  (#eq? @fn "require"))`},
	// import x = require('module'), TypeScript only
	{kind: Require, pattern: `(import_require_clause (string) @source)`},
}

// maxRecoveryDepth bounds how many syntax errors in one file are skipped
// over before the rest of the file is given up on.
const maxRecoveryDepth = 32

// ExtractSpecifiers returns the module specifiers referenced by a file in
// source order, without duplicates.
func ExtractSpecifiers(sourceCode []byte, filePath string) []string {
	specifiers, err := ParseSpecifiers(sourceCode, filePath)
	if err != nil {
		return nil
	}

	paths := make([]string, 0, len(specifiers))
	seen := make(map[string]bool, len(specifiers))
	for _, s := range specifiers {
		if seen[s.Path] {
			continue
		}
		seen[s.Path] = true
		paths = append(paths, s.Path)
	}
	return paths
}

// ParseSpecifiers parses a TypeScript or JavaScript file and returns every
// module reference with its syntactic kind, ordered by position.
//
// Tree-sitter can fold the statements after a malformed one into a single
// error node. When that happens parsing restarts on the line after the
// error, so later imports are still found. A reference on the malformed
// line itself is lost.
func ParseSpecifiers(sourceCode []byte, filePath string) ([]Specifier, error) {
	specifiers, err := parseFrom(sourceCode, grammarFor(filePath), 0)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filePath, err)
	}
	return specifiers, nil
}

func parseFrom(sourceCode []byte, g *grammar, depth int) ([]Specifier, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(g.language)

	tree, err := parser.ParseCtx(context.Background(), nil, sourceCode)
	if err != nil {
		return nil, err
	}
	defer tree.Close()

	root := tree.RootNode()
	specifiers := extractSpecifiersFromTree(root, sourceCode, g)
	if !root.HasError() || depth >= maxRecoveryDepth {
		return specifiers, nil
	}

	restart, ok := lineAfterFirstError(root, sourceCode)
	if !ok {
		return specifiers, nil
	}
	rest, err := parseFrom(sourceCode[restart:], g, depth+1)
	if err != nil {
		return specifiers, nil
	}

	seen := make(map[uint32]bool, len(specifiers))
	for _, s := range specifiers {
		seen[s.offset] = true
	}
	for _, s := range rest {
		s.offset += uint32(restart)
		if !seen[s.offset] {
			seen[s.offset] = true
			specifiers = append(specifiers, s)
		}
	}
	sort.SliceStable(specifiers, func(i, j int) bool {
		return specifiers[i].offset < specifiers[j].offset
	})
	return specifiers, nil
}

// lineAfterFirstError returns the offset of the line following the first
// ERROR node. Missing-token errors do not count.
func lineAfterFirstError(root *sitter.Node, sourceCode []byte) (int, bool) {
	errNode := firstErrorNode(root)
	if errNode == nil {
		return 0, false
	}
	start := int(errNode.StartByte())
	newline := bytes.IndexByte(sourceCode[start:], '\n')
	if newline < 0 {
		return 0, false
	}
	restart := start + newline + 1
	if restart >= len(sourceCode) {
		return 0, false
	}
	return restart, true
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil || !n.HasError() {
		return nil
	}
	if n.IsError() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

// grammar is a tree-sitter language plus the specifier queries that compile
// for it. Queries are compiled once and shared by every parse.
type grammar struct {
	language *sitter.Language

	once    sync.Once
	queries []compiledQuery
}

type compiledQuery struct {
	kind  SpecifierKind
	query *sitter.Query
}

var (
	typescriptGrammar = &grammar{language: typescript.GetLanguage()}
	tsxGrammar        = &grammar{language: tsx.GetLanguage()}
	javascriptGrammar = &grammar{language: javascript.GetLanguage()}
)

func grammarFor(filePath string) *grammar {
	switch strings.ToLower(path.Ext(filePath)) {
	case ".tsx":
		return tsxGrammar
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascriptGrammar
	default:
		return typescriptGrammar
	}
}

// compiledQueries returns the queries the grammar supports. A query that
// does not compile for a grammar (import x = require() outside TypeScript)
// is skipped.
func (g *grammar) compiledQueries() []compiledQuery {
	g.once.Do(func() {
		for _, q := range specifierQueries {
			query, err := sitter.NewQuery([]byte(q.pattern), g.language)
			if err != nil {
				continue
			}
			g.queries = append(g.queries, compiledQuery{kind: q.kind, query: query})
		}
	})
	return g.queries
}

// extractSpecifiersFromTree runs every query the grammar supports. If none
// compile the tree is walked by hand.
func extractSpecifiersFromTree(rootNode *sitter.Node, sourceCode []byte, g *grammar) []Specifier {
	var specifiers []Specifier

	queries := g.compiledQueries()
	for _, q := range queries {
		specifiers = append(specifiers, executeQuery(rootNode, sourceCode, q)...)
	}
	if len(queries) == 0 {
		specifiers = extractSpecifiersManually(rootNode, sourceCode)
	}

	sort.SliceStable(specifiers, func(i, j int) bool {
		return specifiers[i].offset < specifiers[j].offset
	})
	return specifiers
}

// executeQuery runs a tree-sitter query and collects its @source captures
func executeQuery(rootNode *sitter.Node, sourceCode []byte, q compiledQuery) []Specifier {
	cursor := sitter.NewQueryCursor()
	defer cursor.Close()

	cursor.Exec(q.query, rootNode)

	var specifiers []Specifier
	for {
		match, ok := cursor.NextMatch()
		if !ok {
			break
		}

		match = cursor.FilterPredicates(match, sourceCode)

		for _, capture := range match.Captures {
			if q.query.CaptureNameForId(capture.Index) != "source" {
				continue
			}

			if hasSubstitution(capture.Node) {
				continue
			}
			specifier := cleanImportPath(capture.Node.Content(sourceCode))
			if specifier == "" {
				continue
			}

			specifiers = append(specifiers, Specifier{
				Path:     specifier,
				Kind:     q.kind,
				TypeOnly: isTypeOnly(capture.Node),
				offset:   capture.Node.StartByte(),
			})
		}
	}

	return specifiers
}

// extractSpecifiersManually walks the AST to find import and export sources
func extractSpecifiersManually(node *sitter.Node, sourceCode []byte) []Specifier {
	var specifiers []Specifier

	var walk func(*sitter.Node)
	walk = func(n *sitter.Node) {
		if n == nil {
			return
		}

		kind := StaticImport
		switch n.Type() {
		case "export_statement":
			kind = ReExport
			fallthrough
		case "import_statement":
			for i := 0; i < int(n.ChildCount()); i++ {
				child := n.Child(i)
				if child != nil && child.Type() == "string" {
					if specifier := cleanImportPath(child.Content(sourceCode)); specifier != "" {
						specifiers = append(specifiers, Specifier{
							Path:     specifier,
							Kind:     kind,
							TypeOnly: isTypeOnly(child),
							offset:   child.StartByte(),
						})
					}
					break
				}
			}
		}

		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}

	walk(node)
	return specifiers
}

// isTypeOnly reports whether the statement owning a source string uses
// "import type" or "export type".
func isTypeOnly(source *sitter.Node) bool {
	parent := source.Parent()
	for parent != nil {
		switch parent.Type() {
		case "import_statement", "export_statement":
			for i := 0; i < int(parent.ChildCount()); i++ {
				child := parent.Child(i)
				if child != nil && child.Type() == "type" {
					return true
				}
			}
			return false
		case "program":
			return false
		}
		parent = parent.Parent()
	}
	return false
}

// hasSubstitution reports whether a template string interpolates a value.
func hasSubstitution(n *sitter.Node) bool {
	if n.Type() != "template_string" {
		return false
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == "template_substitution" {
			return true
		}
	}
	return false
}

// cleanImportPath removes quotes and backticks from import path strings
func cleanImportPath(raw string) string {
	cleaned := strings.Trim(raw, "'\"`")
	return strings.TrimSpace(cleaned)
}
