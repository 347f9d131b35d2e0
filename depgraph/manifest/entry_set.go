package manifest

import (
	"encoding/json"
	"path"
	"sort"
	"strings"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph/languages/typescript"
	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

// Entry is one published entry point mapped back to the source tree.
type Entry struct {
	Name       string `json:"name"`
	SourcePath string `json:"sourcePath"`
}

// EntrySet holds entries sorted by name.
type EntrySet struct {
	Entries []Entry `json:"entries"`
}

// Paths returns the source paths in entry order.
func (s EntrySet) Paths() []string {
	paths := make([]string, 0, len(s.Entries))
	for _, e := range s.Entries {
		paths = append(paths, e.SourcePath)
	}
	return paths
}

// Options tells the builder where the package lives and how its build
// output maps back to sources.
type Options struct {
	FileSystem vcs.FileSystem
	// PackageDir is the absolute directory containing package.json.
	PackageDir string
	// OutDir is the absolute build output directory, if the project sets one.
	OutDir string
	// SourceDir is the absolute source root; defaults to <PackageDir>/src.
	SourceDir string
}

// buildOutputDirs are directory names conventionally holding emitted files.
var buildOutputDirs = []string{"dist", "lib", "build", "out"}

// conditionPriority orders export conditions from most to least source-like.
// "types" is never followed since it names declaration output.
var conditionPriority = []string{"source", "import", "module", "default", "require", "node"}

// BuildEntrySet maps a manifest's exports, main, module and bin fields to
// source paths. It never fails: unusable fields are skipped and a manifest
// without entry points yields an empty set.
func BuildEntrySet(m *Manifest, opts Options) EntrySet {
	b := &builder{opts: opts, entries: make(map[string]string)}
	if b.opts.SourceDir == "" {
		b.opts.SourceDir = path.Join(opts.PackageDir, "src")
	}
	if m == nil {
		return EntrySet{Entries: []Entry{}}
	}

	b.addExports(m.Exports)
	if m.Main != "" {
		b.add("main", m.Main)
	}
	if m.Module != "" {
		b.add("module", m.Module)
	}
	b.addBin(m.Bin)

	names := make([]string, 0, len(b.entries))
	for name := range b.entries {
		names = append(names, name)
	}
	sort.Strings(names)

	set := EntrySet{Entries: make([]Entry, 0, len(names))}
	for _, name := range names {
		set.Entries = append(set.Entries, Entry{Name: name, SourcePath: b.entries[name]})
	}
	return set
}

type builder struct {
	opts    Options
	entries map[string]string
}

func (b *builder) add(name, target string) {
	if target == "" {
		return
	}
	b.entries[name] = b.toSource(target)
}

func (b *builder) addExports(raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}

	var value any
	if err := json.Unmarshal(raw, &value); err != nil {
		return
	}

	obj, ok := value.(map[string]any)
	if !ok || !isSubpathMap(obj) {
		if target, ok := pickTarget(value); ok {
			b.add(".", target)
		}
		return
	}

	for subpath, conditions := range obj {
		target, ok := pickTarget(conditions)
		if !ok {
			continue
		}
		if strings.Contains(subpath, "*") {
			b.expandPattern(subpath, target)
			continue
		}
		b.add(subpath, target)
	}
}

func (b *builder) addBin(raw json.RawMessage) {
	if len(raw) == 0 || string(raw) == "null" {
		return
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		b.add("bin", single)
		return
	}

	var named map[string]string
	if err := json.Unmarshal(raw, &named); err != nil {
		return
	}
	for name, target := range named {
		b.add("bin:"+name, target)
	}
}

// isSubpathMap reports whether an exports object is keyed by subpaths
// ("./x") rather than by conditions.
func isSubpathMap(obj map[string]any) bool {
	if len(obj) == 0 {
		return false
	}
	for key := range obj {
		if !strings.HasPrefix(key, ".") {
			return false
		}
	}
	return true
}

// pickTarget reduces an export target (string, condition object or fallback
// array) to a single path.
func pickTarget(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []any:
		for _, item := range v {
			if target, ok := pickTarget(item); ok {
				return target, true
			}
		}
	case map[string]any:
		for _, condition := range conditionPriority {
			if nested, ok := v[condition]; ok {
				if target, ok := pickTarget(nested); ok {
					return target, true
				}
			}
		}
		remaining := make([]string, 0, len(v))
		for condition := range v {
			remaining = append(remaining, condition)
		}
		sort.Strings(remaining)
		for _, condition := range remaining {
			if condition == "types" || isKnownCondition(condition) {
				continue
			}
			if target, ok := pickTarget(v[condition]); ok {
				return target, true
			}
		}
	}
	return "", false
}

func isKnownCondition(condition string) bool {
	for _, known := range conditionPriority {
		if condition == known {
			return true
		}
	}
	return false
}

// expandPattern enumerates the source directory behind a "./x/*" subpath.
// Only a "*" in the last path segment is supported.
func (b *builder) expandPattern(subpath, target string) {
	star := strings.IndexByte(target, '*')
	if star < 0 || strings.Contains(target[star:], "/") {
		return
	}

	dir := b.sourceCandidates(strings.TrimSuffix(target[:star], "/") + "/_")[0]
	dir = path.Dir(dir)
	if !b.opts.FileSystem.DirectoryExists(dir) {
		return
	}

	names, err := b.opts.FileSystem.ReadDirectory(dir)
	if err != nil {
		return
	}
	for _, name := range names {
		filePath := path.Join(dir, name)
		if !typescript.IsSourceFile(filePath) || typescript.IsTestFile(filePath) {
			continue
		}
		if !b.opts.FileSystem.FileExists(filePath) {
			continue
		}
		stem := strings.TrimSuffix(name, path.Ext(name))
		b.entries[strings.Replace(subpath, "*", stem, 1)] = filePath
	}
}

// toSource maps a published path to an existing source file, or to the most
// likely source path when none exists so the traversal can report it.
func (b *builder) toSource(target string) string {
	candidates := b.sourceCandidates(target)
	for _, candidate := range candidates {
		if resolved, ok := b.probe(candidate); ok {
			return resolved
		}
	}
	guess := candidates[0]
	if stem, exts := typescript.OutputExtensionAlternatives(guess); exts != nil {
		return stem + exts[0]
	}
	return guess
}

// sourceCandidates lists where a published path may come from, most
// likely first: the build output directory swapped for the source root,
// then the path as written.
func (b *builder) sourceCandidates(target string) []string {
	literal := path.Join(b.opts.PackageDir, target)
	var candidates []string

	outDirs := make([]string, 0, len(buildOutputDirs)+1)
	if b.opts.OutDir != "" {
		outDirs = append(outDirs, b.opts.OutDir)
	}
	for _, dir := range buildOutputDirs {
		outDirs = append(outDirs, path.Join(b.opts.PackageDir, dir))
	}

	for _, outDir := range outDirs {
		if rel, ok := strings.CutPrefix(literal, outDir+"/"); ok {
			candidates = append(candidates, path.Join(b.opts.SourceDir, rel))
			break
		}
	}
	return append(candidates, literal)
}

func (b *builder) probe(candidate string) (string, bool) {
	fs := b.opts.FileSystem

	base := candidate
	if stem, ok := declarationStem(candidate); ok {
		base = stem
	} else if stem, exts := typescript.OutputExtensionAlternatives(candidate); exts != nil {
		for _, ext := range exts {
			if fs.FileExists(stem + ext) {
				return stem + ext, true
			}
		}
	}

	if typescript.IsSourceFile(base) && fs.FileExists(base) {
		return base, true
	}
	for _, ext := range typescript.SourceExtensions {
		if fs.FileExists(base + ext) {
			return base + ext, true
		}
	}
	if fs.DirectoryExists(base) {
		for _, ext := range typescript.SourceExtensions {
			index := path.Join(base, "index"+ext)
			if fs.FileExists(index) {
				return index, true
			}
		}
	}
	return "", false
}

func declarationStem(filePath string) (string, bool) {
	if !typescript.IsDeclarationFile(filePath) {
		return "", false
	}
	siblings := typescript.SourceSiblings(filePath)
	return strings.TrimSuffix(siblings[0], ".ts"), true
}
