package depgraph

import (
	"path"

	"github.com/charmbracelet/log"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph/languages/typescript"
	"github.com/LegacyCodeHQ/pkgtrace/depgraph/tsconfig"
	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

// DefaultResolutionCacheSize bounds the per-analyzer resolution memo.
const DefaultResolutionCacheSize = 4096

// probeExtensions is the order in which extensions are appended to an
// extensionless candidate. Declaration files come right after their
// TypeScript counterparts so they can redirect to a source sibling.
var probeExtensions = []string{
	".ts", ".tsx", ".d.ts",
	".mts", ".cts", ".d.mts", ".d.cts",
	".js", ".jsx", ".mjs", ".cjs",
}

type resolution struct {
	path string
	ok   bool
}

// ReferenceResolver turns a module specifier into an existing project file.
// Results are memoized per specifier and importing directory.
type ReferenceResolver struct {
	ctx    *tsconfig.Context
	fs     vcs.FileSystem
	cache  *lru.Cache[string, resolution]
	logger *log.Logger
}

// NewReferenceResolver creates a resolver over ctx. A cacheSize <= 0 uses
// DefaultResolutionCacheSize.
func NewReferenceResolver(ctx *tsconfig.Context, cacheSize int, logger *log.Logger) (*ReferenceResolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultResolutionCacheSize
	}
	cache, err := lru.New[string, resolution](cacheSize)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = discardLogger()
	}
	return &ReferenceResolver{
		ctx:    ctx,
		fs:     ctx.FileSystem(),
		cache:  cache,
		logger: logger,
	}, nil
}

// Resolve returns the file a specifier imported from fromFile refers to.
// It returns false for external modules, misses, and declaration files
// without a source sibling; none of these are errors.
func (r *ReferenceResolver) Resolve(specifier, fromFile string) (string, bool) {
	fromDir := path.Dir(fromFile)
	key := specifier + "\x00" + fromDir
	if cached, ok := r.cache.Get(key); ok {
		return cached.path, cached.ok
	}

	resolved, ok := r.resolve(specifier, fromDir)
	r.cache.Add(key, resolution{path: resolved, ok: ok})
	if !ok {
		r.logger.Debug("unresolved specifier", "specifier", specifier, "from", fromFile)
	}
	return resolved, ok
}

func (r *ReferenceResolver) resolve(specifier, fromDir string) (string, bool) {
	for _, candidate := range r.candidates(specifier, fromDir) {
		if resolved, ok := r.probe(candidate); ok {
			return r.finish(resolved)
		}
	}
	return "", false
}

// candidates lists the base paths to probe, in precedence order.
func (r *ReferenceResolver) candidates(specifier, fromDir string) []string {
	if typescript.IsRelative(specifier) {
		if path.IsAbs(specifier) {
			return []string{path.Clean(specifier)}
		}
		return []string{path.Join(fromDir, specifier)}
	}

	if targets, ok := r.ctx.MatchAlias(specifier); ok {
		return targets
	}

	if typescript.IsNodeBuiltin(specifier) {
		return nil
	}

	var candidates []string
	if r.ctx.BaseURL != "" {
		candidates = append(candidates, path.Join(r.ctx.BaseURL, specifier))
	}
	if r.ctx.ModuleResolution == tsconfig.ResolutionClassic {
		// Classic resolution looks for the module in every ancestor directory.
		for dir := fromDir; ; dir = path.Dir(dir) {
			candidates = append(candidates, path.Join(dir, specifier))
			if path.Dir(dir) == dir {
				break
			}
		}
	}
	return candidates
}

// probe applies extension probing and the index-file fallback to one base path.
func (r *ReferenceResolver) probe(base string) (string, bool) {
	if stem, exts := typescript.OutputExtensionAlternatives(base); exts != nil {
		for _, ext := range exts {
			if r.fs.FileExists(stem + ext) {
				return stem + ext, true
			}
		}
	}

	if path.Ext(base) != "" && r.fs.FileExists(base) {
		return base, true
	}

	for _, ext := range probeExtensions {
		if r.fs.FileExists(base + ext) {
			return base + ext, true
		}
	}

	if r.ctx.ModuleResolution.ProbesDirectoryIndex() && r.fs.DirectoryExists(base) {
		for _, ext := range probeExtensions {
			index := path.Join(base, "index"+ext)
			if r.fs.FileExists(index) {
				return index, true
			}
		}
	}

	return "", false
}

// finish redirects declaration files to their source sibling and drops
// anything under a third-party root.
func (r *ReferenceResolver) finish(resolved string) (string, bool) {
	if typescript.IsDeclarationFile(resolved) {
		redirected := ""
		for _, sibling := range typescript.SourceSiblings(resolved) {
			if r.fs.FileExists(sibling) {
				redirected = sibling
				break
			}
		}
		if redirected == "" {
			r.logger.Debug("declaration file has no source sibling", "path", resolved)
			return "", false
		}
		resolved = redirected
	}

	if IsExternalPath(resolved) {
		return "", false
	}
	return resolved, true
}
