// Package tsconfig loads the module resolution settings of a TypeScript
// project: resolution strategy, baseUrl and the "paths" alias table.
package tsconfig

import (
	"encoding/json"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/tailscale/hujson"

	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

// FileName is the configuration file searched for when no explicit path is given.
const FileName = "tsconfig.json"

// Context is the immutable resolution context of one project.
type Context struct {
	// ConfigPath is the tsconfig.json the context was loaded from.
	ConfigPath string
	// BaseDir anchors non-relative lookups: baseUrl when set, otherwise the
	// directory of ConfigPath.
	BaseDir string
	// BaseURL is the absolute baseUrl, or empty when the project sets none.
	BaseURL          string
	Module           string
	ModuleResolution ModuleResolution
	Aliases          []Alias
	OutDir           string
	RootDir          string

	fs vcs.FileSystem
}

// FileSystem returns the filesystem the context was loaded through.
func (c *Context) FileSystem() vcs.FileSystem {
	return c.fs
}

// MatchAlias returns the candidates of the first alias whose pattern matches.
func (c *Context) MatchAlias(specifier string) ([]string, bool) {
	for _, alias := range c.Aliases {
		if candidates, ok := alias.Match(specifier); ok {
			return candidates, true
		}
	}
	return nil, false
}

// Find locates the configuration file: explicitPath when it exists,
// otherwise the nearest tsconfig.json at or above rootDir.
func Find(fs vcs.FileSystem, rootDir, explicitPath string) (string, bool) {
	rootDir = normalize(rootDir)

	if explicitPath != "" {
		candidate := explicitPath
		if !path.IsAbs(filepath.ToSlash(candidate)) {
			candidate = path.Join(rootDir, filepath.ToSlash(candidate))
		}
		candidate = normalize(candidate)
		if fs.FileExists(candidate) {
			return candidate, true
		}
	}

	dir := rootDir
	for {
		candidate := path.Join(dir, FileName)
		if fs.FileExists(candidate) {
			return candidate, true
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// Load finds and parses the project configuration, following "extends".
// The returned error is always a *ConfigError.
func Load(fs vcs.FileSystem, rootDir, explicitPath string) (*Context, error) {
	configPath, ok := Find(fs, rootDir, explicitPath)
	if !ok {
		return nil, &ConfigError{Kind: KindNotFound, Path: normalize(rootDir)}
	}

	merged, err := loadChain(fs, configPath, map[string]bool{})
	if err != nil {
		return nil, err
	}

	ctx := &Context{
		ConfigPath: configPath,
		BaseDir:    path.Dir(configPath),
		fs:         fs,
	}

	if merged.baseURL != nil {
		ctx.BaseURL = *merged.baseURL
		ctx.BaseDir = ctx.BaseURL
	}
	if merged.module != nil {
		ctx.Module = *merged.module
	}
	ctx.ModuleResolution = defaultModuleResolution(ctx.Module)
	if merged.moduleResolution != nil {
		resolution, known := parseModuleResolution(*merged.moduleResolution)
		if !known {
			return nil, &ConfigError{
				Kind: KindParseError,
				Path: configPath,
				Err:  fmt.Errorf("unknown moduleResolution %q", *merged.moduleResolution),
			}
		}
		ctx.ModuleResolution = resolution
	}
	if merged.outDir != nil {
		ctx.OutDir = *merged.outDir
	}
	if merged.rootDir != nil {
		ctx.RootDir = *merged.rootDir
	}

	if merged.paths != nil {
		// Targets are relative to baseUrl, or to the declaring config without one.
		targetBase := merged.paths.declaredIn
		if ctx.BaseURL != "" {
			targetBase = ctx.BaseURL
		}
		for _, entry := range merged.paths.entries {
			alias := Alias{Pattern: entry.pattern}
			for _, target := range entry.targets {
				alias.Targets = append(alias.Targets, joinPath(targetBase, target))
			}
			ctx.Aliases = append(ctx.Aliases, alias)
		}
	}

	return ctx, nil
}

type pathEntry struct {
	pattern string
	targets []string
}

type pathTable struct {
	declaredIn string
	entries    []pathEntry
}

// settings holds one config file's compiler options with paths already
// made absolute. Nil fields are unset and inherit from extended configs.
type settings struct {
	baseURL          *string
	module           *string
	moduleResolution *string
	outDir           *string
	rootDir          *string
	paths            *pathTable
}

func (s *settings) override(other settings) {
	if other.baseURL != nil {
		s.baseURL = other.baseURL
	}
	if other.module != nil {
		s.module = other.module
	}
	if other.moduleResolution != nil {
		s.moduleResolution = other.moduleResolution
	}
	if other.outDir != nil {
		s.outDir = other.outDir
	}
	if other.rootDir != nil {
		s.rootDir = other.rootDir
	}
	if other.paths != nil {
		s.paths = other.paths
	}
}

type rawConfig struct {
	Extends         json.RawMessage `json:"extends"`
	CompilerOptions struct {
		BaseURL          *string             `json:"baseUrl"`
		Module           *string             `json:"module"`
		ModuleResolution *string             `json:"moduleResolution"`
		OutDir           *string             `json:"outDir"`
		RootDir          *string             `json:"rootDir"`
		Paths            map[string][]string `json:"paths"`
	} `json:"compilerOptions"`
}

func loadChain(fs vcs.FileSystem, configPath string, seen map[string]bool) (settings, error) {
	if seen[configPath] {
		return settings{}, &ConfigError{
			Kind: KindParseError,
			Path: configPath,
			Err:  fmt.Errorf("circular extends"),
		}
	}
	seen[configPath] = true
	defer delete(seen, configPath)

	data, err := fs.ReadFile(configPath)
	if err != nil {
		return settings{}, &ConfigError{Kind: KindReadError, Path: configPath, Err: err}
	}

	raw, pathOrder, err := parse(data)
	if err != nil {
		return settings{}, &ConfigError{Kind: KindParseError, Path: configPath, Err: err}
	}

	extends, err := parseExtends(raw.Extends)
	if err != nil {
		return settings{}, &ConfigError{Kind: KindParseError, Path: configPath, Err: err}
	}

	configDir := path.Dir(configPath)
	var merged settings
	for _, ref := range extends {
		parentPath, ok := resolveExtends(fs, configDir, ref)
		if !ok {
			return settings{}, &ConfigError{
				Kind: KindReadError,
				Path: configPath,
				Err:  fmt.Errorf("extended config %q not found", ref),
			}
		}
		parent, err := loadChain(fs, parentPath, seen)
		if err != nil {
			return settings{}, err
		}
		merged.override(parent)
	}

	own := settings{
		module:           raw.CompilerOptions.Module,
		moduleResolution: raw.CompilerOptions.ModuleResolution,
	}
	if raw.CompilerOptions.BaseURL != nil {
		baseURL := joinPath(configDir, *raw.CompilerOptions.BaseURL)
		own.baseURL = &baseURL
	}
	if raw.CompilerOptions.OutDir != nil {
		outDir := joinPath(configDir, *raw.CompilerOptions.OutDir)
		own.outDir = &outDir
	}
	if raw.CompilerOptions.RootDir != nil {
		rootDir := joinPath(configDir, *raw.CompilerOptions.RootDir)
		own.rootDir = &rootDir
	}
	if raw.CompilerOptions.Paths != nil {
		table := &pathTable{declaredIn: configDir}
		for _, pattern := range pathOrder {
			table.entries = append(table.entries, pathEntry{
				pattern: pattern,
				targets: raw.CompilerOptions.Paths[pattern],
			})
		}
		own.paths = table
	}

	merged.override(own)
	return merged, nil
}

// parse decodes JSON-with-comments and returns the "paths" keys in source
// order, which a plain map decode would lose.
func parse(data []byte) (rawConfig, []string, error) {
	var raw rawConfig

	value, err := hujson.Parse(data)
	if err != nil {
		return raw, nil, err
	}
	value.Standardize()

	if err := json.Unmarshal(value.Pack(), &raw); err != nil {
		return raw, nil, err
	}

	var order []string
	seen := make(map[string]bool)
	if paths := member(member(&value, "compilerOptions"), "paths"); paths != nil {
		if obj, ok := paths.Value.(*hujson.Object); ok {
			for _, m := range obj.Members {
				lit, ok := m.Name.Value.(hujson.Literal)
				if !ok {
					continue
				}
				var key string
				if err := json.Unmarshal(lit, &key); err != nil {
					return raw, nil, err
				}
				if !seen[key] {
					seen[key] = true
					order = append(order, key)
				}
			}
		}
	}

	return raw, order, nil
}

func member(v *hujson.Value, name string) *hujson.Value {
	if v == nil {
		return nil
	}
	obj, ok := v.Value.(*hujson.Object)
	if !ok {
		return nil
	}
	var found *hujson.Value
	for i := range obj.Members {
		var key string
		lit, ok := obj.Members[i].Name.Value.(hujson.Literal)
		if !ok || json.Unmarshal(lit, &key) != nil {
			continue
		}
		// Duplicate keys: the last one wins, as with encoding/json.
		if key == name {
			found = &obj.Members[i].Value
		}
	}
	return found
}

func parseExtends(raw json.RawMessage) ([]string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		return []string{single}, nil
	}

	var many []string
	if err := json.Unmarshal(raw, &many); err != nil {
		return nil, fmt.Errorf("extends must be a string or an array of strings")
	}
	return many, nil
}

func resolveExtends(fs vcs.FileSystem, configDir, ref string) (string, bool) {
	if isRelativeOrAbsolute(ref) {
		base := joinPath(configDir, ref)
		for _, candidate := range []string{base, base + ".json"} {
			if fs.FileExists(candidate) {
				return candidate, true
			}
		}
		return "", false
	}

	dir := configDir
	for {
		base := path.Join(dir, "node_modules", ref)
		for _, candidate := range []string{base, base + ".json", path.Join(base, FileName)} {
			if fs.FileExists(candidate) {
				return candidate, true
			}
		}
		parent := path.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func isRelativeOrAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../") ||
		ref == "." || ref == ".." || path.IsAbs(filepath.ToSlash(ref))
}

func joinPath(base, p string) string {
	p = filepath.ToSlash(p)
	if path.IsAbs(p) {
		return path.Clean(p)
	}
	return path.Join(base, p)
}

func normalize(p string) string {
	return path.Clean(filepath.ToSlash(p))
}
