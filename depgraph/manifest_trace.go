package depgraph

import (
	"errors"
	"fmt"
	"path"

	"github.com/LegacyCodeHQ/pkgtrace/depgraph/manifest"
)

// LoadEntrySet reads a package manifest and maps its published entry points
// to source paths. An empty manifestPath means <root>/package.json. Errors
// are ImportGraphError values of a package_json type.
func (a *Analyzer) LoadEntrySet(manifestPath string) (manifest.EntrySet, error) {
	if manifestPath == "" {
		manifestPath = path.Join(a.rootDir, manifest.FileName)
	}
	manifestPath = a.absPath(manifestPath)

	if !a.fs.FileExists(manifestPath) {
		return manifest.EntrySet{}, ImportGraphError{
			Type:    ErrorPackageJSONNotFound,
			Message: fmt.Sprintf("%s not found", manifestPath),
			Path:    manifestPath,
		}
	}

	data, err := a.fs.ReadFile(manifestPath)
	if err != nil {
		return manifest.EntrySet{}, ImportGraphError{
			Type:    ErrorPackageJSONParseError,
			Message: fmt.Sprintf("failed to read %s: %v", manifestPath, err),
			Path:    manifestPath,
		}
	}

	m, err := manifest.Parse(data)
	if err != nil {
		return manifest.EntrySet{}, ImportGraphError{
			Type:    ErrorPackageJSONParseError,
			Message: err.Error(),
			Path:    manifestPath,
		}
	}

	opts := manifest.Options{
		FileSystem: a.fs,
		PackageDir: path.Dir(manifestPath),
	}
	if ctx, err := a.ResolutionContext(); err == nil {
		opts.OutDir = ctx.OutDir
		opts.SourceDir = ctx.RootDir
	}

	set := manifest.BuildEntrySet(m, opts)
	a.logger.Debug("built entry set", "manifest", manifestPath, "entries", len(set.Entries))
	return set, nil
}

// TraceFromManifest traces the entry points published by a package manifest.
// Manifest problems return an empty result carrying that single error.
func (a *Analyzer) TraceFromManifest(manifestPath string) ImportGraphResult {
	set, err := a.LoadEntrySet(manifestPath)
	if err != nil {
		var graphErr ImportGraphError
		if !errors.As(err, &graphErr) {
			graphErr = ImportGraphError{Type: ErrorPackageJSONParseError, Message: err.Error()}
		}
		return fatalResult(graphErr)
	}
	return a.TraceFromEntries(set.Paths())
}
