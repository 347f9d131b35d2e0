package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LegacyCodeHQ/pkgtrace/vcs"
)

func buildFrom(t *testing.T, manifestJSON string, files map[string]string, opts Options) EntrySet {
	t.Helper()
	fs, err := vcs.NewMemoryFileSystem(files)
	require.NoError(t, err)

	m, err := Parse([]byte(manifestJSON))
	require.NoError(t, err)

	opts.FileSystem = fs
	if opts.PackageDir == "" {
		opts.PackageDir = "/pkg"
	}
	return BuildEntrySet(m, opts)
}

func TestBuildEntrySet_MainAndModule(t *testing.T) {
	set := buildFrom(t, `{"main": "./dist/index.cjs", "module": "./dist/index.mjs"}`, map[string]string{
		"/pkg/src/index.cts": ``,
		"/pkg/src/index.mts": ``,
	}, Options{})

	assert.Equal(t, []Entry{
		{Name: "main", SourcePath: "/pkg/src/index.cts"},
		{Name: "module", SourcePath: "/pkg/src/index.mts"},
	}, set.Entries)
}

func TestBuildEntrySet_ExportsConditions(t *testing.T) {
	set := buildFrom(t, `{
  "exports": {
    ".": {
      "types": "./dist/index.d.ts",
      "require": "./dist/index.cjs",
      "import": "./dist/index.js"
    },
    "./utils": ["./dist/utils/index.js"],
    "./package.json": "./package.json"
  }
}`, map[string]string{
		"/pkg/src/index.ts":       ``,
		"/pkg/src/utils/index.ts": ``,
		"/pkg/package.json":       `{}`,
	}, Options{})

	assert.Equal(t, []Entry{
		{Name: ".", SourcePath: "/pkg/src/index.ts"},
		{Name: "./package.json", SourcePath: "/pkg/package.json"},
		{Name: "./utils", SourcePath: "/pkg/src/utils/index.ts"},
	}, set.Entries)
}

func TestBuildEntrySet_SourceCondition(t *testing.T) {
	set := buildFrom(t, `{"exports": {"source": "./src/main.ts", "default": "./dist/main.js"}}`, map[string]string{
		"/pkg/src/main.ts": ``,
	}, Options{})

	assert.Equal(t, []string{"/pkg/src/main.ts"}, set.Paths())
}

func TestBuildEntrySet_SubpathPattern(t *testing.T) {
	set := buildFrom(t, `{"exports": {"./features/*": "./dist/features/*.js"}}`, map[string]string{
		"/pkg/src/features/alpha.ts":      ``,
		"/pkg/src/features/beta.tsx":      ``,
		"/pkg/src/features/beta.test.tsx": ``,
		"/pkg/src/features/README.md":     ``,
	}, Options{})

	assert.Equal(t, []Entry{
		{Name: "./features/alpha", SourcePath: "/pkg/src/features/alpha.ts"},
		{Name: "./features/beta", SourcePath: "/pkg/src/features/beta.tsx"},
	}, set.Entries)
}

func TestBuildEntrySet_Bin(t *testing.T) {
	single := buildFrom(t, `{"bin": "./bin/cli.js"}`, map[string]string{
		"/pkg/bin/cli.js": ``,
	}, Options{})
	assert.Equal(t, []Entry{{Name: "bin", SourcePath: "/pkg/bin/cli.js"}}, single.Entries)

	named := buildFrom(t, `{"bin": {"tool": "./build/tool.js", "other": "./build/other.js"}}`, map[string]string{
		"/pkg/src/tool.ts":  ``,
		"/pkg/src/other.ts": ``,
	}, Options{})
	assert.Equal(t, []Entry{
		{Name: "bin:other", SourcePath: "/pkg/src/other.ts"},
		{Name: "bin:tool", SourcePath: "/pkg/src/tool.ts"},
	}, named.Entries)
}

func TestBuildEntrySet_ConfiguredOutDir(t *testing.T) {
	set := buildFrom(t, `{"main": "./compiled/esm/index.js"}`, map[string]string{
		"/pkg/source/index.ts": ``,
	}, Options{OutDir: "/pkg/compiled/esm", SourceDir: "/pkg/source"})

	assert.Equal(t, []string{"/pkg/source/index.ts"}, set.Paths())
}

func TestBuildEntrySet_DeclarationTarget(t *testing.T) {
	set := buildFrom(t, `{"main": "./lib/index.d.ts"}`, map[string]string{
		"/pkg/src/index.ts": ``,
	}, Options{})

	assert.Equal(t, []string{"/pkg/src/index.ts"}, set.Paths())
}

func TestBuildEntrySet_MissingSourceKeepsBestGuess(t *testing.T) {
	set := buildFrom(t, `{"main": "./dist/index.js"}`, map[string]string{}, Options{})

	assert.Equal(t, []string{"/pkg/src/index.ts"}, set.Paths())
}

func TestBuildEntrySet_Empty(t *testing.T) {
	set := buildFrom(t, `{"name": "nothing"}`, map[string]string{}, Options{})
	assert.Empty(t, set.Entries)
	assert.Equal(t, []string{}, set.Paths())

	assert.Equal(t, EntrySet{Entries: []Entry{}}, BuildEntrySet(nil, Options{PackageDir: "/pkg"}))
}

func TestParse_Invalid(t *testing.T) {
	_, err := Parse([]byte(`{"main": 1}`))
	assert.Error(t, err)
}
