package trace

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeProject creates files under a fresh temp directory and isolates the
// user's home directory so no ~/.pkgtrace.yaml leaks into the test.
func writeProject(t *testing.T, files map[string]string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())

	root := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
	return root
}

func executeTrace(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	cmd.SetArgs(args)

	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	err := cmd.Execute()
	return stdout.String(), err
}

// normalizeRoot replaces the temp project directory with $ROOT for golden files.
func normalizeRoot(root, output string) string {
	return strings.ReplaceAll(output, root, "$ROOT")
}

func traceGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t, goldie.WithNameSuffix(".gold.txt"))
}

var sampleProject = map[string]string{
	"tsconfig.json": `{
  // comments are allowed
  "compilerOptions": {
    "baseUrl": ".",
    "paths": {"@/*": ["src/*"]},
  },
}`,
	"src/index.ts":                "import { foo } from './utils.js';\nimport { bar } from '@/lib/bar';\nexport { foo, bar };\n",
	"src/utils.ts":                "export const foo = 1;\n",
	"src/lib/bar.ts":              "import React from 'react';\nexport const bar = () => import('./lazy');\n",
	"src/lib/lazy.ts":             "export default 42;\n",
	"src/index.test.ts":           "import { foo } from './index';\nimport { helper } from './test-helper';\n",
	"src/test-helper.ts":          "export const helper = 1;\n",
	"src/unused.ts":               "export const unused = 1;\n",
	"node_modules/react/index.js": "module.exports = {};\n",
}

func TestTraceCommand_Text(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "src/index.ts")
	require.NoError(t, err)

	traceGoldie(t).Assert(t, t.Name(), []byte(normalizeRoot(root, output)))
}

func TestTraceCommand_JSON(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "-f", "json", "src/index.ts")
	require.NoError(t, err)

	traceGoldie(t).Assert(t, t.Name(), []byte(normalizeRoot(root, output)))
}

func TestTraceCommand_DOT(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "-f", "dot", "src/index.ts")
	require.NoError(t, err)

	assert.Contains(t, output, `"src/index.ts" -> "src/utils.ts"`)
	assert.Contains(t, output, `"src/lib/bar.ts" -> "src/lib/lazy.ts"`)
	assert.NotContains(t, output, "test-helper")
}

func TestTraceCommand_MissingEntry(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "src/index.ts", "src/missing.ts")
	require.NoError(t, err)

	traceGoldie(t).Assert(t, t.Name(), []byte(normalizeRoot(root, output)))
}

func TestTraceCommand_FailOnError(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "--fail-on-error", "src/missing.ts", "src/gone.ts", "src/index.ts")
	require.ErrorIs(t, err, ErrAnalysisReportedErrors)
	assert.EqualError(t, err, "analysis reported errors: 2 entry_not_found")
	assert.Contains(t, output, "entry_not_found")
}

func TestTraceCommand_Exclude(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "-x", "/lib/", "src/index.ts")
	require.NoError(t, err)

	assert.Contains(t, output, "src/utils.ts")
	assert.NotContains(t, output, "src/lib/bar.ts")
	assert.NotContains(t, output, "src/lib/lazy.ts")
}

func TestTraceCommand_ConfigFile(t *testing.T) {
	files := map[string]string{".pkgtrace.yaml": "format: json\nexclude:\n  - utils\n"}
	for name, content := range sampleProject {
		files[name] = content
	}
	root := writeProject(t, files)

	output, err := executeTrace(t, "-r", root, "src/index.ts")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(output, "{"), "config file selects JSON output")
	assert.NotContains(t, output, "src/utils.ts")
}

func TestTraceCommand_Manifest(t *testing.T) {
	files := map[string]string{
		"package.json": `{
  "name": "sample",
  "main": "./dist/index.js",
  "exports": {
    ".": {"types": "./dist/index.d.ts", "import": "./dist/index.js"},
    "./utils": "./dist/utils.js"
  }
}`,
	}
	for name, content := range sampleProject {
		files[name] = content
	}
	root := writeProject(t, files)

	output, err := executeTrace(t, "-r", root)
	require.NoError(t, err)

	traceGoldie(t).Assert(t, t.Name(), []byte(normalizeRoot(root, output)))
}

func TestTraceCommand_MissingManifest(t *testing.T) {
	root := writeProject(t, sampleProject)

	output, err := executeTrace(t, "-r", root, "--fail-on-error")
	require.Error(t, err)
	assert.Contains(t, output, "package_json_not_found")
}

func TestTraceCommand_ManifestWithEntries(t *testing.T) {
	root := writeProject(t, sampleProject)

	_, err := executeTrace(t, "-r", root, "-m", "package.json", "src/index.ts")
	assert.ErrorContains(t, err, "--manifest cannot be used with explicit entries")
}

func TestTraceCommand_UnknownFormat(t *testing.T) {
	root := writeProject(t, sampleProject)

	_, err := executeTrace(t, "-r", root, "-f", "svg", "src/index.ts")
	assert.ErrorContains(t, err, "unknown format")
}

func TestTraceCommand_MissingTSConfig(t *testing.T) {
	root := writeProject(t, map[string]string{
		"src/index.ts": "export {};\n",
	})

	output, err := executeTrace(t, "-r", root, "-p", "tsconfig.json", "src/index.ts")
	require.NoError(t, err)

	assert.Contains(t, output, "tsconfig_not_found")
	assert.Contains(t, output, "Files (0)")
}
