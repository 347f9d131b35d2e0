package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolateHome(t *testing.T) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolateHome(t)

	cfg, err := LoadConfig(t.TempDir(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, DefaultCacheSize, cfg.CacheSize)
	assert.Empty(t, cfg.TSConfig)
	assert.Empty(t, cfg.Exclude)
	assert.Empty(t, cfg.Manifest)
}

func TestLoadConfig_FromRootDir(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	content := `tsconfig: tsconfig.build.json
exclude:
  - /generated/
  - .stories.
format: json
manifest: packages/core/package.json
cache_size: 128
`
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pkgtrace.yaml"), []byte(content), 0o644))

	cfg, err := LoadConfig(root, "")
	require.NoError(t, err)

	assert.Equal(t, "tsconfig.build.json", cfg.TSConfig)
	assert.Equal(t, []string{"/generated/", ".stories."}, cfg.Exclude)
	assert.Equal(t, "json", cfg.Format)
	assert.Equal(t, "packages/core/package.json", cfg.Manifest)
	assert.Equal(t, 128, cfg.CacheSize)
}

func TestLoadConfig_ExplicitPath(t *testing.T) {
	isolateHome(t)
	dir := t.TempDir()
	configPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("format: dot\n"), 0o644))

	cfg, err := LoadConfig(t.TempDir(), configPath)
	require.NoError(t, err)
	assert.Equal(t, "dot", cfg.Format)
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pkgtrace.yaml"), []byte("format: json\n"), 0o644))
	t.Setenv("PKGTRACE_FORMAT", "dot")

	cfg, err := LoadConfig(root, "")
	require.NoError(t, err)
	assert.Equal(t, "dot", cfg.Format)
}

func TestLoadConfig_InvalidFormat(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pkgtrace.yaml"), []byte("format: svg\n"), 0o644))

	_, err := LoadConfig(root, "")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestLoadConfig_InvalidCacheSize(t *testing.T) {
	isolateHome(t)
	t.Setenv("PKGTRACE_CACHE_SIZE", "-1")

	_, err := LoadConfig(t.TempDir(), "")
	assert.ErrorIs(t, err, ErrInvalidCacheSize)
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	isolateHome(t)
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, ".pkgtrace.yaml"), []byte("format: [unclosed\n"), 0o644))

	_, err := LoadConfig(root, "")
	assert.Error(t, err)
}
