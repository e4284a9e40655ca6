package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 30, cfg.Engine.InputDebounceMs)
	assert.Equal(t, 200, cfg.Engine.DiagnosticsDebounceMs)
	assert.Equal(t, 256, cfg.Engine.ClosedFileCacheSize)
	assert.Equal(t, []string{"en"}, cfg.Resolution.Locales)
	assert.True(t, cfg.Scan.RespectGitignore)
	assert.False(t, cfg.Scan.ScanVendor)
}

func TestParseKDL_EngineConfig(t *testing.T) {
	kdlContent := `
engine {
    input_debounce_ms 50
    diagnostics_debounce_ms 400
    closed_file_cache_size 64
    probe_ttl_ms 1000
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 50, cfg.Engine.InputDebounceMs)
	assert.Equal(t, 400, cfg.Engine.DiagnosticsDebounceMs)
	assert.Equal(t, 64, cfg.Engine.ClosedFileCacheSize)
	assert.Equal(t, 1000, cfg.Engine.ProbeTTLMs)
}

func TestParseKDL_ResolutionLocales(t *testing.T) {
	kdlContent := `
resolution {
    locales "fr" "en"
    max_suggestions 5
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, []string{"fr", "en"}, cfg.Resolution.Locales)
	assert.Equal(t, 5, cfg.Resolution.MaxSuggestions)
	// Unset fields keep defaults
	assert.Equal(t, 3, cfg.Resolution.SuggestionDistance)
}

func TestParseKDL_ScanConfig(t *testing.T) {
	kdlContent := `
scan {
    max_file_size "2MB"
    respect_gitignore false
    scan_vendor false
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, int64(2*1024*1024), cfg.Scan.MaxFileSize)
	assert.False(t, cfg.Scan.RespectGitignore)
	assert.False(t, cfg.Scan.ScanVendor)
}

func TestParseKDL_ExcludeBlockReplacesDefaults(t *testing.T) {
	kdlContent := `
exclude {
    "**/node_modules/**"
}
`
	cfg, err := parseKDL(kdlContent)
	require.NoError(t, err)

	assert.Equal(t, []string{"**/node_modules/**"}, cfg.Exclude)
}

func TestParseKDL_InvalidDebounceOrder(t *testing.T) {
	kdlContent := `
engine {
    input_debounce_ms 300
    diagnostics_debounce_ms 100
}
`
	_, err := parseKDL(kdlContent)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "diagnostics_debounce_ms")
}

func TestLoadKDL_MissingFileReturnsNil(t *testing.T) {
	dir := t.TempDir()
	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	assert.Nil(t, cfg)
}

func TestLoadKDL_RelativeRootResolvesAgainstConfigDir(t *testing.T) {
	dir := t.TempDir()
	content := `
project {
    root "app"
}
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".larnav.kdl"), []byte(content), 0644))

	cfg, err := LoadKDL(dir)
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, filepath.Join(dir, "app"), cfg.Project.Root)
}

func TestMergeConfigs_ExclusionsCombine(t *testing.T) {
	base := Default()
	base.Exclude = []string{"**/a/**"}
	project := Default()
	project.Exclude = []string{"**/b/**"}

	merged := mergeConfigs(base, project)
	assert.ElementsMatch(t, []string{"**/a/**", "**/b/**"}, merged.Exclude)
}
