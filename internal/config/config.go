package config

import (
	"fmt"
	"os"
	"runtime"

	larnaverrors "github.com/standardbeagle/larnav/internal/errors"
)

type Config struct {
	Version     int
	Project     Project
	Scan        Scan
	Engine      Engine
	Resolution  Resolution
	Include     []string
	Exclude     []string
}

type Project struct {
	Root string
	Name string
}

// Scan controls project discovery and file watching.
type Scan struct {
	MaxFileSize      int64
	MaxFileCount     int
	FollowSymlinks   bool
	RespectGitignore bool // Process .gitignore files for additional exclusions
	WatchMode        bool // Enable file system watching for automatic rescans
	ScanVendor       bool // Include vendor/ service providers in registry scans
	ParallelWorkers  int  // 0 = auto-detect (NumCPU)
}

// Engine controls the incremental computation layer.
type Engine struct {
	InputDebounceMs       int // Debounce before committing buffer edits
	DiagnosticsDebounceMs int // Debounce before recomputing diagnostics
	ClosedFileCacheSize   int // Derived-value LRU capacity for closed files
	ProbeTTLMs            int // Filesystem existence probe cache lifetime
}

// Resolution controls convention-based target lookup.
type Resolution struct {
	// Locales is the translation fallback chain, probed in order.
	Locales []string
	// MaxSuggestions caps near-miss suggestions on missing targets.
	MaxSuggestions int
	// SuggestionDistance is the maximum edit distance for a near-miss.
	SuggestionDistance int
}

// Validate checks that config values are within reasonable ranges.
// Every violation is reported, not just the first one hit.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field string, value any, format string, args ...any) {
		errs = append(errs, larnaverrors.NewConfigError(field, fmt.Sprint(value), fmt.Errorf(format, args...)))
	}

	if c.Scan.MaxFileSize <= 0 {
		fail("scan.max_file_size", c.Scan.MaxFileSize, "must be positive")
	}
	if c.Engine.InputDebounceMs < 0 || c.Engine.InputDebounceMs > 5000 {
		fail("engine.input_debounce_ms", c.Engine.InputDebounceMs, "must be between 0 and 5000")
	}
	if c.Engine.DiagnosticsDebounceMs < c.Engine.InputDebounceMs {
		fail("engine.diagnostics_debounce_ms", c.Engine.DiagnosticsDebounceMs,
			"must not be smaller than input_debounce_ms (%d)", c.Engine.InputDebounceMs)
	}
	if c.Engine.ClosedFileCacheSize < 0 {
		fail("engine.closed_file_cache_size", c.Engine.ClosedFileCacheSize, "must not be negative")
	}
	if len(c.Resolution.Locales) == 0 {
		fail("resolution.locales", "", "must not be empty")
	}
	if c.Resolution.SuggestionDistance < 0 || c.Resolution.SuggestionDistance > 10 {
		fail("resolution.suggestion_distance", c.Resolution.SuggestionDistance, "must be between 0 and 10")
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return errs[0]
	}
	return larnaverrors.NewMultiError(errs)
}

func Load(path string) (*Config, error) {
	return LoadWithRoot(path, "")
}

func LoadWithRoot(path string, rootDir string) (*Config, error) {
	searchDir := "."
	if rootDir != "" {
		searchDir = rootDir
	}

	// Step 1: Load global base config from ~/.larnav.kdl (if exists)
	homeDir, err := os.UserHomeDir()
	var baseConfig *Config
	if err == nil {
		if globalCfg, err := LoadKDL(homeDir); err == nil && globalCfg != nil {
			baseConfig = globalCfg
		}
	}

	// Step 2: Load project-specific config from project directory
	var projectConfig *Config
	if kdlCfg, err := LoadKDL(searchDir); err == nil && kdlCfg != nil {
		projectConfig = kdlCfg
	} else if err != nil {
		return nil, err
	}

	// Step 3: Merge configs (project overrides base, but preserve base exclusions)
	if baseConfig != nil && projectConfig != nil {
		return mergeConfigs(baseConfig, projectConfig), nil
	} else if projectConfig != nil {
		return projectConfig, nil
	} else if baseConfig != nil {
		baseConfig.Project.Root = searchDir
		return baseConfig, nil
	}

	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	cfg := Default()
	cfg.Project.Root = cwd
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Version: 1,
		Project: Project{},
		Scan: Scan{
			MaxFileSize:      10 * 1024 * 1024,
			MaxFileCount:     50000,
			FollowSymlinks:   false,
			RespectGitignore: true,
			WatchMode:        true,
			ScanVendor:       false,
			ParallelWorkers:  runtime.NumCPU(),
		},
		Engine: Engine{
			InputDebounceMs:       30,
			DiagnosticsDebounceMs: 200,
			ClosedFileCacheSize:   256,
			ProbeTTLMs:            2000,
		},
		Resolution: Resolution{
			Locales:            []string{"en"},
			MaxSuggestions:     3,
			SuggestionDistance: 3,
		},
		Include: []string{},
		Exclude: []string{
			// Git metadata (never indexable)
			"**/.git/**",

			// Hidden directories (catch-all for dot directories)
			"**/.*/**",

			// Frontend dependencies and build output
			"**/node_modules/**",
			"**/public/build/**",
			"**/public/hot",
			"**/*.min.js",
			"**/*.min.css",

			// Laravel runtime state
			"**/storage/framework/**",
			"**/storage/logs/**",
			"**/bootstrap/cache/**",

			// Editor temp files
			"**/*.swp",
			"**/*.swo",
			"**/*~",

			// OS files
			"**/Thumbs.db",
			"**/.DS_Store",

			// Logs
			"**/*.log",
		},
	}
}

// mergeConfigs merges a base config with a project config
// Project config takes precedence, but base exclusions are preserved
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	if len(base.Exclude) > 0 {
		excludeMap := make(map[string]bool)
		for _, pattern := range base.Exclude {
			excludeMap[pattern] = true
		}
		for _, pattern := range project.Exclude {
			excludeMap[pattern] = true
		}
		merged.Exclude = make([]string, 0, len(excludeMap))
		for pattern := range excludeMap {
			merged.Exclude = append(merged.Exclude, pattern)
		}
	}

	// Inclusions: project overrides base completely if specified
	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}

	return &merged
}
