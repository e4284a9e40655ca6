package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

const kdlTemplate = `// larnav configuration
// Values shown are the defaults; delete what you do not change.

scan {
    max_file_size "10MB"       // Files above this are skipped
    scan_vendor false          // Include vendor/ service providers
    parallel_workers 0         // 0 = NumCPU
}

engine {
    input_debounce_ms 30       // Editor keystroke coalescing
    diagnostics_debounce_ms 200
    closed_file_cache_size 256 // Derived values kept for closed files
    probe_ttl_ms 2000          // Filesystem existence probe cache
}

resolution {
    locales "en"               // Translation fallback chain, in order
    max_suggestions 3
    suggestion_distance 2
}

// Add project-specific exclusions (replaces the defaults)
// exclude {
//     "storage/**"
//     "bootstrap/cache/**"
// }
`

func configInitCommand(c *cli.Context) error {
	output := c.String("output")
	if output == "" {
		output = ".larnav.kdl"
	}

	if !c.Bool("force") {
		if _, err := os.Stat(output); err == nil {
			return fmt.Errorf("configuration file %s already exists (use --force to overwrite)", output)
		}
	}

	if err := os.WriteFile(output, []byte(kdlTemplate), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Printf("Configuration file created: %s\n", output)
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, root, err := loadConfigWithOverrides(c)
	if err != nil {
		return err
	}

	fmt.Printf("project root:            %s\n", root)
	fmt.Printf("scan vendor:             %v\n", cfg.Scan.ScanVendor)
	fmt.Printf("max file size:           %d bytes\n", cfg.Scan.MaxFileSize)
	fmt.Printf("parallel workers:        %d\n", cfg.Scan.ParallelWorkers)
	fmt.Printf("input debounce:          %dms\n", cfg.Engine.InputDebounceMs)
	fmt.Printf("diagnostics debounce:    %dms\n", cfg.Engine.DiagnosticsDebounceMs)
	fmt.Printf("closed file cache size:  %d\n", cfg.Engine.ClosedFileCacheSize)
	fmt.Printf("probe TTL:               %dms\n", cfg.Engine.ProbeTTLMs)
	fmt.Printf("locales:                 %s\n", strings.Join(cfg.Resolution.Locales, ", "))
	fmt.Printf("max suggestions:         %d\n", cfg.Resolution.MaxSuggestions)
	return nil
}

func configValidateCommand(c *cli.Context) error {
	cfg, _, err := loadConfigWithOverrides(c)
	if err != nil {
		fmt.Printf("Configuration validation failed: %v\n", err)
		return cli.Exit("", 1)
	}

	var warnings []string
	if cfg.Engine.ClosedFileCacheSize > 0 && cfg.Engine.ClosedFileCacheSize < 16 {
		warnings = append(warnings, "closed_file_cache_size below 16 causes constant recomputation during navigation")
	}
	if cfg.Engine.ProbeTTLMs > 30000 {
		warnings = append(warnings, "probe_ttl_ms above 30s makes newly created files invisible for a long time")
	}
	if cfg.Scan.ScanVendor {
		warnings = append(warnings, "scan_vendor slows registry rebuilds considerably on large projects")
	}

	fmt.Println("Configuration is valid")
	for _, w := range warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	return nil
}
