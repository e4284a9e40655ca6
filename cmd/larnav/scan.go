package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/larnav/internal/intel"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/types"
)

// fileDiagnostic is the JSON shape for one reported problem.
type fileDiagnostic struct {
	Path       string   `json:"path"`
	Line       uint     `json:"line"`
	Col        uint     `json:"col"`
	Severity   string   `json:"severity"`
	Kind       string   `json:"kind"`
	Target     string   `json:"target"`
	Message    string   `json:"message"`
	Candidates []string `json:"candidates,omitempty"`
	Suggest    []string `json:"suggestions,omitempty"`
}

func minSeverity(name string) (intel.Severity, error) {
	switch name {
	case "error":
		return intel.SeverityError, nil
	case "warning":
		return intel.SeverityWarning, nil
	case "info", "":
		return intel.SeverityInfo, nil
	}
	return 0, fmt.Errorf("unknown severity %q (want error, warning, or info)", name)
}

func scanCommand(c *cli.Context) error {
	proj, cfg, err := openProject(c)
	if err != nil {
		return err
	}

	floor, err := minSeverity(c.String("severity"))
	if err != nil {
		return err
	}

	svc := intel.NewService(proj, cfg)
	defer svc.Stop()

	start := time.Now()
	ctx := context.Background()
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("project scan failed: %w", err)
	}

	files, err := proj.Files(project.WalkOptions{Suffixes: []string{".php"}})
	if err != nil {
		return err
	}

	var all []fileDiagnostic
	errorCount := 0
	for _, path := range files {
		diags, err := svc.Diagnostics(path)
		if err != nil {
			return fmt.Errorf("diagnostics for %s: %w", path, err)
		}
		for _, d := range diags {
			if d.Severity > floor {
				continue
			}
			if d.Severity == intel.SeverityError {
				errorCount++
			}
			all = append(all, toFileDiagnostic(path, d))
		}
	}
	elapsed := time.Since(start)

	if c.Bool("json") {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(all); err != nil {
			return err
		}
	} else {
		for _, d := range all {
			fmt.Printf("%s:%d:%d: %s: %s\n", d.Path, d.Line, d.Col, d.Severity, d.Message)
			for _, s := range d.Suggest {
				fmt.Printf("  did you mean %q?\n", s)
			}
		}
		fmt.Printf("\n%d files, %d problems in %v\n", len(files), len(all), elapsed.Round(time.Millisecond))
	}

	if c.Bool("stats") {
		stats := svc.CacheStats()
		fmt.Fprintf(os.Stderr, "cache: %d hits, %d misses, %d evictions\n",
			stats.Hits, stats.Misses, stats.Evictions)
	}

	if errorCount > 0 {
		return cli.Exit("", 1)
	}
	return nil
}

func toFileDiagnostic(path string, d intel.Diagnostic) fileDiagnostic {
	return fileDiagnostic{
		Path:       path,
		Line:       d.Occurrence.ArgSpan.Row + 1,
		Col:        d.Occurrence.ArgSpan.Col + 1,
		Severity:   d.Severity.String(),
		Kind:       d.Occurrence.Kind.String(),
		Target:     d.Occurrence.Target,
		Message:    d.Message,
		Candidates: d.Result.Candidates,
		Suggest:    d.Result.Suggestions,
	}
}

func printResult(target string, res types.ResolutionResult, asJSON bool) error {
	if asJSON {
		out := struct {
			Target      string   `json:"target"`
			State       string   `json:"state"`
			Path        string   `json:"path,omitempty"`
			Line        uint     `json:"line,omitempty"`
			Detail      string   `json:"detail,omitempty"`
			Candidates  []string `json:"candidates,omitempty"`
			Suggestions []string `json:"suggestions,omitempty"`
		}{
			Target:      target,
			State:       res.State.String(),
			Path:        res.Location.Path,
			Line:        res.Location.Span.Row + 1,
			Detail:      res.Detail,
			Candidates:  res.Candidates,
			Suggestions: res.Suggestions,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}

	switch res.State {
	case types.Resolved:
		if res.Location.Path != "" {
			fmt.Printf("%s -> %s:%d\n", target, res.Location.Path, res.Location.Span.Row+1)
		} else {
			fmt.Printf("%s -> resolved\n", target)
		}
		if res.Detail != "" {
			fmt.Printf("  %s\n", res.Detail)
		}
	case types.Missing:
		fmt.Printf("%s -> missing\n", target)
		for _, cand := range res.Candidates {
			fmt.Printf("  probed %s\n", cand)
		}
		for _, s := range res.Suggestions {
			fmt.Printf("  did you mean %q?\n", s)
		}
	default:
		fmt.Printf("%s -> unavailable (registries not built yet)\n", target)
	}
	return nil
}
