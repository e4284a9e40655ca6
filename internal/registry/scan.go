package registry

import (
	"context"
	"os"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/types"
)

// Scanner builds registry snapshots from a project tree.
type Scanner struct {
	proj *project.Project
	cfg  *config.Config
}

func NewScanner(proj *project.Project, cfg *config.Config) *Scanner {
	return &Scanner{proj: proj, cfg: cfg}
}

// Files that can register middleware, bindings, or routes. Scans stay
// narrow: a full-project walk is the extractor's job, not the registry's.
func (s *Scanner) registrationFiles() ([]string, error) {
	var out []string

	for _, fixed := range []string{"bootstrap/app.php", "app/Http/Kernel.php"} {
		if s.proj.Exists(fixed) {
			out = append(out, fixed)
		}
	}

	providers, err := s.proj.Files(project.WalkOptions{Subdir: "app/Providers", Suffixes: []string{".php"}})
	if err != nil {
		return nil, err
	}
	out = append(out, providers...)

	if s.cfg.Scan.ScanVendor {
		vendor, err := s.proj.Files(project.WalkOptions{Subdir: "vendor", Suffixes: []string{"ServiceProvider.php"}, IncludeVendor: true})
		if err != nil {
			return nil, err
		}
		out = append(out, vendor...)
	}

	return out, nil
}

// Scan builds a complete snapshot. Partial failure is tolerated: a file
// that fails to read or parse is counted and skipped, never fatal.
func (s *Scanner) Scan(ctx context.Context) (*Snapshot, error) {
	started := time.Now()
	snap := newSnapshot()

	var mu sync.Mutex
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerLimit())

	regFiles, err := s.registrationFiles()
	if err != nil {
		return nil, err
	}
	routeFiles, err := s.proj.Files(project.WalkOptions{Subdir: "routes", Suffixes: []string{".php"}})
	if err != nil {
		return nil, err
	}
	configFiles, err := s.proj.Files(project.WalkOptions{Subdir: "config", Suffixes: []string{".php"}})
	if err != nil {
		return nil, err
	}

	scanPHP := func(rel string, handle func(rel string, res *parser.Result, tier types.SourceTier)) func() error {
		return func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(s.proj.Abs(rel))
			if err != nil {
				return nil
			}
			res, err := parser.Parse(types.InvalidFileID, rel, types.DialectPHP, content)
			if err != nil {
				mu.Lock()
				snap.Stats.ParseErrors++
				mu.Unlock()
				return nil
			}
			defer res.Close()

			handle(rel, res, s.proj.TierFor(rel))

			mu.Lock()
			snap.Stats.FilesScanned++
			mu.Unlock()
			return nil
		}
	}

	for _, rel := range regFiles {
		g.Go(scanPHP(rel, func(rel string, res *parser.Result, tier types.SourceTier) {
			regs := collectRegistrations(rel, res, tier)
			mu.Lock()
			defer mu.Unlock()
			for _, r := range regs.Middleware {
				merge(snap.Middleware, r)
			}
			for _, r := range regs.Bindings {
				merge(snap.Bindings, r)
			}
		}))
	}

	for _, rel := range routeFiles {
		g.Go(scanPHP(rel, func(rel string, res *parser.Result, tier types.SourceTier) {
			regs := collectRegistrations(rel, res, tier)
			mu.Lock()
			defer mu.Unlock()
			for _, r := range regs.Routes {
				merge(snap.Routes, r)
			}
			// routes/*.php also register middleware via fluent chains;
			// those are occurrences, not registrations, so only names
			// flow here.
		}))
	}

	for _, rel := range configFiles {
		g.Go(scanPHP(rel, func(rel string, res *parser.Result, tier types.SourceTier) {
			keys := collectConfigKeys(rel, res, tier)
			mu.Lock()
			defer mu.Unlock()
			for _, r := range keys {
				merge(snap.Config, r)
			}
		}))
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Env scan is sequential: precedence between the three files is
	// ordering, not merging.
	s.scanEnv(snap)

	snap.BuiltAt = time.Now()
	snap.Stats.Duration = time.Since(started)
	debug.LogRegistry("scan complete: %d files, %d middleware, %d bindings, %d routes, %d config keys, %d env vars in %s\n",
		snap.Stats.FilesScanned, len(snap.Middleware), len(snap.Bindings),
		len(snap.Routes), len(snap.Config), len(snap.Env), snap.Stats.Duration)

	return snap, nil
}

func (s *Scanner) workerLimit() int {
	if s.cfg.Scan.ParallelWorkers > 0 {
		return s.cfg.Scan.ParallelWorkers
	}
	return 4
}

// ViewNameForPath converts a template path under one of the project's
// view roots to dot notation, the inverse of resolve's mapping. Exposed
// for reference search.
func ViewNameForPath(viewRoots []string, rel string) (string, bool) {
	for _, root := range viewRoots {
		prefix := root + "/"
		if strings.HasPrefix(rel, prefix) && strings.HasSuffix(rel, ".blade.php") {
			name := strings.TrimSuffix(strings.TrimPrefix(rel, prefix), ".blade.php")
			return strings.ReplaceAll(name, "/", "."), true
		}
	}
	return "", false
}
