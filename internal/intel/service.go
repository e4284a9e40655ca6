// Package intel is the façade the request layer calls. It wires the
// incremental engine, the registries, and the resolver behind a small
// API: update files, ask for patterns, resolve them, search references.
// Edits commit through a two-tier debounce: a short window batches
// keystrokes into engine updates, a longer one schedules background
// diagnostics.
package intel

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/engine"
	"github.com/standardbeagle/larnav/internal/extract"
	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/registry"
	"github.com/standardbeagle/larnav/internal/resolve"
	"github.com/standardbeagle/larnav/internal/types"
)

const (
	queryPatterns   = "patterns"
	queryReferences = "references"
)

// Service owns the wired pipeline for one project.
type Service struct {
	proj     *project.Project
	cfg      *config.Config
	ctx      *project.Context
	eng      *engine.Engine
	scanner  *registry.Scanner
	resolver *resolve.Resolver

	snapMu sync.RWMutex
	snap   *registry.Snapshot

	pendingMu sync.Mutex
	pending   map[string][]byte

	inputDebounce *debouncer
	diagDebounce  *debouncer
	rescan        *debouncer

	// OnDiagnostics, when set before Start, receives background
	// diagnostics after the slow debounce tier fires.
	OnDiagnostics func(path string, diags []Diagnostic)

	fileIDs sync.Map // path -> types.FileID
	nextID  atomic.Uint32
}

func NewService(proj *project.Project, cfg *config.Config) *Service {
	ctx := project.NewContext(proj, cfg)
	s := &Service{
		proj:     proj,
		cfg:      cfg,
		ctx:      ctx,
		scanner:  registry.NewScanner(proj, cfg),
		resolver: resolve.New(ctx, cfg),
		pending:  make(map[string][]byte),
	}
	s.eng = engine.New(engine.Options{
		ClosedFileCacheSize: cfg.Engine.ClosedFileCacheSize,
		Loader: func(path string) ([]byte, error) {
			return os.ReadFile(proj.Abs(path))
		},
	})
	s.registerQueries()

	s.inputDebounce = newDebouncer(time.Duration(cfg.Engine.InputDebounceMs)*time.Millisecond, s.commitPending)
	s.diagDebounce = newDebouncer(time.Duration(cfg.Engine.DiagnosticsDebounceMs)*time.Millisecond, s.publishDiagnostics)
	s.rescan = newDebouncer(time.Duration(cfg.Engine.DiagnosticsDebounceMs)*time.Millisecond, func(string) {
		s.RebuildRegistries(context.Background())
	})
	return s
}

func (s *Service) registerQueries() {
	s.eng.Register(queryPatterns, func(ctx *engine.Ctx, path string) (any, error) {
		content, err := ctx.Input(path)
		if err != nil {
			return nil, err
		}
		dialect := types.DialectForPath(path)
		if dialect == types.DialectUnknown {
			return []types.PatternOccurrence(nil), nil
		}
		res, err := parser.Parse(s.fileID(path), path, dialect, content)
		if err != nil {
			return nil, err
		}
		defer res.Close()
		return extract.File(s.fileID(path), path, res), nil
	})

	s.eng.Register(queryReferences, func(ctx *engine.Ctx, arg string) (any, error) {
		kind, key := decodeRefArg(arg)
		var out []types.ReferenceLocation
		for _, path := range ctx.Paths() {
			v, err := ctx.Query(queryPatterns, path)
			if err != nil {
				continue
			}
			for _, occ := range v.([]types.PatternOccurrence) {
				if occ.Kind == kind && occ.Target == key {
					out = append(out, types.ReferenceLocation{Path: occ.Path, Span: occ.ArgSpan})
				}
			}
		}
		return out, nil
	})
}

// Start seeds the engine with the project's sources and builds the
// first registry snapshot. Both tolerate partial failure.
func (s *Service) Start(ctx context.Context) error {
	started := time.Now()

	files, err := s.proj.Files(project.WalkOptions{Suffixes: []string{".php"}})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workerLimit())
	for _, rel := range files {
		rel := rel
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			content, err := os.ReadFile(s.proj.Abs(rel))
			if err != nil {
				return nil
			}
			s.eng.LoadInput(rel, content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if err := s.RebuildRegistries(ctx); err != nil {
		return err
	}
	debug.Log("intel", "started: %d files seeded in %s\n", len(files), time.Since(started))
	return nil
}

// Stop drains the debounce tiers. Pending edits are discarded; a
// stopped service answers no further queries.
func (s *Service) Stop() {
	s.inputDebounce.stop()
	s.diagDebounce.stop()
	s.rescan.stop()
}

// RebuildRegistries runs a full registry scan and swaps the snapshot.
func (s *Service) RebuildRegistries(ctx context.Context) error {
	snap, err := s.scanner.Scan(ctx)
	if err != nil {
		return err
	}
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()
	return nil
}

// Snapshot returns the current registry snapshot, nil before the first
// scan completes.
func (s *Service) Snapshot() *registry.Snapshot {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return s.snap
}

// OpenOrUpdateFile records an edit. The content is buffered and commits
// to the engine after the input debounce window; per-file ordering is
// preserved because the buffer always holds the newest content.
func (s *Service) OpenOrUpdateFile(path string, content []byte) {
	buf := make([]byte, len(content))
	copy(buf, content)

	s.pendingMu.Lock()
	s.pending[path] = buf
	s.pendingMu.Unlock()

	s.inputDebounce.trigger(path)
	s.diagDebounce.trigger(path)
}

// CloseFile drops pending edits for a file and makes it eligible for
// cache eviction.
func (s *Service) CloseFile(path string) {
	s.inputDebounce.cancel(path)
	s.diagDebounce.cancel(path)

	s.pendingMu.Lock()
	delete(s.pending, path)
	s.pendingMu.Unlock()

	s.eng.CloseFile(path)
}

func (s *Service) commitPending(path string) {
	s.pendingMu.Lock()
	content, ok := s.pending[path]
	delete(s.pending, path)
	s.pendingMu.Unlock()
	if ok {
		s.eng.SetInput(path, content)
	}
}

// flushPending commits any buffered edit immediately. On-demand queries
// call it so they never observe pre-debounce state.
func (s *Service) flushPending(path string) {
	s.inputDebounce.cancel(path)
	s.commitPending(path)
}

// GetPatterns returns every occurrence in a file at its current
// committed content.
func (s *Service) GetPatterns(path string) ([]types.PatternOccurrence, error) {
	s.flushPending(path)
	v, err := s.eng.Query(queryPatterns, path)
	if err != nil {
		return nil, err
	}
	return v.([]types.PatternOccurrence), nil
}

// PatternAt returns the occurrence whose argument or call range covers
// a position.
func (s *Service) PatternAt(path string, row, col uint) (types.PatternOccurrence, bool, error) {
	occs, err := s.GetPatterns(path)
	if err != nil {
		return types.PatternOccurrence{}, false, err
	}
	for _, occ := range occs {
		if occ.ArgSpan.Contains(row, col) || occ.CallSpan.Contains(row, col) {
			return occ, true, nil
		}
	}
	return types.PatternOccurrence{}, false, nil
}

// ResolvePattern resolves one occurrence against the current snapshot.
func (s *Service) ResolvePattern(occ types.PatternOccurrence) types.ResolutionResult {
	return s.resolver.Resolve(occ, s.Snapshot())
}

// flushAllPending commits every buffered edit, for queries that span
// the whole project.
func (s *Service) flushAllPending() {
	s.pendingMu.Lock()
	paths := make([]string, 0, len(s.pending))
	for path := range s.pending {
		paths = append(paths, path)
	}
	s.pendingMu.Unlock()
	for _, path := range paths {
		s.flushPending(path)
	}
}

// ViewNameFor maps a template path under one of the project's view
// roots to its dot-notation view name.
func (s *Service) ViewNameFor(rel string) (string, bool) {
	return registry.ViewNameForPath(s.ctx.ViewRoots, rel)
}

// FindReferences locates every occurrence of a resource across the
// project. The search is a derived query: only files whose content
// changed since the last search are re-extracted.
func (s *Service) FindReferences(kind types.PatternKind, key string) ([]types.ReferenceLocation, error) {
	s.flushAllPending()
	v, err := s.eng.Query(queryReferences, encodeRefArg(kind, key))
	if err != nil {
		return nil, err
	}
	return v.([]types.ReferenceLocation), nil
}

// ApplyFSEvent feeds one watcher event into the pipeline: engine input
// refresh, probe cache invalidation, and a debounced registry rescan
// when a registration-bearing file changed.
func (s *Service) ApplyFSEvent(rel string, removed bool) {
	s.resolver.InvalidatePath(rel)

	if removed {
		s.eng.RemoveInput(rel)
	} else if types.DialectForPath(rel) != types.DialectUnknown {
		if content, err := os.ReadFile(s.proj.Abs(rel)); err == nil {
			s.eng.LoadInput(rel, content)
		} else {
			s.eng.RemoveInput(rel)
		}
	}

	if registryRelevant(rel) {
		s.rescan.trigger("registry")
	}
}

// registryRelevant reports whether a path can contribute registrations.
func registryRelevant(rel string) bool {
	switch {
	case strings.HasPrefix(rel, "routes/"),
		strings.HasPrefix(rel, "config/"),
		strings.HasPrefix(rel, "app/Providers/"),
		strings.HasPrefix(rel, ".env"),
		rel == "bootstrap/app.php",
		rel == "app/Http/Kernel.php":
		return true
	}
	return false
}

// CacheStats exposes the engine's hit/miss counters.
func (s *Service) CacheStats() engine.Stats {
	return s.eng.Stats()
}

func (s *Service) fileID(path string) types.FileID {
	if v, ok := s.fileIDs.Load(path); ok {
		return v.(types.FileID)
	}
	id := types.FileID(s.nextID.Add(1))
	actual, _ := s.fileIDs.LoadOrStore(path, id)
	return actual.(types.FileID)
}

func (s *Service) workerLimit() int {
	if s.cfg.Scan.ParallelWorkers > 0 {
		return s.cfg.Scan.ParallelWorkers
	}
	return 4
}

const refArgSep = "\x00"

func encodeRefArg(kind types.PatternKind, key string) string {
	return kind.String() + refArgSep + key
}

func decodeRefArg(arg string) (types.PatternKind, string) {
	if i := strings.Index(arg, refArgSep); i >= 0 {
		return types.PatternKindFromString(arg[:i]), arg[i+1:]
	}
	return types.PatternKindFromString(arg), ""
}
