// Package engine is the incremental computation core: file contents are
// mutable input cells, everything downstream (pattern extraction,
// reference searches) is a derived query. Each derived query remembers
// exactly what it read during its last run, so an input update dirties
// only the queries that actually depended on it.
//
// ARCHITECTURE:
//   - Inputs carry an xxhash fingerprint; setting identical content is a
//     no-op and nothing downstream revalidates.
//   - Derived queries are validated deeply: dependencies are brought up
//     to date first, and a recompute that produces an equal value keeps
//     its old change stamp, cutting invalidation off early.
//   - One mutex owns the whole graph. Updates and queries serialize
//     through it, which gives per-file update ordering for free.
package engine

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/cespare/xxhash/v2"

	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/errors"
)

// Revision is a monotonic graph-wide clock. Every observable change to
// an input bumps it.
type Revision uint64

// QueryKey identifies one derived computation.
type QueryKey struct {
	Kind string
	Arg  string
}

func (k QueryKey) String() string {
	return fmt.Sprintf("%s(%s)", k.Kind, k.Arg)
}

// Func computes one derived value. It must read inputs and other
// queries only through ctx so the dependency set is recorded.
type Func func(ctx *Ctx, arg string) (any, error)

// EqualFunc reports whether a recomputed value matches the previous one.
// Equal recomputes keep their old change stamp (early cutoff).
type EqualFunc func(prev, next any) bool

type queryDef struct {
	fn    Func
	equal EqualFunc
}

type inputCell struct {
	content     []byte
	hash        uint64
	revision    uint64 // per-file update counter, for ordering checks
	changedAt   Revision
	unavailable bool
	open        bool
}

type depRef struct {
	isInput bool
	path    string
	query   QueryKey
}

type derivedEntry struct {
	value      any
	err        error
	deps       []depRef
	depsOnSet  bool // read the input path set, not just individual files
	changedAt  Revision
	verifiedAt Revision
}

// Stats counts cache behavior for observability and tests.
type Stats struct {
	Hits      int
	Misses    int
	Evictions int
}

// Options configures an Engine.
type Options struct {
	// ClosedFileCacheSize bounds how many closed files keep their input
	// cell and derived entries. Zero means keep everything.
	ClosedFileCacheSize int

	// Loader reloads content for a file whose cell was evicted. Without
	// a loader, evicted files resolve as unavailable until the next
	// SetInput.
	Loader func(path string) ([]byte, error)
}

// Engine owns all mutable computation state.
type Engine struct {
	mu sync.Mutex

	rev          Revision
	setChangedAt Revision // bumped when the set of known paths changes

	inputs  map[string]*inputCell
	derived map[QueryKey]*derivedEntry
	funcs   map[string]queryDef
	active  map[QueryKey]bool

	closedOrder []string // LRU order among closed files, oldest first

	opts        Options
	stats       Stats
	invocations map[string]int
}

func New(opts Options) *Engine {
	return &Engine{
		inputs:      make(map[string]*inputCell),
		derived:     make(map[QueryKey]*derivedEntry),
		funcs:       make(map[string]queryDef),
		active:      make(map[QueryKey]bool),
		opts:        opts,
		invocations: make(map[string]int),
	}
}

// Register installs a derived query function for a kind. Registration
// happens once at wiring time, before any queries run.
func (e *Engine) Register(kind string, fn Func) {
	e.RegisterEqual(kind, fn, reflect.DeepEqual)
}

// RegisterEqual installs a query with a custom equality check for early
// cutoff.
func (e *Engine) RegisterEqual(kind string, fn Func, equal EqualFunc) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.funcs[kind] = queryDef{fn: fn, equal: equal}
}

// SetInput records new content for a file and marks it open. Identical
// content bumps the per-file update counter but changes nothing
// downstream. Computation is demand-driven: nothing recomputes here.
func (e *Engine) SetInput(path string, content []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setContent(path, content, true)
}

// LoadInput records content for a file without marking it open. Project
// scans and watcher events use it so background files stay eligible for
// eviction.
func (e *Engine) LoadInput(path string, content []byte) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.setContent(path, content, false)
}

func (e *Engine) setContent(path string, content []byte, open bool) {
	cell, exists := e.inputs[path]
	if !exists {
		cell = &inputCell{}
		e.inputs[path] = cell
		e.rev++
		e.setChangedAt = e.rev
	}
	cell.revision++
	if open {
		cell.open = true
		e.dropClosed(path)
	}

	hash := xxhash.Sum64(content)
	if exists && !cell.unavailable && hash == cell.hash {
		return
	}

	buf := make([]byte, len(content))
	copy(buf, content)
	cell.content = buf
	cell.hash = hash
	cell.unavailable = false
	e.rev++
	cell.changedAt = e.rev
	debug.LogEngine("input %s rev %d (file update %d)\n", path, e.rev, cell.revision)
}

// RemoveInput marks a file unreadable. Queries that depended on it
// resolve to ErrUnavailable until content reappears.
func (e *Engine) RemoveInput(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.inputs[path]
	if !ok {
		return
	}
	cell.revision++
	cell.content = nil
	cell.unavailable = true
	e.rev++
	cell.changedAt = e.rev
	e.setChangedAt = e.rev
}

// CloseFile marks a file inactive. Closed files join an LRU; past the
// configured bound their cells and derived entries are evicted.
func (e *Engine) CloseFile(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	cell, ok := e.inputs[path]
	if !ok || !cell.open {
		return
	}
	cell.open = false
	e.closedOrder = append(e.closedOrder, path)

	limit := e.opts.ClosedFileCacheSize
	if limit <= 0 {
		return
	}
	for len(e.closedOrder) > limit {
		victim := e.closedOrder[0]
		e.closedOrder = e.closedOrder[1:]
		e.evict(victim)
	}
}

// evict removes a file's cell and every derived entry that read it.
// Later queries reload through the loader or resolve unavailable.
func (e *Engine) evict(path string) {
	if _, ok := e.inputs[path]; !ok {
		return
	}
	delete(e.inputs, path)
	e.rev++
	e.setChangedAt = e.rev
	e.stats.Evictions++

	for key, entry := range e.derived {
		for _, dep := range entry.deps {
			if dep.isInput && dep.path == path {
				delete(e.derived, key)
				break
			}
		}
	}
	debug.LogEngine("evicted %s\n", path)
}

func (e *Engine) dropClosed(path string) {
	for i, p := range e.closedOrder {
		if p == path {
			e.closedOrder = append(e.closedOrder[:i], e.closedOrder[i+1:]...)
			return
		}
	}
}

// Query returns the derived value for (kind, arg), recomputing only
// what its dependency trail requires.
func (e *Engine) Query(kind, arg string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.query(QueryKey{Kind: kind, Arg: arg})
}

func (e *Engine) query(key QueryKey) (any, error) {
	def, ok := e.funcs[key.Kind]
	if !ok {
		return nil, errors.NewQueryError(key.Kind, key.Arg, fmt.Errorf("no query registered for kind %q", key.Kind))
	}
	if e.active[key] {
		return nil, errors.NewQueryError(key.Kind, key.Arg, fmt.Errorf("dependency cycle through %s", key))
	}

	entry := e.derived[key]
	if entry != nil {
		if entry.verifiedAt == e.rev {
			e.stats.Hits++
			return entry.value, entry.err
		}
		if e.validate(entry) {
			entry.verifiedAt = e.rev
			e.stats.Hits++
			return entry.value, entry.err
		}
	}

	e.stats.Misses++
	e.invocations[key.Kind]++

	ctx := &Ctx{engine: e, seen: make(map[depRef]bool)}
	e.active[key] = true
	value, err := def.fn(ctx, key.Arg)
	delete(e.active, key)

	next := &derivedEntry{
		value:      value,
		err:        err,
		deps:       ctx.deps,
		depsOnSet:  ctx.depsOnSet,
		changedAt:  e.rev,
		verifiedAt: e.rev,
	}
	if entry != nil && err == nil && entry.err == nil && def.equal(entry.value, value) {
		next.changedAt = entry.changedAt
	}
	e.derived[key] = next
	return value, err
}

// validate brings an entry's dependencies up to date and reports whether
// none of them changed after the entry was last verified. Derived
// dependencies are validated recursively, so a clean recompute upstream
// (early cutoff) keeps this entry clean too.
func (e *Engine) validate(entry *derivedEntry) bool {
	if entry.depsOnSet && e.setChangedAt > entry.verifiedAt {
		return false
	}
	for _, dep := range entry.deps {
		if dep.isInput {
			cell, ok := e.inputs[dep.path]
			if !ok || cell.changedAt > entry.verifiedAt {
				return false
			}
			continue
		}
		if _, err := e.query(dep.query); err != nil {
			return false
		}
		depEntry := e.derived[dep.query]
		if depEntry == nil || depEntry.changedAt > entry.verifiedAt {
			return false
		}
	}
	return true
}

// InputRevision reports how many updates a file has received. Zero
// means the file is unknown.
func (e *Engine) InputRevision(path string) uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cell, ok := e.inputs[path]; ok {
		return cell.revision
	}
	return 0
}

// Stats returns a copy of the cache counters.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.stats
}

// Invocations reports how many times a kind's function actually ran.
// Tests use this to prove cache hits.
func (e *Engine) Invocations(kind string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.invocations[kind]
}
