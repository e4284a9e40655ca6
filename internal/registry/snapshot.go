// Package registry builds cross-file lookup tables from project scans:
// middleware aliases, container bindings, named routes, config keys, and
// environment variables. Scans fold into immutable snapshots; readers
// never see a half-built table.
package registry

import (
	"time"

	"github.com/standardbeagle/larnav/internal/types"
)

// Snapshot is one consistent view of every registry. A snapshot is never
// mutated after Build returns; updates produce a new snapshot.
type Snapshot struct {
	Middleware map[string]types.Registration
	Bindings   map[string]types.Registration
	Routes     map[string]types.Registration
	Config     map[string]types.Registration
	Env        map[string]types.Registration

	BuiltAt time.Time
	Stats   ScanStats
}

// ScanStats records scan shape for diagnostics and tests.
type ScanStats struct {
	FilesScanned int
	ParseErrors  int
	Duration     time.Duration
}

func newSnapshot() *Snapshot {
	return &Snapshot{
		Middleware: make(map[string]types.Registration),
		Bindings:   make(map[string]types.Registration),
		Routes:     make(map[string]types.Registration),
		Config:     make(map[string]types.Registration),
		Env:        make(map[string]types.Registration),
	}
}

// merge applies precedence: higher tier wins, path order breaks ties.
func merge(into map[string]types.Registration, reg types.Registration) {
	prev, exists := into[reg.Name]
	if !exists || reg.Better(prev) {
		into[reg.Name] = reg
	}
}

// LookupMiddleware resolves a middleware alias. Names missing from the
// scan fall back to the framework's built-in alias table; built-in
// results carry no source location.
func (s *Snapshot) LookupMiddleware(name string) (types.Registration, bool) {
	if reg, ok := s.Middleware[name]; ok {
		return reg, true
	}
	if class, ok := builtinMiddleware[name]; ok {
		return types.Registration{Name: name, Value: class, Tier: types.TierFramework}, true
	}
	return types.Registration{}, false
}

// LookupBinding resolves a container key, with the framework's core
// binding table as fallback.
func (s *Snapshot) LookupBinding(key string) (types.Registration, bool) {
	if reg, ok := s.Bindings[key]; ok {
		return reg, true
	}
	if class, ok := builtinBindings[key]; ok {
		return types.Registration{Name: key, Value: class, Tier: types.TierFramework}, true
	}
	return types.Registration{}, false
}

// LookupRoute resolves a route name.
func (s *Snapshot) LookupRoute(name string) (types.Registration, bool) {
	reg, ok := s.Routes[name]
	return reg, ok
}

// LookupConfig resolves a dotted config key.
func (s *Snapshot) LookupConfig(key string) (types.Registration, bool) {
	reg, ok := s.Config[key]
	return reg, ok
}

// LookupEnv resolves an environment variable name.
func (s *Snapshot) LookupEnv(name string) (types.Registration, bool) {
	reg, ok := s.Env[name]
	return reg, ok
}

// Names collects the keys of one registration map, for suggestion
// generation.
func Names(m map[string]types.Registration) []string {
	out := make([]string, 0, len(m))
	for name := range m {
		out = append(out, name)
	}
	return out
}
