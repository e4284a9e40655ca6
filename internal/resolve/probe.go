package resolve

import (
	"sync"
	"time"

	"github.com/standardbeagle/larnav/internal/project"
)

// Probe count kept before the cache drops stale entries wholesale.
// Resolution fans out a handful of probes per occurrence, so a few
// thousand entries covers a large editing session.
const maxProbeEntries = 4096

type probeEntry struct {
	exists  bool
	checked time.Time
}

// prober answers filesystem existence questions through a TTL cache.
// Missing files are the common case while typing, so negative results
// cache too.
type prober struct {
	proj *project.Project
	ttl  time.Duration

	mu      sync.Mutex
	entries map[string]probeEntry
	clock   func() time.Time
}

func newProber(proj *project.Project, ttl time.Duration) *prober {
	return &prober{
		proj:    proj,
		ttl:     ttl,
		entries: make(map[string]probeEntry),
		clock:   time.Now,
	}
}

func (p *prober) exists(rel string) bool {
	now := p.clock()

	p.mu.Lock()
	if entry, ok := p.entries[rel]; ok && now.Sub(entry.checked) < p.ttl {
		p.mu.Unlock()
		return entry.exists
	}
	p.mu.Unlock()

	exists := p.proj.Exists(rel)

	p.mu.Lock()
	if len(p.entries) >= maxProbeEntries {
		p.entries = make(map[string]probeEntry)
	}
	p.entries[rel] = probeEntry{exists: exists, checked: now}
	p.mu.Unlock()
	return exists
}

// invalidate drops one cached answer, called when a watcher reports the
// path created or removed.
func (p *prober) invalidate(rel string) {
	p.mu.Lock()
	delete(p.entries, rel)
	p.mu.Unlock()
}
