package engine

import (
	stderrors "errors"
	"sort"

	"github.com/cespare/xxhash/v2"
)

// ErrUnavailable marks a result derived from an input that could not be
// read. Callers must treat it as "could not be determined", never as
// "definitely absent".
var ErrUnavailable = stderrors.New("input unavailable")

// IsUnavailable reports whether a query failed because an input it
// depends on is unreadable.
func IsUnavailable(err error) bool {
	return stderrors.Is(err, ErrUnavailable)
}

// Ctx is handed to query functions. Every input and sub-query read goes
// through it so the engine learns the exact dependency set of the run.
type Ctx struct {
	engine    *Engine
	deps      []depRef
	depsOnSet bool
	seen      map[depRef]bool
}

func (c *Ctx) record(dep depRef) {
	if c.seen[dep] {
		return
	}
	c.seen[dep] = true
	c.deps = append(c.deps, dep)
}

// Input returns a file's current content. Unknown files are loaded
// through the engine's loader when one is configured; files that cannot
// be read return ErrUnavailable.
func (c *Ctx) Input(path string) ([]byte, error) {
	c.record(depRef{isInput: true, path: path})

	cell, ok := c.engine.inputs[path]
	if !ok {
		if c.engine.opts.Loader == nil {
			return nil, ErrUnavailable
		}
		content, err := c.engine.opts.Loader(path)
		if err != nil {
			cell = &inputCell{unavailable: true}
			cell.revision++
			c.engine.inputs[path] = cell
			c.engine.rev++
			cell.changedAt = c.engine.rev
			c.engine.setChangedAt = c.engine.rev
			return nil, ErrUnavailable
		}
		cell = &inputCell{content: content, hash: xxhash.Sum64(content)}
		cell.revision++
		c.engine.inputs[path] = cell
		c.engine.rev++
		cell.changedAt = c.engine.rev
		c.engine.setChangedAt = c.engine.rev
		return cell.content, nil
	}
	if cell.unavailable {
		return nil, ErrUnavailable
	}
	return cell.content, nil
}

// Query evaluates a sub-query and records the dependency edge.
func (c *Ctx) Query(kind, arg string) (any, error) {
	key := QueryKey{Kind: kind, Arg: arg}
	c.record(depRef{query: key})
	return c.engine.query(key)
}

// Paths returns every known input path in sorted order and makes this
// run depend on set membership: adding or removing a file invalidates
// the caller without touching unrelated per-file results.
func (c *Ctx) Paths() []string {
	c.depsOnSet = true
	out := make([]string, 0, len(c.engine.inputs))
	for path := range c.engine.inputs {
		out = append(out, path)
	}
	sort.Strings(out)
	return out
}
