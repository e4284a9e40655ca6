package types

// SourceTier ranks where a registration was discovered. Application code
// overrides vendor packages, which override framework built-ins.
type SourceTier uint8

const (
	TierFramework SourceTier = iota
	TierPackage
	TierApplication
)

func (t SourceTier) String() string {
	switch t {
	case TierFramework:
		return "framework"
	case TierPackage:
		return "package"
	case TierApplication:
		return "application"
	default:
		return "unknown"
	}
}

// TierForPath classifies a project-relative path into a source tier.
func TierForPath(rel string) SourceTier {
	switch {
	case pathHasPrefix(rel, "vendor/laravel/framework"):
		return TierFramework
	case pathHasPrefix(rel, "vendor"):
		return TierPackage
	default:
		return TierApplication
	}
}

func pathHasPrefix(path, prefix string) bool {
	if len(path) < len(prefix) || path[:len(prefix)] != prefix {
		return false
	}
	return len(path) == len(prefix) || path[len(prefix)] == '/'
}

// Registration is one named definition contributed by a scanned file:
// a middleware alias, a container binding, a named route, a config key,
// an env key, or a Blade component class.
type Registration struct {
	Name string
	// Value is the registration payload: middleware class, binding target,
	// route path, config default, env value.
	Value string
	File  FileID
	Path  string
	Span  Span
	Tier  SourceTier
}

// Better reports whether r should replace prev for the same name.
// Higher tiers win; within a tier the lexically larger path wins, which
// makes merge order deterministic regardless of scan order.
func (r Registration) Better(prev Registration) bool {
	if r.Tier != prev.Tier {
		return r.Tier > prev.Tier
	}
	return r.Path > prev.Path
}

// ResolutionState classifies the outcome of resolving an occurrence.
type ResolutionState uint8

const (
	// Resolved means the target exists and Location points at it.
	Resolved ResolutionState = iota
	// Missing means the target should exist by convention but does not.
	Missing
	// Unavailable means resolution could not run, usually because the
	// backing registry scan has not completed or the project root is
	// unknown. Unavailable is never reported as Missing.
	Unavailable
)

func (s ResolutionState) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Missing:
		return "missing"
	default:
		return "unavailable"
	}
}

// ResolutionResult is the answer for one occurrence.
type ResolutionResult struct {
	State    ResolutionState
	Location ReferenceLocation
	// Candidates lists the convention paths that were probed, in probe
	// order, for diagnostics and quick-fix suggestions.
	Candidates []string
	// Suggestions holds near-miss names for Missing results.
	Suggestions []string
	// Detail carries extra context, like the resolved env value or the
	// matched registration tier.
	Detail string
}

// ReferenceLocation is a file position a resolution or reference search
// points at.
type ReferenceLocation struct {
	Path string
	Span Span
}
