package intel

import (
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/types"
)

// Severity ranks a diagnostic. The core only supplies the data; the
// presentation layer decides rendering.
type Severity uint8

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "info"
	}
}

// Diagnostic pairs an occurrence with its failed resolution.
type Diagnostic struct {
	Occurrence types.PatternOccurrence
	Result     types.ResolutionResult
	Severity   Severity
	Message    string
}

// Diagnostics resolves every occurrence in a file and reports the ones
// whose targets are missing. Unavailable results are skipped entirely:
// "could not determine" must never render as "missing".
func (s *Service) Diagnostics(path string) ([]Diagnostic, error) {
	occs, err := s.GetPatterns(path)
	if err != nil {
		return nil, err
	}
	snap := s.Snapshot()

	var out []Diagnostic
	for _, occ := range occs {
		res := s.resolver.Resolve(occ, snap)
		if res.State != types.Missing {
			continue
		}
		out = append(out, Diagnostic{
			Occurrence: occ,
			Result:     res,
			Severity:   severityFor(occ),
			Message:    res.Detail,
		})
	}
	return out, nil
}

// severityFor encodes which absences are load-bearing. A route handler
// whose template is missing fails the request outright; an env() call
// with a fallback default degrades gracefully.
func severityFor(occ types.PatternOccurrence) Severity {
	switch occ.Kind {
	case types.PatternRouteView, types.PatternControllerPair:
		return SeverityError
	case types.PatternBladeDirective, types.PatternURL:
		return SeverityInfo
	case types.PatternEnv, types.PatternConfig:
		if occ.HasFallback {
			return SeverityInfo
		}
		return SeverityWarning
	default:
		return SeverityWarning
	}
}

// publishDiagnostics is the slow debounce tier's callback.
func (s *Service) publishDiagnostics(path string) {
	if s.OnDiagnostics == nil {
		return
	}
	diags, err := s.Diagnostics(path)
	if err != nil {
		debug.Log("intel", "diagnostics for %s: %v\n", path, err)
		return
	}
	s.OnDiagnostics(path, diags)
}
