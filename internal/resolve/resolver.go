// Package resolve turns pattern occurrences into target locations or
// structured absence verdicts. Resolution is stateless per call: it
// draws on the project layout, a registry snapshot supplied by the
// caller, and filesystem probes through a TTL cache. "Not found" is a
// normal result, cheap and side-effect free.
package resolve

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	"github.com/standardbeagle/larnav/internal/extract"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/registry"
	"github.com/standardbeagle/larnav/internal/types"
)

type Resolver struct {
	ctx    *project.Context
	cfg    *config.Config
	probes *prober
}

func New(ctx *project.Context, cfg *config.Config) *Resolver {
	ttl := time.Duration(cfg.Engine.ProbeTTLMs) * time.Millisecond
	return &Resolver{
		ctx:    ctx,
		cfg:    cfg,
		probes: newProber(ctx.Proj, ttl),
	}
}

// InvalidatePath drops cached existence answers for a path, called on
// watcher create/remove events.
func (r *Resolver) InvalidatePath(rel string) {
	r.probes.invalidate(rel)
}

// Resolve maps one occurrence to a location or an absence verdict.
// snap may be nil before the first registry scan completes; registry
// backed kinds then resolve Unavailable, never Missing.
func (r *Resolver) Resolve(occ types.PatternOccurrence, snap *registry.Snapshot) types.ResolutionResult {
	switch occ.Kind {
	case types.PatternView, types.PatternRouteView:
		return r.resolveView(occ.Target)
	case types.PatternInertia:
		return r.resolveInertia(occ.Target)
	case types.PatternLivewireMount, types.PatternBladeLivewire:
		return r.resolveLivewire(occ.Target)
	case types.PatternBladeComponent:
		return r.resolveComponent(occ.Target)
	case types.PatternEnv:
		return r.resolveEnv(occ, snap)
	case types.PatternConfig:
		return r.resolveConfig(occ.Target, snap)
	case types.PatternMiddleware:
		return r.resolveMiddleware(occ.Target, snap)
	case types.PatternContainer:
		return r.resolveContainer(occ.Target, snap)
	case types.PatternRouteName:
		return r.resolveRouteName(occ.Target, snap)
	case types.PatternTranslation:
		return r.resolveTranslation(occ.Target)
	case types.PatternAsset, types.PatternURL:
		return r.probePath(AssetRelPath(r.ctx.PublicDir, occ.Target))
	case types.PatternPathHelper:
		return r.resolvePathHelper(occ)
	case types.PatternControllerPair:
		return r.resolveController(occ)
	case types.PatternBladeDirective:
		return r.resolveDirective(occ.Target)
	case types.PatternBladeEcho, types.PatternBladeSlot:
		// Structural patterns with no backing resource.
		return types.ResolutionResult{State: types.Resolved}
	default:
		return types.ResolutionResult{
			State:  types.Unavailable,
			Detail: fmt.Sprintf("no resolution rule for kind %s", occ.Kind),
		}
	}
}

func (r *Resolver) resolveView(name string) types.ResolutionResult {
	var candidates []string
	for _, root := range r.ctx.ViewRoots {
		rel := root + "/" + ViewRelPath(name)
		candidates = append(candidates, rel)
		if r.probes.exists(rel) {
			return resolved(rel, candidates)
		}
	}
	return missing(candidates, nil, "view %q has no template under the configured view roots", name)
}

func (r *Resolver) resolveInertia(name string) types.ResolutionResult {
	stem := InertiaPagePath(name)
	var candidates []string
	for _, ext := range inertiaExtensions {
		rel := stem + ext
		candidates = append(candidates, rel)
		if r.probes.exists(rel) {
			return resolved(rel, candidates)
		}
	}
	return missing(candidates, nil, "Inertia page %q not found", name)
}

func (r *Resolver) resolveLivewire(name string) types.ResolutionResult {
	class := LivewireClassPath(r.ctx.LivewireClassRoot, name)
	candidates := []string{class}
	if r.probes.exists(class) {
		return resolved(class, candidates)
	}
	for _, root := range r.ctx.ViewRoots {
		view := LivewireViewPath(root, name)
		candidates = append(candidates, view)
		if r.probes.exists(view) {
			return resolved(view, candidates)
		}
	}
	return missing(candidates, nil, "Livewire component %q has neither class nor view", name)
}

func (r *Resolver) resolveComponent(name string) types.ResolutionResult {
	class := ComponentClassPath(name)
	candidates := []string{class}
	if r.probes.exists(class) {
		return resolved(class, candidates)
	}
	for _, root := range r.ctx.ViewRoots {
		view := ComponentViewPath(root, name)
		candidates = append(candidates, view)
		if r.probes.exists(view) {
			return resolved(view, candidates)
		}
	}
	return missing(candidates, nil, "component <x-%s> has neither class nor view", name)
}

func (r *Resolver) resolveEnv(occ types.PatternOccurrence, snap *registry.Snapshot) types.ResolutionResult {
	if snap == nil {
		return unavailable("environment registry not built yet")
	}
	if reg, ok := snap.LookupEnv(occ.Target); ok {
		res := resolved(reg.Path, nil)
		res.Location.Span = reg.Span
		res.Detail = reg.Value
		return res
	}
	detail := fmt.Sprintf("env key %q not declared in any environment file", occ.Target)
	if occ.HasFallback {
		detail += " (call has a fallback default)"
	}
	return types.ResolutionResult{
		State:       types.Missing,
		Suggestions: r.suggest(occ.Target, registry.Names(snap.Env)),
		Detail:      detail,
	}
}

func (r *Resolver) resolveConfig(key string, snap *registry.Snapshot) types.ResolutionResult {
	if snap == nil {
		return unavailable("config registry not built yet")
	}
	if reg, ok := snap.LookupConfig(key); ok {
		res := resolved(reg.Path, nil)
		res.Location.Span = reg.Span
		res.Detail = reg.Value
		return res
	}

	// Deeply nested keys are not indexed; fall back to the file the
	// first segment names.
	file := ConfigFilePath(key)
	if r.probes.exists(file) {
		return resolved(file, []string{file})
	}
	return missing([]string{file}, r.suggest(key, registry.Names(snap.Config)),
		"config key %q not found", key)
}

func (r *Resolver) resolveMiddleware(alias string, snap *registry.Snapshot) types.ResolutionResult {
	if snap == nil {
		return unavailable("middleware registry not built yet")
	}

	// throttle:60,1 style parameters do not affect the alias.
	name := alias
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i]
	}

	reg, ok := snap.LookupMiddleware(name)
	if !ok {
		return types.ResolutionResult{
			State:       types.Missing,
			Suggestions: r.suggest(name, registry.Names(snap.Middleware)),
			Detail:      fmt.Sprintf("middleware alias %q is not registered", name),
		}
	}
	return r.registrationResult(reg)
}

func (r *Resolver) resolveContainer(key string, snap *registry.Snapshot) types.ResolutionResult {
	if snap == nil {
		return unavailable("binding registry not built yet")
	}
	if reg, ok := snap.LookupBinding(key); ok {
		return r.registrationResult(reg)
	}

	// app(UserService::class) with no explicit binding resolves the
	// class itself by autoloading convention.
	if rel, ok := r.ctx.Proj.ClassToPath(key); ok && r.probes.exists(rel) {
		return resolved(rel, []string{rel})
	}
	return types.ResolutionResult{
		State:       types.Missing,
		Suggestions: r.suggest(key, registry.Names(snap.Bindings)),
		Detail:      fmt.Sprintf("container key %q has no binding and no autoloadable class", key),
	}
}

// registrationResult picks the best location a registration offers: the
// registered class file when it autoloads, the declaration site when
// one exists, or a detail-only answer for framework built-ins.
func (r *Resolver) registrationResult(reg types.Registration) types.ResolutionResult {
	if reg.Value != "" && reg.Value != "{closure}" {
		if rel, ok := r.ctx.Proj.ClassToPath(reg.Value); ok && r.probes.exists(rel) {
			res := resolved(rel, nil)
			res.Detail = reg.Value
			return res
		}
	}
	if reg.Path != "" {
		res := resolved(reg.Path, nil)
		res.Location.Span = reg.Span
		res.Detail = reg.Value
		return res
	}
	return types.ResolutionResult{State: types.Resolved, Detail: reg.Value}
}

func (r *Resolver) resolveRouteName(name string, snap *registry.Snapshot) types.ResolutionResult {
	if snap == nil {
		return unavailable("route registry not built yet")
	}
	reg, ok := snap.LookupRoute(name)
	if !ok {
		return types.ResolutionResult{
			State:       types.Missing,
			Suggestions: r.suggest(name, registry.Names(snap.Routes)),
			Detail:      fmt.Sprintf("no route named %q", name),
		}
	}
	res := resolved(reg.Path, nil)
	res.Location.Span = reg.Span
	res.Detail = reg.Value
	return res
}

// dottedKeyPattern matches structured translation keys like auth.failed.
// Anything else ("Welcome back!", "No results.") is a phrase key.
var dottedKeyPattern = regexp.MustCompile(`^[\w-]+(\.[\w-]+)+$`)

// resolveTranslation walks the exact fallback chain: structured files
// for dotted keys first, then the flat locale JSON files, in lang root
// order. The exhausted chain is reported in probe order.
func (r *Resolver) resolveTranslation(key string) types.ResolutionResult {
	var candidates []string

	if dottedKeyPattern.MatchString(key) {
		for _, locale := range r.ctx.Locales {
			for _, root := range r.ctx.LangRoots {
				rel := TranslationFilePath(root, locale, key)
				candidates = append(candidates, rel)
				if r.probes.exists(rel) {
					return resolved(rel, candidates)
				}
			}
		}
	}

	for _, locale := range r.ctx.Locales {
		for _, root := range r.ctx.LangRoots {
			rel := TranslationJSONPath(root, locale)
			candidates = append(candidates, rel)
			if !r.probes.exists(rel) {
				continue
			}
			if span, ok := jsonKeySpan(r.ctx.Proj.Abs(rel), key); ok {
				res := resolved(rel, candidates)
				res.Location.Span = span
				return res
			}
		}
	}

	return missing(candidates, nil, "translation key %q not found after exhausting the fallback chain", key)
}

func (r *Resolver) resolvePathHelper(occ types.PatternOccurrence) types.ResolutionResult {
	base := occ.Secondary
	rel := occ.Target
	if base != "" && base != "." {
		rel = base + "/" + strings.TrimPrefix(occ.Target, "/")
	}
	return r.probePath(rel)
}

func (r *Resolver) resolveController(occ types.PatternOccurrence) types.ResolutionResult {
	rel, ok := r.ctx.Proj.ClassToPath(occ.Target)
	if !ok {
		return types.ResolutionResult{
			State:  types.Missing,
			Detail: fmt.Sprintf("controller %q matches no autoload mapping", occ.Target),
		}
	}
	if !r.probes.exists(rel) {
		return missing([]string{rel}, nil, "controller %q has no file", occ.Target)
	}
	res := resolved(rel, []string{rel})
	res.Detail = occ.Secondary
	return res
}

func (r *Resolver) resolveDirective(name string) types.ResolutionResult {
	if doc, ok := extract.DirectiveDoc(name); ok {
		return types.ResolutionResult{State: types.Resolved, Detail: doc}
	}
	return types.ResolutionResult{
		State:  types.Missing,
		Detail: fmt.Sprintf("@%s is not a known Blade directive; custom directives register via Blade::directive", name),
	}
}

func (r *Resolver) probePath(rel string) types.ResolutionResult {
	if r.probes.exists(rel) {
		return resolved(rel, []string{rel})
	}
	return missing([]string{rel}, nil, "%s does not exist", rel)
}

// suggest ranks registry keys near the target: Levenshtein distance
// bounds the candidate set, Jaro-Winkler similarity orders it.
func (r *Resolver) suggest(target string, names []string) []string {
	maxDist := r.cfg.Resolution.SuggestionDistance
	maxOut := r.cfg.Resolution.MaxSuggestions
	if maxOut <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float32
	}
	var near []scored
	for _, name := range names {
		if name == target {
			continue
		}
		if edlib.LevenshteinDistance(target, name) > maxDist {
			continue
		}
		score, err := edlib.StringsSimilarity(target, name, edlib.JaroWinkler)
		if err != nil {
			debug.Log("resolve", "similarity %q/%q: %v\n", target, name, err)
			continue
		}
		near = append(near, scored{name: name, score: score})
	}
	sort.Slice(near, func(i, j int) bool {
		if near[i].score != near[j].score {
			return near[i].score > near[j].score
		}
		return near[i].name < near[j].name
	})

	if len(near) > maxOut {
		near = near[:maxOut]
	}
	out := make([]string, len(near))
	for i, s := range near {
		out[i] = s.name
	}
	return out
}

func resolved(rel string, candidates []string) types.ResolutionResult {
	return types.ResolutionResult{
		State:      types.Resolved,
		Location:   types.ReferenceLocation{Path: rel},
		Candidates: candidates,
	}
}

func missing(candidates, suggestions []string, format string, args ...any) types.ResolutionResult {
	return types.ResolutionResult{
		State:       types.Missing,
		Candidates:  candidates,
		Suggestions: suggestions,
		Detail:      fmt.Sprintf(format, args...),
	}
}

func unavailable(detail string) types.ResolutionResult {
	return types.ResolutionResult{State: types.Unavailable, Detail: detail}
}
