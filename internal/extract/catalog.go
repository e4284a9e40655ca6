// Package extract recognizes Laravel resource references in parsed
// sources. The catalog is a data table: adding a pattern means adding a
// rule here, not another tree walk.
package extract

import (
	"github.com/standardbeagle/larnav/internal/types"
)

// callRule describes how one recognized call maps to a pattern.
type callRule struct {
	Kind types.PatternKind
	// TargetArg is the index of the argument holding the resolvable
	// literal. Route::view puts the template second.
	TargetArg int
	// SecondaryArg captures an extra string argument when >= 0.
	SecondaryArg int
	// DetectFallback sets HasFallback when any argument follows the
	// target, which downgrades missing-key diagnostics.
	DetectFallback bool
	// AllowArray emits one occurrence per string element when the target
	// argument is an array literal.
	AllowArray bool
	// AllowClassConstant accepts Foo::class as the target argument and
	// records the class name as the target.
	AllowClassConstant bool
	// FixedSecondary stamps a constant Secondary on every occurrence.
	// Path helpers use it to carry their base directory.
	FixedSecondary string
}

func rule(kind types.PatternKind) callRule {
	return callRule{Kind: kind, SecondaryArg: -1}
}

// pathRule maps one *_path() helper to its base directory relative to
// the project root.
func pathRule(base string) callRule {
	return callRule{Kind: types.PatternPathHelper, SecondaryArg: -1, FixedSecondary: base}
}

// Plain function calls: view('users.index'), env('APP_KEY'), ...
var functionRules = map[string]callRule{
	"view":         rule(types.PatternView),
	"env":          {Kind: types.PatternEnv, SecondaryArg: -1, DetectFallback: true},
	"config":       {Kind: types.PatternConfig, SecondaryArg: -1, DetectFallback: true},
	"__":           rule(types.PatternTranslation),
	"trans":        rule(types.PatternTranslation),
	"trans_choice": rule(types.PatternTranslation),
	"asset":        rule(types.PatternAsset),
	"mix":          rule(types.PatternAsset),
	"route":        rule(types.PatternRouteName),
	"url":          rule(types.PatternURL),
	"app":          {Kind: types.PatternContainer, SecondaryArg: -1, AllowClassConstant: true},
	"resolve":      {Kind: types.PatternContainer, SecondaryArg: -1, AllowClassConstant: true},
	"action":       {Kind: types.PatternControllerPair, SecondaryArg: -1, AllowClassConstant: true},
	"base_path":     pathRule("."),
	"app_path":      pathRule("app"),
	"config_path":   pathRule("config"),
	"database_path": pathRule("database"),
	"lang_path":     pathRule("lang"),
	"public_path":   pathRule("public"),
	"resource_path": pathRule("resources"),
	"storage_path":  pathRule("storage"),
}

// Static calls keyed by scope then method: Route::view(...), Inertia::render(...)
var scopedRules = map[string]map[string]callRule{
	"Route": {
		"view":       {Kind: types.PatternRouteView, TargetArg: 1, SecondaryArg: 0},
		"middleware": {Kind: types.PatternMiddleware, SecondaryArg: -1, AllowArray: true},
	},
	"Inertia": {
		"render": rule(types.PatternInertia),
	},
	"Config": {
		"get": {Kind: types.PatternConfig, SecondaryArg: -1, DetectFallback: true},
	},
	"App": {
		"make": {Kind: types.PatternContainer, SecondaryArg: -1, AllowClassConstant: true},
	},
	"Lang": {
		"get": rule(types.PatternTranslation),
	},
	"View": {
		"make": rule(types.PatternView),
	},
	"URL": {
		"route": rule(types.PatternRouteName),
	},
	"Redirect": {
		"route": rule(types.PatternRouteName),
	},
	"Livewire": {
		"mount": rule(types.PatternLivewireMount),
	},
}

// Instance calls recognized anywhere a fluent chain allows them. The
// object side is checked by the extractor: ->make only counts on an
// app() receiver, ->middleware accepts any receiver since route chains
// take many shapes.
var memberRules = map[string]callRule{
	"middleware": {Kind: types.PatternMiddleware, SecondaryArg: -1, AllowArray: true},
	"make":       {Kind: types.PatternContainer, SecondaryArg: -1, AllowClassConstant: true},
}

// memberNeedsAppReceiver lists member rules that only apply when the
// receiver is the app() helper or the App facade.
var memberNeedsAppReceiver = map[string]bool{
	"make": true,
}
