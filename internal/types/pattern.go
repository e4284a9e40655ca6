package types

// PatternKind is the closed taxonomy of recognized framework patterns.
// Adding a kind means adding a catalog rule and a resolver arm; the zero
// value is deliberately invalid so uninitialized occurrences are caught
// early.
type PatternKind uint8

const (
	PatternInvalid PatternKind = iota

	// PHP call patterns.
	PatternView            // view("users.index")
	PatternRouteView       // Route::view("/home", "home")
	PatternEnv             // env("APP_KEY"), env("APP_KEY", $default)
	PatternConfig          // config("app.name")
	PatternMiddleware      // Route::middleware("auth"), ->middleware([...])
	PatternTranslation     // __("messages.welcome"), trans(...)
	PatternAsset           // asset("js/app.js"), mix(...)
	PatternPathHelper      // base_path(...), storage_path(...), resource_path(...)
	PatternContainer       // app(Foo::class), app()->make(...), ->bind(...)
	PatternRouteName       // route("users.show")
	PatternURL             // url("/about")
	PatternControllerPair  // action([UserController::class, "index"])
	PatternInertia         // Inertia::render("Users/Index")
	PatternLivewireMount   // Livewire component reference in PHP

	// Blade template patterns.
	PatternBladeComponent // <x-alert/>, <x-forms.input>
	PatternBladeLivewire  // <livewire:user-profile/>
	PatternBladeDirective // @include, @extends, @section, custom directives
	PatternBladeEcho      // {{ $user->name }} contents
	PatternBladeSlot      // <x-slot:title>
)

var patternKindNames = map[PatternKind]string{
	PatternView:           "view",
	PatternRouteView:      "route-view",
	PatternEnv:            "env",
	PatternConfig:         "config",
	PatternMiddleware:     "middleware",
	PatternTranslation:    "translation",
	PatternAsset:          "asset",
	PatternPathHelper:     "path-helper",
	PatternContainer:      "container",
	PatternRouteName:      "route-name",
	PatternURL:            "url",
	PatternControllerPair: "controller-action",
	PatternInertia:        "inertia",
	PatternLivewireMount:  "livewire-mount",
	PatternBladeComponent: "blade-component",
	PatternBladeLivewire:  "blade-livewire",
	PatternBladeDirective: "blade-directive",
	PatternBladeEcho:      "blade-echo",
	PatternBladeSlot:      "blade-slot",
}

func (k PatternKind) String() string {
	if name, ok := patternKindNames[k]; ok {
		return name
	}
	return "invalid"
}

var patternKindsByName = func() map[string]PatternKind {
	out := make(map[string]PatternKind, len(patternKindNames))
	for kind, name := range patternKindNames {
		out[name] = kind
	}
	return out
}()

// PatternKindFromString reverses String. Unknown names map to
// PatternInvalid.
func PatternKindFromString(name string) PatternKind {
	return patternKindsByName[name]
}

// PatternOccurrence is one recognized pattern at one location. Target holds
// the literal first argument with quotes stripped; occurrences whose target
// argument is dynamic (interpolation, concatenation, variables) are never
// produced.
type PatternOccurrence struct {
	Kind   PatternKind
	File   FileID
	Path   string
	Target string
	// ArgSpan covers only the string literal content, excluding quotes.
	ArgSpan Span
	// CallSpan covers the whole recognized expression.
	CallSpan Span
	// HasFallback is set for env() and config() calls that pass a second
	// argument, which downgrades a missing key from error to information.
	HasFallback bool
	// Secondary carries the second string argument where one is recognized
	// (Route::view template name, controller action method).
	Secondary     string
	SecondarySpan Span
}
