package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

func phpOccurrences(t *testing.T, source string) []types.PatternOccurrence {
	t.Helper()
	res, err := parser.Parse(1, "app/test.php", types.DialectPHP, []byte(source))
	require.NoError(t, err)
	t.Cleanup(res.Close)
	return File(1, "app/test.php", res)
}

func bladeOccurrences(t *testing.T, source string) []types.PatternOccurrence {
	t.Helper()
	res, err := parser.Parse(2, "resources/views/test.blade.php", types.DialectBlade, []byte(source))
	require.NoError(t, err)
	t.Cleanup(res.Close)
	return File(2, "resources/views/test.blade.php", res)
}

func kinds(occs []types.PatternOccurrence) []types.PatternKind {
	out := make([]types.PatternKind, len(occs))
	for i, o := range occs {
		out[i] = o.Kind
	}
	return out
}

func TestExtract_ViewCall(t *testing.T) {
	occs := phpOccurrences(t, `<?php return view('users.index', ['users' => $users]);`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternView, occs[0].Kind)
	assert.Equal(t, "users.index", occs[0].Target)
	assert.False(t, occs[0].HasFallback)
}

func TestExtract_ArgSpanExcludesQuotes(t *testing.T) {
	source := `<?php view('home');`
	occs := phpOccurrences(t, source)

	require.Len(t, occs, 1)
	span := occs[0].ArgSpan
	assert.Equal(t, "home", source[span.StartByte:span.EndByte])
}

func TestExtract_FirstArgumentOnly(t *testing.T) {
	// The default value of env() is not a pattern target.
	occs := phpOccurrences(t, `<?php $v = env('APP_KEY', 'fallback-value');`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternEnv, occs[0].Kind)
	assert.Equal(t, "APP_KEY", occs[0].Target)
	assert.True(t, occs[0].HasFallback)
}

func TestExtract_EnvWithoutFallback(t *testing.T) {
	occs := phpOccurrences(t, `<?php $v = env('APP_DEBUG');`)

	require.Len(t, occs, 1)
	assert.False(t, occs[0].HasFallback)
}

func TestExtract_DynamicArgumentsExcluded(t *testing.T) {
	cases := []string{
		`<?php view($name);`,
		`<?php view('users.' . $page);`,
		`<?php view("users.{$page}");`,
		`<?php config(strtolower($key));`,
	}
	for _, source := range cases {
		assert.Empty(t, phpOccurrences(t, source), "source: %s", source)
	}
}

func TestExtract_DoubleQuotedConstantAccepted(t *testing.T) {
	occs := phpOccurrences(t, `<?php view("users.index");`)

	require.Len(t, occs, 1)
	assert.Equal(t, "users.index", occs[0].Target)
}

func TestExtract_RouteViewTargetsTemplate(t *testing.T) {
	occs := phpOccurrences(t, `<?php Route::view('/welcome', 'welcome');`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternRouteView, occs[0].Kind)
	assert.Equal(t, "welcome", occs[0].Target)
	assert.Equal(t, "/welcome", occs[0].Secondary)
}

func TestExtract_QualifiedFacadeScope(t *testing.T) {
	occs := phpOccurrences(t, `<?php \Illuminate\Support\Facades\Route::view('/home', 'home');`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternRouteView, occs[0].Kind)
}

func TestExtract_MiddlewareArray(t *testing.T) {
	occs := phpOccurrences(t, `<?php Route::middleware(['auth', 'verified'])->group(function () {});`)

	require.Len(t, occs, 2)
	assert.Equal(t, "auth", occs[0].Target)
	assert.Equal(t, "verified", occs[1].Target)
	for _, o := range occs {
		assert.Equal(t, types.PatternMiddleware, o.Kind)
	}
}

func TestExtract_MiddlewareFluent(t *testing.T) {
	occs := phpOccurrences(t, `<?php Route::get('/p', fn () => 1)->middleware('auth');`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternMiddleware, occs[0].Kind)
	assert.Equal(t, "auth", occs[0].Target)
}

func TestExtract_ContainerClassConstant(t *testing.T) {
	occs := phpOccurrences(t, `<?php $svc = app(\App\Services\Billing::class);`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternContainer, occs[0].Kind)
	assert.Equal(t, `\App\Services\Billing`, occs[0].Target)
}

func TestExtract_AppMakeRequiresAppReceiver(t *testing.T) {
	occs := phpOccurrences(t, `<?php app()->make('cache'); $factory->make('ignored');`)

	require.Len(t, occs, 1)
	assert.Equal(t, "cache", occs[0].Target)
}

func TestExtract_ControllerActionPair(t *testing.T) {
	occs := phpOccurrences(t, `<?php $url = action([\App\Http\Controllers\UserController::class, 'show']);`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternControllerPair, occs[0].Kind)
	assert.Equal(t, `\App\Http\Controllers\UserController`, occs[0].Target)
	assert.Equal(t, "show", occs[0].Secondary)
}

func TestExtract_TranslationHelpers(t *testing.T) {
	occs := phpOccurrences(t, `<?php echo __('messages.welcome') . trans('auth.failed');`)

	require.Len(t, occs, 2)
	assert.Equal(t, []types.PatternKind{types.PatternTranslation, types.PatternTranslation}, kinds(occs))
}

func TestExtract_SingleQuotedEscapes(t *testing.T) {
	occs := phpOccurrences(t, `<?php echo __('It\'s me') . __('a\\b') . __('keep\nraw');`)

	require.Len(t, occs, 3)
	assert.Equal(t, `It's me`, occs[0].Target)
	assert.Equal(t, `a\b`, occs[1].Target)
	// Single quotes only unescape \' and \\; \n stays two characters.
	assert.Equal(t, `keep\nraw`, occs[2].Target)
}

func TestExtract_DoubleQuotedEscapes(t *testing.T) {
	occs := phpOccurrences(t, `<?php echo __("a\"b") . __("line\nbreak") . __("\x41\u{1F600}\102");`)

	require.Len(t, occs, 3)
	assert.Equal(t, `a"b`, occs[0].Target)
	assert.Equal(t, "line\nbreak", occs[1].Target)
	assert.Equal(t, "A\U0001F600B", occs[2].Target)
}

func TestExtract_PathHelpers(t *testing.T) {
	occs := phpOccurrences(t, `<?php $p = storage_path('app/invoices'); $q = base_path('config');`)

	require.Len(t, occs, 2)
	assert.Equal(t, types.PatternPathHelper, occs[0].Kind)
	assert.Equal(t, "storage", occs[0].Secondary)
	assert.Equal(t, ".", occs[1].Secondary)
}

func TestExtract_NamespacedHelperIgnored(t *testing.T) {
	assert.Empty(t, phpOccurrences(t, `<?php Support\view('x');`))
}

func TestExtract_BladeComponentTags(t *testing.T) {
	occs := bladeOccurrences(t, `<div><x-alert type="error"/><x-forms.input name="email"></x-forms.input></div>`)

	var components []string
	for _, o := range occs {
		if o.Kind == types.PatternBladeComponent {
			components = append(components, o.Target)
		}
	}
	assert.Equal(t, []string{"alert", "forms.input"}, components)
}

func TestExtract_BladeLivewireTag(t *testing.T) {
	occs := bladeOccurrences(t, `<livewire:user-profile :user="$user"/>`)

	require.Len(t, occs, 1)
	assert.Equal(t, types.PatternBladeLivewire, occs[0].Kind)
	assert.Equal(t, "user-profile", occs[0].Target)
}

func TestExtract_BladeSlot(t *testing.T) {
	occs := bladeOccurrences(t, `<x-card><x-slot:title>Hi</x-slot></x-card>`)

	var slots []string
	for _, o := range occs {
		if o.Kind == types.PatternBladeSlot {
			slots = append(slots, o.Target)
		}
	}
	require.NotEmpty(t, slots)
	assert.Equal(t, "title", slots[0])
}

func TestExtract_BladeDirectives(t *testing.T) {
	occs := bladeOccurrences(t, "@extends('layouts.app')\n@section('content')\n@endsection")

	var directives []string
	var views []string
	for _, o := range occs {
		switch o.Kind {
		case types.PatternBladeDirective:
			directives = append(directives, o.Target)
		case types.PatternView:
			views = append(views, o.Target)
		}
	}
	assert.Equal(t, []string{"extends", "section", "endsection"}, directives)
	// @extends gets a resolvable view occurrence, @section does not.
	assert.Equal(t, []string{"layouts.app"}, views)
}

func TestExtract_BladeDynamicIncludeHasNoViewOccurrence(t *testing.T) {
	occs := bladeOccurrences(t, `@include($partial)`)

	assert.Equal(t, []types.PatternKind{types.PatternBladeDirective}, kinds(occs))
}

func TestExtract_BladeEcho(t *testing.T) {
	occs := bladeOccurrences(t, `<p>{{ $user->name }}</p>{!! $html !!}`)

	var echoes []string
	for _, o := range occs {
		if o.Kind == types.PatternBladeEcho {
			echoes = append(echoes, o.Target)
		}
	}
	assert.Equal(t, []string{"$user->name", "$html"}, echoes)
}

func TestExtract_BladeCommentSkipped(t *testing.T) {
	occs := bladeOccurrences(t, `{{-- @include('hidden') {{ $x }} --}}<p>{{ $y }}</p>`)

	var echoes []string
	for _, o := range occs {
		if o.Kind == types.PatternBladeEcho {
			echoes = append(echoes, o.Target)
		}
	}
	assert.Equal(t, []string{"$y"}, echoes)
}

func TestExtract_BladeUnknownAtWordIgnored(t *testing.T) {
	occs := bladeOccurrences(t, `<p>mail me at user@example.com</p>`)

	for _, o := range occs {
		assert.NotEqual(t, types.PatternBladeDirective, o.Kind)
	}
}

func TestExtract_DirectiveDoc(t *testing.T) {
	doc, ok := DirectiveDoc("include")
	require.True(t, ok)
	assert.NotEmpty(t, doc)

	_, ok = DirectiveDoc("nosuchdirective")
	assert.False(t, ok)
}

func TestExtract_Idempotent(t *testing.T) {
	source := `<?php view('a.b'); env('K'); Route::middleware(['m1','m2']);`
	first := phpOccurrences(t, source)
	second := phpOccurrences(t, source)
	assert.Equal(t, first, second)
}
