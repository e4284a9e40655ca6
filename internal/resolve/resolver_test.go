package resolve

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/registry"
	"github.com/standardbeagle/larnav/internal/types"
)

func newResolver(t *testing.T, files map[string]string) *Resolver {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	cfg := config.Default()
	proj, err := project.Open(dir, cfg)
	require.NoError(t, err)
	return New(project.NewContext(proj, cfg), cfg)
}

func occur(kind types.PatternKind, target string) types.PatternOccurrence {
	return types.PatternOccurrence{Kind: kind, Target: target}
}

func TestResolve_ViewExists(t *testing.T) {
	r := newResolver(t, map[string]string{
		"resources/views/users/profile.blade.php": "<div></div>",
	})

	res := r.Resolve(occur(types.PatternView, "users.profile"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "resources/views/users/profile.blade.php", res.Location.Path)
}

func TestResolve_ViewMissingCarriesExpectedPath(t *testing.T) {
	r := newResolver(t, nil)

	res := r.Resolve(occur(types.PatternView, "users.profile"), nil)
	assert.Equal(t, types.Missing, res.State)
	assert.Contains(t, res.Candidates, "resources/views/users/profile.blade.php")
	assert.Contains(t, res.Detail, "users.profile")
}

func TestResolve_TranslationDottedKey(t *testing.T) {
	r := newResolver(t, map[string]string{
		"lang/en/auth.php": "<?php return ['failed' => 'These credentials do not match.'];",
	})

	res := r.Resolve(occur(types.PatternTranslation, "auth.failed"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "lang/en/auth.php", res.Location.Path)
}

func TestResolve_TranslationPhraseFallsBackToJSON(t *testing.T) {
	r := newResolver(t, map[string]string{
		"resources/lang/en.json": `{"Welcome back!": "Welcome back!"}`,
	})

	res := r.Resolve(occur(types.PatternTranslation, "Welcome back!"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "resources/lang/en.json", res.Location.Path)
	assert.NotZero(t, res.Location.Span.EndByte)
}

func TestResolve_TranslationExhaustedChain(t *testing.T) {
	r := newResolver(t, nil)

	res := r.Resolve(occur(types.PatternTranslation, "auth.failed"), nil)
	assert.Equal(t, types.Missing, res.State)
	// Probe order: structured files first, then flat JSON, lang/ before
	// resources/lang/.
	assert.Equal(t, []string{
		"lang/en/auth.php",
		"resources/lang/en/auth.php",
		"lang/en.json",
		"resources/lang/en.json",
	}, res.Candidates)
}

func TestResolve_TranslationPhraseNotInJSON(t *testing.T) {
	r := newResolver(t, map[string]string{
		"lang/en.json": `{"Goodbye": "Goodbye"}`,
	})

	res := r.Resolve(occur(types.PatternTranslation, "Welcome back!"), nil)
	assert.Equal(t, types.Missing, res.State)
}

func TestResolve_EnvKey(t *testing.T) {
	r := newResolver(t, nil)
	snap := &registry.Snapshot{Env: map[string]types.Registration{
		"APP_NAME": {Name: "APP_NAME", Value: "Laravel", Path: ".env", Span: types.Span{EndByte: 8, EndCol: 8}},
	}}

	res := r.Resolve(occur(types.PatternEnv, "APP_NAME"), snap)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, ".env", res.Location.Path)
	assert.Equal(t, "Laravel", res.Detail)

	res = r.Resolve(occur(types.PatternEnv, "APP_NAM"), snap)
	assert.Equal(t, types.Missing, res.State)
	assert.Equal(t, []string{"APP_NAME"}, res.Suggestions)
}

func TestResolve_EnvBeforeScanIsUnavailable(t *testing.T) {
	r := newResolver(t, nil)

	res := r.Resolve(occur(types.PatternEnv, "APP_NAME"), nil)
	assert.Equal(t, types.Unavailable, res.State)
}

func TestResolve_MiddlewareAliasToClassFile(t *testing.T) {
	r := newResolver(t, map[string]string{
		"app/Http/Middleware/EnsureAdmin.php": "<?php class EnsureAdmin {}",
	})
	snap := &registry.Snapshot{Middleware: map[string]types.Registration{
		"admin": {Name: "admin", Value: `App\Http\Middleware\EnsureAdmin`, Path: "bootstrap/app.php"},
	}}

	res := r.Resolve(occur(types.PatternMiddleware, "admin"), snap)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Http/Middleware/EnsureAdmin.php", res.Location.Path)
}

func TestResolve_MiddlewareParametersStripped(t *testing.T) {
	r := newResolver(t, nil)
	snap := &registry.Snapshot{Middleware: map[string]types.Registration{}}

	res := r.Resolve(occur(types.PatternMiddleware, "throttle:60,1"), snap)
	// Falls back to the framework table; no project file to open.
	assert.Equal(t, types.Resolved, res.State)
	assert.Empty(t, res.Location.Path)
	assert.NotEmpty(t, res.Detail)
}

func TestResolve_MiddlewareUnknownSuggests(t *testing.T) {
	r := newResolver(t, nil)
	snap := &registry.Snapshot{Middleware: map[string]types.Registration{
		"tenant": {Name: "tenant", Value: "ResolveTenant", Path: "bootstrap/app.php"},
	}}

	res := r.Resolve(occur(types.PatternMiddleware, "tenang"), snap)
	assert.Equal(t, types.Missing, res.State)
	assert.Equal(t, []string{"tenant"}, res.Suggestions)
}

func TestResolve_ContainerClosureBindingUsesDeclarationSite(t *testing.T) {
	r := newResolver(t, nil)
	snap := &registry.Snapshot{Bindings: map[string]types.Registration{
		"reports": {Name: "reports", Value: "{closure}", Path: "app/Providers/AppServiceProvider.php", Span: types.Span{Row: 7}},
	}}

	res := r.Resolve(occur(types.PatternContainer, "reports"), snap)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Providers/AppServiceProvider.php", res.Location.Path)
	assert.Equal(t, uint(7), res.Location.Span.Row)
}

func TestResolve_ContainerUnboundClassAutoloads(t *testing.T) {
	r := newResolver(t, map[string]string{
		"app/Services/Mailer.php": "<?php class Mailer {}",
	})
	snap := &registry.Snapshot{Bindings: map[string]types.Registration{}}

	res := r.Resolve(occur(types.PatternContainer, `App\Services\Mailer`), snap)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Services/Mailer.php", res.Location.Path)
}

func TestResolve_RouteName(t *testing.T) {
	r := newResolver(t, nil)
	snap := &registry.Snapshot{Routes: map[string]types.Registration{
		"users.index": {Name: "users.index", Value: "/users", Path: "routes/web.php", Span: types.Span{Row: 2}},
	}}

	res := r.Resolve(occur(types.PatternRouteName, "users.index"), snap)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "routes/web.php", res.Location.Path)
	assert.Equal(t, "/users", res.Detail)

	res = r.Resolve(occur(types.PatternRouteName, "users.indx"), snap)
	assert.Equal(t, types.Missing, res.State)
	assert.Equal(t, []string{"users.index"}, res.Suggestions)
}

func TestResolve_AssetAndPathHelper(t *testing.T) {
	r := newResolver(t, map[string]string{
		"public/css/app.css":         "body{}",
		"storage/app/invoices/.keep": "",
	})

	res := r.Resolve(occur(types.PatternAsset, "css/app.css"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "public/css/app.css", res.Location.Path)

	occ := occur(types.PatternPathHelper, "app/invoices")
	occ.Secondary = "storage"
	res = r.Resolve(occ, nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "storage/app/invoices", res.Location.Path)
}

func TestResolve_ControllerPair(t *testing.T) {
	r := newResolver(t, map[string]string{
		"app/Http/Controllers/UserController.php": "<?php class UserController {}",
	})

	occ := occur(types.PatternControllerPair, `App\Http\Controllers\UserController`)
	occ.Secondary = "index"
	res := r.Resolve(occ, nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Http/Controllers/UserController.php", res.Location.Path)
	assert.Equal(t, "index", res.Detail)
}

func TestResolve_BladeComponent(t *testing.T) {
	r := newResolver(t, map[string]string{
		"resources/views/components/alert.blade.php": "<div></div>",
		"app/View/Components/UserCard.php":           "<?php class UserCard {}",
	})

	res := r.Resolve(occur(types.PatternBladeComponent, "alert"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "resources/views/components/alert.blade.php", res.Location.Path)

	// Class-backed components win over the anonymous view location.
	res = r.Resolve(occur(types.PatternBladeComponent, "user-card"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/View/Components/UserCard.php", res.Location.Path)
}

func TestResolve_LivewireComponent(t *testing.T) {
	r := newResolver(t, map[string]string{
		"app/Livewire/Admin/UserTable.php": "<?php class UserTable {}",
	})

	res := r.Resolve(occur(types.PatternLivewireMount, "admin.user-table"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Livewire/Admin/UserTable.php", res.Location.Path)

	res = r.Resolve(occur(types.PatternLivewireMount, "admin.missing"), nil)
	assert.Equal(t, types.Missing, res.State)
	assert.Contains(t, res.Candidates, "app/Livewire/Admin/Missing.php")
	assert.Contains(t, res.Candidates, "resources/views/livewire/admin/missing.blade.php")
}

func TestResolve_ViewRootFromProjectConfig(t *testing.T) {
	r := newResolver(t, map[string]string{
		"config/view.php": `<?php return [
    'paths' => [
        base_path('themes/default/views'),
        resource_path('views'),
    ],
];`,
		"themes/default/views/users/profile.blade.php": "<div></div>",
	})

	res := r.Resolve(occur(types.PatternView, "users.profile"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "themes/default/views/users/profile.blade.php", res.Location.Path)

	// Both configured roots appear in probe order for the missing case.
	res = r.Resolve(occur(types.PatternView, "absent"), nil)
	assert.Equal(t, types.Missing, res.State)
	assert.Equal(t, []string{
		"themes/default/views/absent.blade.php",
		"resources/views/absent.blade.php",
	}, res.Candidates)
}

func TestResolve_LivewireLegacyNamespace(t *testing.T) {
	r := newResolver(t, map[string]string{
		"config/livewire.php": `<?php return [
    'class_namespace' => 'App\\Http\\Livewire',
];`,
		"app/Http/Livewire/Counter.php": "<?php class Counter {}",
	})

	res := r.Resolve(occur(types.PatternLivewireMount, "counter"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.Equal(t, "app/Http/Livewire/Counter.php", res.Location.Path)
}

func TestResolve_DirectiveDocumentation(t *testing.T) {
	r := newResolver(t, nil)

	res := r.Resolve(occur(types.PatternBladeDirective, "foreach"), nil)
	assert.Equal(t, types.Resolved, res.State)
	assert.NotEmpty(t, res.Detail)

	res = r.Resolve(occur(types.PatternBladeDirective, "madeUpDirective"), nil)
	assert.Equal(t, types.Missing, res.State)
}

func TestRoundTrip_Naming(t *testing.T) {
	cases := []string{"users.profile", "admin.reports.monthly", "welcome"}
	for _, name := range cases {
		got, ok := ViewName(ViewRelPath(name))
		require.True(t, ok)
		assert.Equal(t, name, got)
	}

	for _, name := range []string{"counter", "admin.user-table"} {
		got, ok := LivewireName("app/Livewire", LivewireClassPath("app/Livewire", name))
		require.True(t, ok)
		assert.Equal(t, name, got)
	}
}

func TestProber_TTLAndBound(t *testing.T) {
	dir := t.TempDir()
	cfg := config.Default()
	proj, err := project.Open(dir, cfg)
	require.NoError(t, err)

	now := time.Now()
	p := newProber(proj, 2*time.Second)
	p.clock = func() time.Time { return now }

	assert.False(t, p.exists("late.txt"))

	// Created within the TTL window: the cached negative answer holds.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "late.txt"), []byte("x"), 0644))
	assert.False(t, p.exists("late.txt"))

	now = now.Add(3 * time.Second)
	assert.True(t, p.exists("late.txt"))

	// Invalidation beats the TTL.
	require.NoError(t, os.Remove(filepath.Join(dir, "late.txt")))
	assert.True(t, p.exists("late.txt"))
	p.invalidate("late.txt")
	assert.False(t, p.exists("late.txt"))
}
