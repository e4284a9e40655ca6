package registry

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/project"
	"github.com/standardbeagle/larnav/internal/types"
)

func scanFixture(t *testing.T, cfg *config.Config, files map[string]string) *Snapshot {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	proj, err := project.Open(dir, cfg)
	require.NoError(t, err)

	snap, err := NewScanner(proj, cfg).Scan(context.Background())
	require.NoError(t, err)
	return snap
}

func TestScan_FullProject(t *testing.T) {
	snap := scanFixture(t, config.Default(), map[string]string{
		"bootstrap/app.php": `<?php
$middleware->alias(['admin' => \App\Http\Middleware\EnsureAdmin::class]);
`,
		"app/Providers/AppServiceProvider.php": `<?php
class AppServiceProvider extends ServiceProvider
{
    public function register(): void
    {
        $this->app->singleton('reports', ReportService::class);
    }
}
`,
		"routes/web.php": `<?php
Route::get('/reports', [ReportController::class, 'index'])->name('reports.index');
`,
		"config/app.php": `<?php
return ['name' => 'Fixture', 'debug' => false];
`,
		".env": "APP_NAME=Fixture\n",
	})

	mw, ok := snap.LookupMiddleware("admin")
	require.True(t, ok)
	assert.Equal(t, `App\Http\Middleware\EnsureAdmin`, mw.Value)
	assert.Equal(t, "bootstrap/app.php", mw.Path)
	assert.Equal(t, types.TierApplication, mw.Tier)

	binding, ok := snap.LookupBinding("reports")
	require.True(t, ok)
	assert.Equal(t, "ReportService", binding.Value)

	route, ok := snap.LookupRoute("reports.index")
	require.True(t, ok)
	assert.Equal(t, "/reports", route.Value)
	assert.Equal(t, "routes/web.php", route.Path)

	cfgKey, ok := snap.LookupConfig("app.name")
	require.True(t, ok)
	assert.Equal(t, "Fixture", cfgKey.Value)

	env, ok := snap.LookupEnv("APP_NAME")
	require.True(t, ok)
	assert.Equal(t, "Fixture", env.Value)

	// Four PHP files plus one env file.
	assert.Equal(t, 5, snap.Stats.FilesScanned)
	assert.Zero(t, snap.Stats.ParseErrors)
	assert.False(t, snap.BuiltAt.IsZero())
}

func TestScan_AppTierOverridesVendor(t *testing.T) {
	cfg := config.Default()
	cfg.Scan.ScanVendor = true

	snap := scanFixture(t, cfg, map[string]string{
		"vendor/acme/toolkit/src/ToolkitServiceProvider.php": `<?php
class ToolkitServiceProvider extends ServiceProvider
{
    public function boot(Router $router): void
    {
        $router->aliasMiddleware('audit', \Acme\Toolkit\AuditMiddleware::class);
    }
}
`,
		"app/Providers/AppServiceProvider.php": `<?php
class AppServiceProvider extends ServiceProvider
{
    public function boot(Router $router): void
    {
        $router->aliasMiddleware('audit', \App\Http\Middleware\Audit::class);
    }
}
`,
	})

	reg, ok := snap.LookupMiddleware("audit")
	require.True(t, ok)
	assert.Equal(t, `App\Http\Middleware\Audit`, reg.Value)
	assert.Equal(t, types.TierApplication, reg.Tier)
}

func TestScan_VendorSkippedByDefault(t *testing.T) {
	snap := scanFixture(t, config.Default(), map[string]string{
		"vendor/acme/toolkit/src/ToolkitServiceProvider.php": `<?php
class ToolkitServiceProvider extends ServiceProvider
{
    public function boot(Router $router): void
    {
        $router->aliasMiddleware('audit', AuditMiddleware::class);
    }
}
`,
	})

	reg, ok := snap.LookupMiddleware("audit")
	assert.False(t, ok)
	assert.Empty(t, reg.Value)
}

func TestScan_EnvFilePrecedence(t *testing.T) {
	snap := scanFixture(t, config.Default(), map[string]string{
		".env.example": "APP_ENV=example\nMAIL_HOST=smtp.example.test\nEXAMPLE_ONLY=yes\n",
		".env.local":   "APP_ENV=localfile\nMAIL_HOST=localhost\n",
		".env":         "APP_ENV=production\n",
	})

	env, ok := snap.LookupEnv("APP_ENV")
	require.True(t, ok)
	assert.Equal(t, "production", env.Value)
	assert.Equal(t, ".env", env.Path)

	// A key absent from .env keeps the next file down.
	mail, ok := snap.LookupEnv("MAIL_HOST")
	require.True(t, ok)
	assert.Equal(t, "localhost", mail.Value)
	assert.Equal(t, ".env.local", mail.Path)

	example, ok := snap.LookupEnv("EXAMPLE_ONLY")
	require.True(t, ok)
	assert.Equal(t, ".env.example", example.Path)
}

func TestScan_BuiltinsOnlyFillGaps(t *testing.T) {
	snap := scanFixture(t, config.Default(), map[string]string{
		"bootstrap/app.php": `<?php
$middleware->alias(['auth' => \App\Http\Middleware\CustomAuth::class]);
`,
	})

	// Discovered names shadow the framework table.
	auth, ok := snap.LookupMiddleware("auth")
	require.True(t, ok)
	assert.Equal(t, `App\Http\Middleware\CustomAuth`, auth.Value)
	assert.Equal(t, "bootstrap/app.php", auth.Path)

	// Undiscovered names fall back with no source location.
	throttle, ok := snap.LookupMiddleware("throttle")
	require.True(t, ok)
	assert.Empty(t, throttle.Path)
	assert.Equal(t, types.TierFramework, throttle.Tier)

	_, ok = snap.LookupMiddleware("nonexistent")
	assert.False(t, ok)
}

func TestScan_ParseErrorCountedNotFatal(t *testing.T) {
	snap := scanFixture(t, config.Default(), map[string]string{
		"routes/web.php": `<?php
Route::get('/ok', HomeController::class)->name('home');
`,
		"config/broken.php": "<?php return [ 'unterminated",
	})

	_, ok := snap.LookupRoute("home")
	assert.True(t, ok)
}

func TestViewNameForPath(t *testing.T) {
	roots := []string{"themes/shop/views", "resources/views"}

	name, ok := ViewNameForPath(roots, "resources/views/users/profile.blade.php")
	require.True(t, ok)
	assert.Equal(t, "users.profile", name)

	name, ok = ViewNameForPath(roots, "themes/shop/views/checkout.blade.php")
	require.True(t, ok)
	assert.Equal(t, "checkout", name)

	_, ok = ViewNameForPath(roots, "resources/views/app.css")
	assert.False(t, ok)
	_, ok = ViewNameForPath(roots, "app/Models/User.php")
	assert.False(t, ok)
}
