package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/larnav/internal/parser"
	"github.com/standardbeagle/larnav/internal/types"
)

func parsePHP(t *testing.T, source string) *parser.Result {
	t.Helper()
	res, err := parser.Parse(types.InvalidFileID, "test.php", types.DialectPHP, []byte(source))
	require.NoError(t, err)
	t.Cleanup(res.Close)
	return res
}

func TestCollectRegistrations_BootstrapAlias(t *testing.T) {
	res := parsePHP(t, `<?php
return Application::configure(basePath: dirname(__DIR__))
    ->withMiddleware(function (Middleware $middleware) {
        $middleware->alias([
            'admin' => \App\Http\Middleware\EnsureAdmin::class,
            'subscribed' => EnsureSubscribed::class,
        ]);
    })->create();
`)
	regs := collectRegistrations("bootstrap/app.php", res, types.TierApplication)

	require.Len(t, regs.Middleware, 2)
	assert.Equal(t, "admin", regs.Middleware[0].Name)
	assert.Equal(t, `App\Http\Middleware\EnsureAdmin`, regs.Middleware[0].Value)
	assert.Equal(t, "subscribed", regs.Middleware[1].Name)
	assert.Equal(t, "EnsureSubscribed", regs.Middleware[1].Value)
}

func TestCollectRegistrations_KernelAliases(t *testing.T) {
	res := parsePHP(t, `<?php
class Kernel extends HttpKernel
{
    protected $middlewareAliases = [
        'auth.custom' => \App\Http\Middleware\Authenticate::class,
    ];
}
`)
	regs := collectRegistrations("app/Http/Kernel.php", res, types.TierApplication)

	require.Len(t, regs.Middleware, 1)
	assert.Equal(t, "auth.custom", regs.Middleware[0].Name)
	assert.Equal(t, `App\Http\Middleware\Authenticate`, regs.Middleware[0].Value)
}

func TestCollectRegistrations_LegacyRouteMiddleware(t *testing.T) {
	res := parsePHP(t, `<?php
class Kernel extends HttpKernel
{
    protected $routeMiddleware = [
        'role' => \Spatie\Permission\Middlewares\RoleMiddleware::class,
    ];
}
`)
	regs := collectRegistrations("app/Http/Kernel.php", res, types.TierApplication)

	require.Len(t, regs.Middleware, 1)
	assert.Equal(t, "role", regs.Middleware[0].Name)
}

func TestCollectRegistrations_AliasMiddlewareCall(t *testing.T) {
	res := parsePHP(t, `<?php
class AppServiceProvider extends ServiceProvider
{
    public function boot(Router $router): void
    {
        $router->aliasMiddleware('tenant', ResolveTenant::class);
    }
}
`)
	regs := collectRegistrations("app/Providers/AppServiceProvider.php", res, types.TierApplication)

	require.Len(t, regs.Middleware, 1)
	assert.Equal(t, "tenant", regs.Middleware[0].Name)
	assert.Equal(t, "ResolveTenant", regs.Middleware[0].Value)
}

func TestCollectRegistrations_Bindings(t *testing.T) {
	res := parsePHP(t, `<?php
class AppServiceProvider extends ServiceProvider
{
    public function register(): void
    {
        $this->app->bind('payment.gateway', StripeGateway::class);
        $this->app->singleton(\App\Services\Mailer::class, function ($app) {
            return new Mailer($app['config']);
        });
        $this->app->scoped(ReportBuilder::class, ReportBuilder::class);
    }
}
`)
	regs := collectRegistrations("app/Providers/AppServiceProvider.php", res, types.TierApplication)

	require.Len(t, regs.Bindings, 3)
	assert.Equal(t, "payment.gateway", regs.Bindings[0].Name)
	assert.Equal(t, "StripeGateway", regs.Bindings[0].Value)
	assert.Equal(t, `App\Services\Mailer`, regs.Bindings[1].Name)
	assert.Equal(t, "{closure}", regs.Bindings[1].Value)
	assert.Equal(t, "ReportBuilder", regs.Bindings[2].Name)
}

func TestCollectRegistrations_NamedRoutes(t *testing.T) {
	res := parsePHP(t, `<?php
Route::get('/users', [UserController::class, 'index'])->name('users.index');
Route::post('/users/{user}/ban', BanUserController::class)
    ->middleware('admin')
    ->name('users.ban');
Route::name('admin.')->group(function () {
    Route::get('/dashboard', DashboardController::class)->name('dashboard');
});
`)
	regs := collectRegistrations("routes/web.php", res, types.TierApplication)

	byName := make(map[string]types.Registration)
	for _, r := range regs.Routes {
		byName[r.Name] = r
	}

	require.Contains(t, byName, "users.index")
	assert.Equal(t, "/users", byName["users.index"].Value)

	// The URI survives an intervening fluent call.
	require.Contains(t, byName, "users.ban")
	assert.Equal(t, "/users/{user}/ban", byName["users.ban"].Value)

	// Group name prefixes end with a dot and are not routes.
	assert.NotContains(t, byName, "admin.")
	assert.Contains(t, byName, "dashboard")
}

func TestCollectRegistrations_DynamicKeysSkipped(t *testing.T) {
	res := parsePHP(t, `<?php
$middleware->alias([
    $name => SomeMiddleware::class,
    'literal' => OtherMiddleware::class,
]);
$this->app->bind($abstract, $concrete);
`)
	regs := collectRegistrations("bootstrap/app.php", res, types.TierApplication)

	require.Len(t, regs.Middleware, 1)
	assert.Equal(t, "literal", regs.Middleware[0].Name)
	assert.Empty(t, regs.Bindings)
}

func TestCollectConfigKeys_DottedNesting(t *testing.T) {
	res := parsePHP(t, `<?php
return [
    'name' => 'Laravel',
    'connections' => [
        'mysql' => [
            'options' => [
                'timeout' => 5,
            ],
        ],
    ],
];
`)
	keys := collectConfigKeys("config/database.php", res, types.TierApplication)

	byName := make(map[string]types.Registration)
	for _, r := range keys {
		byName[r.Name] = r
	}

	assert.Contains(t, byName, "database")
	assert.Equal(t, "Laravel", byName["database.name"].Value)
	assert.Contains(t, byName, "database.connections")
	assert.Contains(t, byName, "database.connections.mysql")
	assert.Contains(t, byName, "database.connections.mysql.options")

	// Depth past maxConfigDepth falls back to the enclosing key.
	assert.NotContains(t, byName, "database.connections.mysql.options.timeout")
}

func TestCollectConfigKeys_NoReturnArray(t *testing.T) {
	res := parsePHP(t, `<?php
$config = ['name' => 'Laravel'];
`)
	assert.Empty(t, collectConfigKeys("config/app.php", res, types.TierApplication))
}
