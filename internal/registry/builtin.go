package registry

// Framework tables consulted only for names a scan did not discover.
// Application and package registrations always shadow these.

var builtinMiddleware = map[string]string{
	"auth":             `Illuminate\Auth\Middleware\Authenticate`,
	"auth.basic":       `Illuminate\Auth\Middleware\AuthenticateWithBasicAuth`,
	"auth.session":     `Illuminate\Session\Middleware\AuthenticateSession`,
	"cache.headers":    `Illuminate\Http\Middleware\SetCacheHeaders`,
	"can":              `Illuminate\Auth\Middleware\Authorize`,
	"guest":            `Illuminate\Auth\Middleware\RedirectIfAuthenticated`,
	"password.confirm": `Illuminate\Auth\Middleware\RequirePassword`,
	"precognitive":     `Illuminate\Foundation\Http\Middleware\HandlePrecognitiveRequests`,
	"signed":           `Illuminate\Routing\Middleware\ValidateSignature`,
	"subscribed":       `Spark\Http\Middleware\VerifyBillableIsSubscribed`,
	"throttle":         `Illuminate\Routing\Middleware\ThrottleRequests`,
	"verified":         `Illuminate\Auth\Middleware\EnsureEmailIsVerified`,
}

var builtinBindings = map[string]string{
	"app":        `Illuminate\Foundation\Application`,
	"auth":       `Illuminate\Auth\AuthManager`,
	"cache":      `Illuminate\Cache\CacheManager`,
	"cache.store": `Illuminate\Cache\Repository`,
	"config":     `Illuminate\Config\Repository`,
	"cookie":     `Illuminate\Cookie\CookieJar`,
	"db":         `Illuminate\Database\DatabaseManager`,
	"events":     `Illuminate\Events\Dispatcher`,
	"files":      `Illuminate\Filesystem\Filesystem`,
	"filesystem": `Illuminate\Filesystem\FilesystemManager`,
	"hash":       `Illuminate\Hashing\HashManager`,
	"log":        `Illuminate\Log\LogManager`,
	"mailer":     `Illuminate\Mail\Mailer`,
	"queue":      `Illuminate\Queue\QueueManager`,
	"redis":      `Illuminate\Redis\RedisManager`,
	"request":    `Illuminate\Http\Request`,
	"router":     `Illuminate\Routing\Router`,
	"session":    `Illuminate\Session\SessionManager`,
	"translator": `Illuminate\Translation\Translator`,
	"url":        `Illuminate\Routing\UrlGenerator`,
	"validator":  `Illuminate\Validation\Factory`,
	"view":       `Illuminate\View\Factory`,
}
