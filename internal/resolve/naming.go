package resolve

import (
	"strings"

	"github.com/standardbeagle/larnav/internal/project"
)

// Naming conventions per pattern kind. Each forward mapping has a
// reverse that recovers the original literal for identifier-safe
// segments, which keeps reference searches and resolution symmetric.

// ViewRelPath maps dot notation to a template path under a view root:
// users.profile becomes users/profile.blade.php.
func ViewRelPath(name string) string {
	return strings.ReplaceAll(name, ".", "/") + ".blade.php"
}

// ViewName reverses ViewRelPath.
func ViewName(relPath string) (string, bool) {
	if !strings.HasSuffix(relPath, ".blade.php") {
		return "", false
	}
	trimmed := strings.TrimSuffix(relPath, ".blade.php")
	return strings.ReplaceAll(trimmed, "/", "."), true
}

// ConfigFilePath maps a config key to the file its first segment names:
// database.connections.mysql probes config/database.php.
func ConfigFilePath(key string) string {
	seg := key
	if i := strings.IndexByte(key, '.'); i >= 0 {
		seg = key[:i]
	}
	return "config/" + seg + ".php"
}

// TranslationFilePath maps a dotted translation key's first segment to
// a structured translation file under one lang root for one locale.
func TranslationFilePath(langRoot, locale, key string) string {
	seg := key
	if i := strings.IndexByte(key, '.'); i >= 0 {
		seg = key[:i]
	}
	return langRoot + "/" + locale + "/" + seg + ".php"
}

// TranslationJSONPath names the flat locale-wide file phrase keys live in.
func TranslationJSONPath(langRoot, locale string) string {
	return langRoot + "/" + locale + ".json"
}

// AssetRelPath maps an asset reference under the public directory.
func AssetRelPath(publicDir, name string) string {
	return publicDir + "/" + strings.TrimPrefix(name, "/")
}

// LivewireClassPath maps a kebab component name to its class file under
// the discovered class root: admin.user-table becomes
// <classRoot>/Admin/UserTable.php.
func LivewireClassPath(classRoot, name string) string {
	return classRoot + "/" + pascalSegments(name) + ".php"
}

// LivewireViewPath maps a kebab component name to its rendered view
// under a view root.
func LivewireViewPath(viewRoot, name string) string {
	return viewRoot + "/livewire/" + strings.ReplaceAll(name, ".", "/") + ".blade.php"
}

// LivewireName reverses LivewireClassPath for identifier-safe segments.
func LivewireName(classRoot, relPath string) (string, bool) {
	prefix := classRoot + "/"
	if !strings.HasPrefix(relPath, prefix) || !strings.HasSuffix(relPath, ".php") {
		return "", false
	}
	trimmed := strings.TrimSuffix(strings.TrimPrefix(relPath, prefix), ".php")
	parts := strings.Split(trimmed, "/")
	for i, part := range parts {
		parts[i] = project.KebabCase(part)
	}
	return strings.Join(parts, "."), true
}

// ComponentClassPath maps an x- component name to its class-backed
// form under app/View/Components.
func ComponentClassPath(name string) string {
	return "app/View/Components/" + pascalSegments(name) + ".php"
}

// ComponentViewPath maps an x- component name to its anonymous view
// under a view root.
func ComponentViewPath(viewRoot, name string) string {
	return viewRoot + "/components/" + strings.ReplaceAll(name, ".", "/") + ".blade.php"
}

// pascalSegments converts each dot segment of a component name to
// StudlyCase and joins them as path segments.
func pascalSegments(name string) string {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		parts[i] = project.PascalCase(part)
	}
	return strings.Join(parts, "/")
}

// InertiaPagePath maps an Inertia page name to its source file stem:
// Users/Show probes resources/js/Pages/Users/Show with the framework's
// page extensions.
func InertiaPagePath(name string) string {
	return "resources/js/Pages/" + strings.ReplaceAll(name, ".", "/")
}

var inertiaExtensions = []string{".vue", ".jsx", ".tsx", ".svelte"}
