package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/types"
)

func newFixture(t *testing.T, files map[string]string) *Project {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		abs := filepath.Join(dir, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0755))
		require.NoError(t, os.WriteFile(abs, []byte(content), 0644))
	}
	p, err := Open(dir, config.Default())
	require.NoError(t, err)
	return p
}

func TestFind_ArtisanMarksRoot(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "app", "Models"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "artisan"), []byte("#!/usr/bin/env php"), 0755))

	root, err := Find(filepath.Join(dir, "app", "Models"))
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestFind_ComposerRequiresLaravel(t *testing.T) {
	dir := t.TempDir()
	composer := `{"require": {"laravel/framework": "^11.0"}}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "composer.json"), []byte(composer), 0644))

	root, err := Find(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, root)
}

func TestFind_NoProject(t *testing.T) {
	_, err := Find(t.TempDir())
	assert.Error(t, err)
}

func TestFiles_SortedAndFiltered(t *testing.T) {
	p := newFixture(t, map[string]string{
		"app/Http/Controllers/UserController.php": "<?php",
		"resources/views/users/index.blade.php":   "<div></div>",
		"app/Models/User.php":                     "<?php",
		"public/js/app.min.js":                    "x",
	})

	files, err := p.Files(WalkOptions{Suffixes: []string{".php"}})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"app/Http/Controllers/UserController.php",
		"app/Models/User.php",
		"resources/views/users/index.blade.php",
	}, files)
}

func TestFiles_VendorRequiresOptIn(t *testing.T) {
	p := newFixture(t, map[string]string{
		"app/Providers/AppServiceProvider.php":                   "<?php",
		"vendor/acme/widget/src/WidgetServiceProvider.php":       "<?php",
		"vendor/laravel/framework/src/Illuminate/Support/Str.php": "<?php",
	})

	without, err := p.Files(WalkOptions{Suffixes: []string{".php"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Providers/AppServiceProvider.php"}, without)

	with, err := p.Files(WalkOptions{Suffixes: []string{".php"}, IncludeVendor: true})
	require.NoError(t, err)
	assert.Len(t, with, 3)
}

func TestFiles_GitignoreRespected(t *testing.T) {
	p := newFixture(t, map[string]string{
		".gitignore":          "generated.php\n",
		"app/generated.php":   "<?php",
		"app/Models/User.php": "<?php",
	})

	files, err := p.Files(WalkOptions{Suffixes: []string{".php"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"app/Models/User.php"}, files)
}

func TestFiles_MissingSubdir(t *testing.T) {
	p := newFixture(t, map[string]string{"app/Models/User.php": "<?php"})

	files, err := p.Files(WalkOptions{Subdir: "lang"})
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestClassToPath_ComposerOverridesDefaults(t *testing.T) {
	p := newFixture(t, map[string]string{
		"composer.json": `{"autoload": {"psr-4": {"App\\": "src/", "App\\Domain\\": "domain/"}}}`,
	})

	path, ok := p.ClassToPath(`App\Http\Kernel`)
	require.True(t, ok)
	assert.Equal(t, "src/Http/Kernel.php", path)

	// Longest prefix wins
	path, ok = p.ClassToPath(`App\Domain\Order`)
	require.True(t, ok)
	assert.Equal(t, "domain/Order.php", path)
}

func TestClassToPath_FrameworkFallback(t *testing.T) {
	p := newFixture(t, map[string]string{})

	path, ok := p.ClassToPath(`Illuminate\Support\Str`)
	require.True(t, ok)
	assert.Equal(t, "vendor/laravel/framework/src/Illuminate/Support/Str.php", path)

	_, ok = p.ClassToPath(`Symfony\Component\Console\Command`)
	assert.False(t, ok)
}

func TestTierFor(t *testing.T) {
	p := newFixture(t, map[string]string{})

	assert.Equal(t, types.TierApplication, p.TierFor("app/Providers/AppServiceProvider.php"))
	assert.Equal(t, types.TierPackage, p.TierFor("vendor/acme/widget/src/Provider.php"))
	assert.Equal(t, types.TierFramework, p.TierFor("vendor/laravel/framework/src/Illuminate/View/ViewServiceProvider.php"))
}
