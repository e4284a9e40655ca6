package project

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Built-in mappings used when composer.json is absent or incomplete.
// The framework mapping lets Illuminate\* classes resolve into vendor
// sources for go-to-definition on container bindings.
var defaultPSR4 = []psr4Mapping{
	{Prefix: `App\`, Dir: "app/"},
	{Prefix: `Database\Factories\`, Dir: "database/factories/"},
	{Prefix: `Database\Seeders\`, Dir: "database/seeders/"},
	{Prefix: `Illuminate\`, Dir: "vendor/laravel/framework/src/Illuminate/"},
	{Prefix: `Livewire\`, Dir: "vendor/livewire/livewire/src/"},
}

func (p *Project) loadPSR4() {
	mappings := append([]psr4Mapping(nil), defaultPSR4...)

	if data, err := os.ReadFile(filepath.Join(p.Root, "composer.json")); err == nil {
		var composer struct {
			Autoload struct {
				PSR4 map[string]json.RawMessage `json:"psr-4"`
			} `json:"autoload"`
			AutoloadDev struct {
				PSR4 map[string]json.RawMessage `json:"psr-4"`
			} `json:"autoload-dev"`
		}
		if json.Unmarshal(data, &composer) == nil {
			mappings = appendComposerPSR4(mappings, composer.Autoload.PSR4)
			mappings = appendComposerPSR4(mappings, composer.AutoloadDev.PSR4)
		}
	}

	// Longest prefix first so App\Models\ beats App\ when both exist.
	sort.SliceStable(mappings, func(i, j int) bool {
		return len(mappings[i].Prefix) > len(mappings[j].Prefix)
	})

	p.psr4 = mappings
}

// appendComposerPSR4 handles both string and array directory values,
// which composer allows.
func appendComposerPSR4(mappings []psr4Mapping, raw map[string]json.RawMessage) []psr4Mapping {
	for prefix, value := range raw {
		if !strings.HasSuffix(prefix, `\`) {
			prefix += `\`
		}
		var single string
		if json.Unmarshal(value, &single) == nil {
			mappings = append(mappings, psr4Mapping{Prefix: prefix, Dir: normalizeDir(single)})
			continue
		}
		var multi []string
		if json.Unmarshal(value, &multi) == nil {
			for _, dir := range multi {
				mappings = append(mappings, psr4Mapping{Prefix: prefix, Dir: normalizeDir(dir)})
			}
		}
	}
	return mappings
}

func normalizeDir(dir string) string {
	dir = filepath.ToSlash(dir)
	if dir != "" && !strings.HasSuffix(dir, "/") {
		dir += "/"
	}
	return dir
}

// ClassToPath maps a fully-qualified class name to the project-relative
// file the PSR-4 rules predict. The file is not required to exist;
// callers probe the filesystem themselves.
func (p *Project) ClassToPath(fqcn string) (string, bool) {
	fqcn = strings.TrimPrefix(fqcn, `\`)
	for _, m := range p.psr4 {
		if strings.HasPrefix(fqcn, m.Prefix) {
			remainder := strings.TrimPrefix(fqcn, m.Prefix)
			return m.Dir + strings.ReplaceAll(remainder, `\`, "/") + ".php", true
		}
	}
	return "", false
}
