package project

import (
	"strings"

	"github.com/standardbeagle/larnav/internal/config"
)

// Context captures the discovered layout of one project: the
// directories each resource kind resolves against. View paths and the
// Livewire class root come from the project's own configuration files;
// Laravel moved the lang directory to the root in version 9, so both
// locations are kept in probe order.
type Context struct {
	Proj *Project

	ViewRoots         []string
	LangRoots         []string
	PublicDir         string
	LivewireClassRoot string
	Locales           []string
}

func NewContext(proj *Project, cfg *config.Config) *Context {
	locales := cfg.Resolution.Locales
	if len(locales) == 0 {
		locales = []string{"en"}
	}
	return &Context{
		Proj:              proj,
		ViewRoots:         discoverViewRoots(proj),
		LangRoots:         []string{"lang", "resources/lang"},
		PublicDir:         "public",
		LivewireClassRoot: discoverLivewireClassRoot(proj),
		Locales:           locales,
	}
}

// PascalCase converts a kebab-case or snake_case component name to the
// StudlyCase class name the framework derives from it.
func PascalCase(name string) string {
	var b strings.Builder
	upper := true
	for _, r := range name {
		switch r {
		case '-', '_':
			upper = true
		default:
			if upper {
				b.WriteRune(toUpper(r))
				upper = false
			} else {
				b.WriteRune(r)
			}
		}
	}
	return b.String()
}

func toUpper(r rune) rune {
	if r >= 'a' && r <= 'z' {
		return r - 'a' + 'A'
	}
	return r
}

// KebabCase reverses PascalCase for round-trip checks: UserTable
// becomes user-table.
func KebabCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}
