// Package project locates a Laravel application root and enumerates its
// files for scanning.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/standardbeagle/larnav/internal/config"
	"github.com/standardbeagle/larnav/internal/debug"
	larnaverrors "github.com/standardbeagle/larnav/internal/errors"
	"github.com/standardbeagle/larnav/internal/types"
)

// Project is an opened Laravel application. All path results are
// project-relative with forward slashes.
type Project struct {
	Root string
	cfg  *config.Config

	gitignore *ignore.GitIgnore
	psr4      []psr4Mapping
}

type psr4Mapping struct {
	Prefix string // namespace prefix ending in backslash
	Dir    string // project-relative directory with trailing slash
}

// Find walks up from startDir looking for a Laravel application root,
// identified by an artisan script or a composer.json requiring
// laravel/framework.
func Find(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if isLaravelRoot(dir) {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("no Laravel project found above %s", startDir)
		}
		dir = parent
	}
}

func isLaravelRoot(dir string) bool {
	if _, err := os.Stat(filepath.Join(dir, "artisan")); err == nil {
		return true
	}
	data, err := os.ReadFile(filepath.Join(dir, "composer.json"))
	if err != nil {
		return false
	}
	var composer struct {
		Require map[string]string `json:"require"`
	}
	if err := json.Unmarshal(data, &composer); err != nil {
		return false
	}
	_, ok := composer.Require["laravel/framework"]
	return ok
}

// Open opens the project at root. The root does not need to pass the
// Laravel detection check, which keeps fixture-based tests simple.
func Open(root string, cfg *config.Config) (*Project, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, larnaverrors.NewFileError("open", root, err)
	}
	info, err := os.Stat(absRoot)
	if err != nil {
		return nil, larnaverrors.NewFileError("open", root, err)
	}
	if !info.IsDir() {
		return nil, larnaverrors.NewFileError("open", root, fmt.Errorf("not a directory"))
	}

	p := &Project{Root: absRoot, cfg: cfg}

	if cfg.Scan.RespectGitignore {
		if gi, err := ignore.CompileIgnoreFile(filepath.Join(absRoot, ".gitignore")); err == nil {
			p.gitignore = gi
		}
	}

	p.loadPSR4()
	return p, nil
}

// Rel converts an absolute path to a project-relative slash path.
func (p *Project) Rel(abs string) string {
	rel, err := filepath.Rel(p.Root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Abs converts a project-relative path to an absolute one.
func (p *Project) Abs(rel string) string {
	return filepath.Join(p.Root, filepath.FromSlash(rel))
}

// Exists reports whether the project-relative path exists on disk.
func (p *Project) Exists(rel string) bool {
	_, err := os.Stat(p.Abs(rel))
	return err == nil
}

// WalkOptions narrows a file enumeration.
type WalkOptions struct {
	// Subdir restricts the walk to one project-relative directory.
	Subdir string
	// Suffixes keeps only files with one of these name suffixes.
	// Empty means every file.
	Suffixes []string
	// IncludeVendor keeps vendor/ paths even when .gitignore excludes
	// them. Registry scans need vendor service providers.
	IncludeVendor bool
}

// Files enumerates project files honoring exclusions, sorted by path so
// merge order is deterministic.
func (p *Project) Files(opts WalkOptions) ([]string, error) {
	start := p.Root
	if opts.Subdir != "" {
		start = p.Abs(opts.Subdir)
		if _, err := os.Stat(start); err != nil {
			return nil, nil // missing subdirs are not an error
		}
	}

	var results []string
	count := 0

	err := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		rel := p.Rel(path)
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if p.excluded(rel+"/", true, opts.IncludeVendor) {
				return filepath.SkipDir
			}
			return nil
		}

		if d.Type()&os.ModeSymlink != 0 && !p.cfg.Scan.FollowSymlinks {
			return nil
		}

		if p.excluded(rel, false, opts.IncludeVendor) {
			return nil
		}

		if len(opts.Suffixes) > 0 && !hasAnySuffix(d.Name(), opts.Suffixes) {
			return nil
		}

		if info, err := d.Info(); err == nil && info.Size() > p.cfg.Scan.MaxFileSize {
			debug.Log("PROJECT", "skipping oversized file %s (%d bytes)\n", rel, info.Size())
			return nil
		}

		count++
		if p.cfg.Scan.MaxFileCount > 0 && count > p.cfg.Scan.MaxFileCount {
			return filepath.SkipAll
		}

		results = append(results, rel)
		return nil
	})
	if err != nil {
		return nil, larnaverrors.NewScanError("walk", err).WithRoot(p.Root)
	}

	sort.Strings(results)
	return results, nil
}

// Ignored reports whether a project-relative path falls outside the
// scan surface: vendor, exclude globs, or gitignore.
func (p *Project) Ignored(rel string, isDir bool) bool {
	return p.excluded(rel, isDir, false)
}

func (p *Project) excluded(rel string, isDir bool, includeVendor bool) bool {
	isVendor := rel == "vendor/" || strings.HasPrefix(rel, "vendor/")
	if isVendor && !includeVendor {
		return true
	}

	for _, pattern := range p.cfg.Exclude {
		target := strings.TrimSuffix(rel, "/")
		if matched, _ := doublestar.Match(pattern, target); matched {
			return true
		}
		// Directory patterns like "**/node_modules/**" should also prune
		// the directory itself, not just its contents.
		if isDir {
			if matched, _ := doublestar.Match(pattern, target+"/x"); matched {
				return true
			}
		}
	}

	// Vendor paths skip gitignore: vendor/ is routinely ignored but
	// service provider scans still need it.
	if p.gitignore != nil && !isVendor {
		if p.gitignore.MatchesPath(rel) {
			return true
		}
	}

	return false
}

func hasAnySuffix(name string, suffixes []string) bool {
	for _, s := range suffixes {
		if strings.HasSuffix(name, s) {
			return true
		}
	}
	return false
}

// TierFor classifies a project-relative path for registry precedence.
func (p *Project) TierFor(rel string) types.SourceTier {
	return types.TierForPath(rel)
}
