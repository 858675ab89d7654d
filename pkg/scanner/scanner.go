// Package scanner enumerates the Dart sources of a project in a stable
// order so repeated runs produce identical reports.
package scanner

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

const (
	// SourceDir is the conventional code directory of a Dart project.
	SourceDir = "lib"
	// SourceExt is the Dart source extension.
	SourceExt = ".dart"
)

// Collector finds source files under a project's code directory.
type Collector struct {
	matcher gitignore.Matcher
}

// New creates a collector. The optional patterns use gitignore syntax and
// are matched against paths relative to the project root.
func New(excludePatterns ...string) *Collector {
	c := &Collector{}
	if len(excludePatterns) > 0 {
		patterns := make([]gitignore.Pattern, 0, len(excludePatterns))
		for _, p := range excludePatterns {
			patterns = append(patterns, gitignore.ParsePattern(p, nil))
		}
		c.matcher = gitignore.NewMatcher(patterns)
	}
	return c
}

// Collect returns the absolute paths of all Dart files under
// <root>/lib, sorted ascending. Symbolic links are not followed. A
// missing lib directory means there is nothing to analyze: the result is
// an empty list, not an error.
func (c *Collector) Collect(root string) ([]string, error) {
	codeDir := filepath.Join(root, SourceDir)
	if info, err := os.Stat(codeDir); err != nil || !info.IsDir() {
		return nil, nil
	}

	var files []string
	err := filepath.WalkDir(codeDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			rel = path
		}
		if d.IsDir() {
			if c.excluded(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != SourceExt || c.excluded(rel, false) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func (c *Collector) excluded(rel string, isDir bool) bool {
	if c.matcher == nil {
		return false
	}
	return c.matcher.Match(strings.Split(rel, string(filepath.Separator)), isDir)
}

// Relativize converts an absolute source path to the project-relative,
// forward-slash form used in reports.
func Relativize(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
