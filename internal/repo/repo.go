// Package repo enumerates snippet files under a root directory. One file is
// one snippet; its root-relative path is its display name.
package repo

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

var (
	// ErrNotDirectory means the snippet root is missing or not a directory.
	ErrNotDirectory = errors.New("snippet root is not a directory")

	// ErrNoEntries means the scan produced no usable snippet files.
	ErrNoEntries = errors.New("no snippet files found")

	// ErrOutsideRoot means a selected entry resolves outside the snippet root.
	ErrOutsideRoot = errors.New("entry resolves outside the snippet root")
)

// Housekeeping names that are never snippets.
var excludedNames = map[string]bool{
	".gitignore": true,
	".gitkeep":   true,
	".DS_Store":  true,
}

// Extensions considered text-like when the allow-list filter is on.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".text":     true,
	".snippet":  true,
	".tmpl":     true,
	".tpl":      true,
}

// Options controls one listing pass.
type Options struct {
	// FollowSymlinks descends into symlinked directories and permits entries
	// whose real path lies outside the root. When false, symlinked
	// directories are not traversed, and Resolve rejects escaping file
	// entries at selection time.
	FollowSymlinks bool

	// IncludeAll disables the text-like extension allow-list.
	IncludeAll bool

	// Alpha forces ascending lexicographic order. The default order is
	// descending modification time with lexicographic tie-break.
	Alpha bool
}

type entry struct {
	rel string
	mod time.Time
}

// List returns the root-relative paths of all snippet files under root, in
// display order. Entries are scanned fresh on every call; nothing is cached
// across runs.
func List(root string, opts Options) ([]string, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving snippet root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDirectory, root)
	}

	s := &scanner{
		follow:     opts.FollowSymlinks,
		includeAll: opts.IncludeAll,
		visited:    make(map[string]bool),
	}
	if err := s.walk(root, ""); err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	if len(s.entries) == 0 {
		if s.seen == 0 {
			return nil, fmt.Errorf("%w: %s contains no files", ErrNoEntries, root)
		}
		return nil, fmt.Errorf("%w: %s has files, but none match the text extension filter", ErrNoEntries, root)
	}

	order(s.entries, opts.Alpha)

	rels := make([]string, len(s.entries))
	for i, e := range s.entries {
		rels[i] = e.rel
	}
	return rels, nil
}

// scanner accumulates entries across the root walk and any symlinked
// directory walks hanging off it.
type scanner struct {
	follow     bool
	includeAll bool
	entries    []entry
	seen       int // files encountered before the extension filter

	// visited holds the real paths of walked directories so symlink cycles
	// terminate and a directory reachable twice is listed once.
	visited map[string]bool
}

// walk scans one directory tree. prefix is the entry-name prefix for this
// tree: empty for the root, the symlink's own relative path for a followed
// symlinked directory.
func (s *scanner) walk(dir, prefix string) error {
	real, err := filepath.EvalSymlinks(dir)
	if err != nil {
		// Dangling symlink or unreadable path; nothing to list beneath it.
		return nil
	}
	if s.visited[real] {
		return nil
	}
	s.visited[real] = true

	return filepath.WalkDir(real, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Unreadable subtrees are skipped, not fatal.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return fs.SkipDir
			}
			return nil
		}
		if excludedNames[d.Name()] {
			return nil
		}

		rel, relErr := filepath.Rel(real, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.Join(prefix, rel)

		var mod time.Time
		if d.Type()&fs.ModeSymlink != 0 {
			ti, statErr := os.Stat(path)
			if statErr != nil {
				return nil
			}
			if ti.IsDir() {
				// WalkDir never descends symlinked directories on its own.
				if s.follow {
					return s.walk(path, rel)
				}
				return nil
			}
			if !ti.Mode().IsRegular() {
				return nil
			}
			// Whether a symlinked file may escape the root is enforced
			// later, in Resolve, so a stale listing never blocks unrelated
			// entries.
			mod = ti.ModTime()
		} else {
			if !d.Type().IsRegular() {
				return nil
			}
			if fi, infoErr := d.Info(); infoErr == nil {
				mod = fi.ModTime()
			}
		}

		s.seen++
		if !s.includeAll && !textExtensions[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		s.entries = append(s.entries, entry{rel: rel, mod: mod})
		return nil
	})
}

// order sorts entries into a total order: newest first with lexicographic
// tie-break, or pure lexicographic when alpha is set.
func order(entries []entry, alpha bool) {
	sort.Slice(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !alpha && !a.mod.Equal(b.mod) {
			return a.mod.After(b.mod)
		}
		return a.rel < b.rel
	})
}

// Resolve returns the absolute path of a selected entry. When symlink
// following is disabled it additionally verifies that the entry's real path
// still lies under the root's real path, rejecting traversal via symlinks
// before any content is read.
func Resolve(root, rel string, followSymlinks bool) (string, error) {
	abs := filepath.Join(root, rel)
	if followSymlinks {
		return abs, nil
	}
	realRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolving root: %w", err)
	}
	real, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", rel, err)
	}
	if real != realRoot && !strings.HasPrefix(real, realRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s -> %s", ErrOutsideRoot, rel, real)
	}
	return abs, nil
}
