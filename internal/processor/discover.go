package processor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// stdinName names the in-memory item in reports and output paths.
const stdinName = "stdin"

// Discover expands literal paths, glob patterns and directories relative to
// cwd into an ordered, de-duplicated list of files. Patterns starting with
// "!" exclude matches. Patterns matching nothing contribute nothing.
func Discover(cwd string, patterns []string) ([]SourceItem, error) {
	absCwd, err := filepath.Abs(cwd)
	if err != nil {
		return nil, err
	}

	var include, exclude []string
	for _, p := range patterns {
		if neg, ok := strings.CutPrefix(p, "!"); ok {
			exclude = append(exclude, neg)
			continue
		}
		include = append(include, p)
	}

	seen := make(map[string]bool)
	var items []SourceItem
	for _, pattern := range include {
		matches, err := expand(absCwd, pattern)
		if err != nil {
			return nil, fmt.Errorf("expand %q: %w", pattern, err)
		}
		for _, abs := range matches {
			if seen[abs] {
				continue
			}
			rel := relativeTo(absCwd, abs)
			if excluded(rel, abs, exclude) {
				continue
			}
			seen[abs] = true
			items = append(items, SourceItem{Path: abs, RelPath: rel})
		}
	}
	return items, nil
}

// FromBytes wraps a stdin buffer as the single in-memory item.
func FromBytes(data []byte) []SourceItem {
	return []SourceItem{{RelPath: stdinName, Data: data}}
}

// expand resolves one pattern into absolute file paths. A literal directory
// expands to every regular file beneath it; directories matched by a glob
// are skipped.
func expand(cwd, pattern string) ([]string, error) {
	literal := !strings.ContainsAny(pattern, "*?[{")
	var matches []string
	clean := path.Clean(filepath.ToSlash(pattern))
	if filepath.IsAbs(pattern) || clean == ".." || strings.HasPrefix(clean, "../") {
		abs := pattern
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(cwd, pattern)
		}
		found, err := doublestar.FilepathGlob(abs)
		if err != nil {
			return nil, err
		}
		matches = found
	} else {
		found, err := doublestar.Glob(os.DirFS(cwd), clean)
		if err != nil {
			return nil, err
		}
		for _, m := range found {
			matches = append(matches, filepath.Join(cwd, filepath.FromSlash(m)))
		}
	}
	sort.Strings(matches)

	var files []string
	for _, m := range matches {
		info, err := os.Stat(m)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			if info.Mode().IsRegular() {
				files = append(files, m)
			}
			continue
		}
		if !literal {
			continue
		}
		err = filepath.WalkDir(m, func(p string, d fs.DirEntry, walkErr error) error {
			if walkErr != nil {
				return walkErr
			}
			if d.Type().IsRegular() {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return files, nil
}

func excluded(rel, abs string, patterns []string) bool {
	for _, p := range patterns {
		target := filepath.ToSlash(rel)
		if filepath.IsAbs(p) {
			target = filepath.ToSlash(abs)
		}
		if ok, _ := doublestar.Match(filepath.ToSlash(p), target); ok {
			return true
		}
	}
	return false
}

func relativeTo(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return target
	}
	return rel
}

// isWithin reports whether path is root or lies beneath it.
func isWithin(path string, root string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
