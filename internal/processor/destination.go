package processor

import (
	"fmt"
	"path/filepath"
	"strings"

	"imagemin/pkg/imgutil"
)

// Destination computes where the optimized bytes of item go. An empty path
// means the output is virtual (the single output stream). kind is the
// sniffed format of the optimized payload and overrides the extension.
func Destination(item SourceItem, kind imgutil.Kind, opts Options) (string, error) {
	if opts.virtual() {
		return "", nil
	}

	if opts.InPlace {
		if item.InMemory() {
			return "", ErrInPlaceStdin
		}
		return correctExtension(item.Path, kind), nil
	}

	outDir := opts.OutDir
	if !filepath.IsAbs(outDir) {
		outDir = filepath.Join(opts.Cwd, outDir)
	}

	if item.InMemory() {
		return filepath.Join(outDir, stdinName+kind.Ext()), nil
	}

	parent := ""
	if opts.PreserveTree {
		dir := filepath.Dir(item.Path)
		if !isWithin(dir, opts.Cwd) {
			return "", fmt.Errorf("%s is outside the working directory %s", item.Path, opts.Cwd)
		}
		parent = relativeTo(opts.Cwd, dir)
	}

	dest := filepath.Join(outDir, parent, filepath.Base(item.Path))
	return correctExtension(dest, kind), nil
}

// correctExtension swaps the extension of p for the canonical one of kind
// when the two disagree. Unknown kinds keep p as is.
func correctExtension(p string, kind imgutil.Kind) string {
	if kind == imgutil.KindUnknown {
		return p
	}
	ext := filepath.Ext(p)
	if imgutil.KindFromExt(ext) == kind {
		return p
	}
	return strings.TrimSuffix(p, ext) + kind.Ext()
}
