package processor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"imagemin/internal/ctxlog"
	"imagemin/internal/plugin"
	"imagemin/pkg/imgutil"
)

const stdinMode fs.FileMode = 0o644

// Processor applies one chain to single items and may be shared by every
// worker. Each destination path is written by at most one item per run.
type Processor struct {
	chain plugin.Chain
	opts  Options

	mu      sync.Mutex
	claimed map[string]string // destination -> RelPath of its owner
}

func NewProcessor(chain plugin.Chain, opts Options) *Processor {
	return &Processor{chain: chain, opts: opts, claimed: make(map[string]string)}
}

// reserveSources makes every source path owned by its own item, so an
// in-place conversion never overwrites another input of the batch.
func (p *Processor) reserveSources(items []SourceItem) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, item := range items {
		if !item.InMemory() {
			p.claimed[item.Path] = item.RelPath
		}
	}
}

// claim records relPath as the writer of dest. It returns the current owner
// and false when another item got there first.
func (p *Processor) claim(dest, relPath string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if owner, ok := p.claimed[dest]; ok && owner != relPath {
		return owner, false
	}
	p.claimed[dest] = relPath
	return relPath, true
}

// Process runs item through read, transform, destination and write. Every
// failure is folded into the returned Outcome.
func (p *Processor) Process(ctx context.Context, item SourceItem) Outcome {
	logger := ctxlog.FromContext(ctx)
	out := Outcome{RelPath: item.RelPath}
	fail := func(op string, err error) Outcome {
		out.Err = &ItemError{Path: item.RelPath, Op: op, Err: err}
		logger.Debug("item failed", "path", item.RelPath, "op", op, "error", err)
		return out
	}

	data, mode, err := p.read(item)
	if err != nil {
		return fail("read", err)
	}
	out.OriginalSize = int64(len(data))

	optimized, err := p.chain.Apply(ctx, data)
	if err != nil {
		return fail("transform", err)
	}
	out.OptimizedSize = int64(len(optimized))

	kind := imgutil.Detect(optimized)
	dest, err := Destination(item, kind, p.opts)
	if err != nil {
		return fail("destination", err)
	}

	if dest == "" {
		out.Data = optimized
		logger.Debug("item optimized", "path", item.RelPath, "kind", kind, "before", out.OriginalSize, "after", out.OptimizedSize)
		return out
	}

	if owner, ok := p.claim(dest, item.RelPath); !ok {
		return fail("destination", fmt.Errorf("%s is already written by %s", dest, owner))
	}

	if err := writeFile(dest, optimized, mode); err != nil {
		return fail("write", err)
	}
	out.Destination = dest

	if p.opts.InPlace && dest != item.Path {
		if err := os.Remove(item.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			logger.Warn("could not remove replaced source", "path", item.Path, "error", err)
		}
	}

	logger.Debug("item written", "path", item.RelPath, "dest", dest, "before", out.OriginalSize, "after", out.OptimizedSize)
	return out
}

func (p *Processor) read(item SourceItem) ([]byte, fs.FileMode, error) {
	if item.InMemory() {
		return item.Data, stdinMode, nil
	}

	info, err := os.Stat(item.Path)
	if err != nil {
		return nil, 0, err
	}
	data, err := os.ReadFile(item.Path)
	if err != nil {
		return nil, 0, err
	}
	return data, info.Mode().Perm(), nil
}

// writeFile writes through a temp file in the destination directory and
// renames it into place, so readers never see a partial image.
func writeFile(dest string, data []byte, mode fs.FileMode) error {
	destDir := filepath.Dir(dest)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	tmpFile, err := os.CreateTemp(destDir, ".imagemin-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmpFile.Name())

	if err := tmpFile.Chmod(mode); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return err
	}
	if err := tmpFile.Close(); err != nil {
		return err
	}

	return replaceFile(tmpFile.Name(), dest)
}

func replaceFile(tmpPath, destPath string) error {
	if err := os.Rename(tmpPath, destPath); err == nil {
		return nil
	}
	if err := os.Remove(destPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return os.Rename(tmpPath, destPath)
}
