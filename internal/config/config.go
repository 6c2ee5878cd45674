// Package config loads the optional HCL file that declares the plugin chain.
//
// Each `plugin "<name>" { ... }` block adds one stage, in file order. Block
// bodies are decoded into the plugin's own options, so attribute names and
// validation belong to the plugin. Expressions may reference `env.<NAME>`
// and `cpus`.
package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"imagemin/internal/plugin"
)

// LoadError reports a config file that could not be read, parsed or turned
// into a chain.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("cannot load config: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// File is a decoded config file.
type File struct {
	Path           string
	MaxConcurrency int
	Plugins        []*PluginBlock

	evalCtx *hcl.EvalContext
}

// PluginBlock is one `plugin` block. Options stays undecoded until the
// plugin's factory asks for it.
type PluginBlock struct {
	Name    string   `hcl:"name,label"`
	Options hcl.Body `hcl:",remain"`
}

type hclFile struct {
	MaxConcurrency *int           `hcl:"max_concurrency,optional"`
	Plugins        []*PluginBlock `hcl:"plugin,block"`
}

// Load parses the config file at path.
func Load(path string) (*File, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	return Parse(path, src)
}

// Parse decodes src as a config file; filename is used in diagnostics.
func Parse(filename string, src []byte) (*File, error) {
	parser := hclparse.NewParser()
	hf, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, &LoadError{Path: filename, Err: diags}
	}

	evalCtx := EvalContext(os.Environ())
	var parsed hclFile
	if diags := gohcl.DecodeBody(hf.Body, evalCtx, &parsed); diags.HasErrors() {
		return nil, &LoadError{Path: filename, Err: diags}
	}
	if len(parsed.Plugins) == 0 {
		return nil, &LoadError{Path: filename, Err: fmt.Errorf("%s: no plugin blocks", filename)}
	}

	f := &File{Path: filename, Plugins: parsed.Plugins, evalCtx: evalCtx}
	if parsed.MaxConcurrency != nil {
		if *parsed.MaxConcurrency < 1 {
			return nil, &LoadError{Path: filename, Err: fmt.Errorf("max_concurrency must be at least 1, got %d", *parsed.MaxConcurrency)}
		}
		f.MaxConcurrency = *parsed.MaxConcurrency
	}
	return f, nil
}

// Chain builds the declared plugins from reg, in block order. Unknown
// plugin names surface as *plugin.UnknownPluginError; everything else that
// goes wrong is a *LoadError.
func (f *File) Chain(reg *plugin.Registry) (plugin.Chain, error) {
	chain := make(plugin.Chain, 0, len(f.Plugins))
	for _, block := range f.Plugins {
		t, err := reg.Build(block.Name, f.decoder(block))
		if err != nil {
			var unknown *plugin.UnknownPluginError
			if errors.As(err, &unknown) {
				return nil, err
			}
			return nil, &LoadError{Path: f.Path, Err: err}
		}
		chain = append(chain, t)
	}
	return chain, nil
}

func (f *File) decoder(block *PluginBlock) plugin.DecodeFunc {
	return func(target any) error {
		if diags := gohcl.DecodeBody(block.Options, f.evalCtx, target); diags.HasErrors() {
			return diags
		}
		return nil
	}
}

// EvalContext exposes environ as the `env` map and the CPU count as `cpus`.
func EvalContext(environ []string) *hcl.EvalContext {
	vars := make(map[string]cty.Value, len(environ))
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			continue
		}
		vars[name] = cty.StringVal(value)
	}

	env := cty.MapValEmpty(cty.String)
	if len(vars) > 0 {
		env = cty.MapVal(vars)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env":  env,
			"cpus": cty.NumberIntVal(int64(runtime.NumCPU())),
		},
	}
}
