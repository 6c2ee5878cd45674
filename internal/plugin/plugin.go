// Package plugin resolves plugin names into a chain of byte-to-byte image
// transforms. Plugins are compiled in and looked up in a static registry.
package plugin

import (
	"context"
	"fmt"
	"strings"
)

// Transform rewrites one encoded image. Implementations hold only immutable
// options so a single value can serve every worker at once. Input in a
// format the transform does not handle is returned unchanged.
type Transform interface {
	Name() string
	Apply(ctx context.Context, data []byte) ([]byte, error)
}

// Chain is an ordered list of transforms applied one after another.
type Chain []Transform

// Apply feeds data through every stage in order. The first failing stage
// stops the chain.
func (c Chain) Apply(ctx context.Context, data []byte) ([]byte, error) {
	out := data
	for _, stage := range c {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := stage.Apply(ctx, out)
		if err != nil {
			return nil, &StageError{Stage: stage.Name(), Err: err}
		}
		out = next
	}
	return out, nil
}

// Names lists the stage names in chain order.
func (c Chain) Names() []string {
	names := make([]string, 0, len(c))
	for _, stage := range c {
		names = append(names, stage.Name())
	}
	return names
}

func (c Chain) String() string {
	return strings.Join(c.Names(), ",")
}

// StageError reports the chain stage that failed.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// UnknownPluginError is returned when a name has no registered factory.
type UnknownPluginError struct {
	Name  string
	Known []string
}

func (e *UnknownPluginError) Error() string {
	if len(e.Known) == 0 {
		return fmt.Sprintf("unknown plugin: %s", e.Name)
	}
	return fmt.Sprintf("unknown plugin: %s (available: %s)", e.Name, strings.Join(e.Known, ", "))
}

// OptionsError wraps a factory's rejection of its options.
type OptionsError struct {
	Plugin string
	Err    error
}

func (e *OptionsError) Error() string {
	return fmt.Sprintf("plugin %s: %v", e.Plugin, e.Err)
}

func (e *OptionsError) Unwrap() error { return e.Err }

// smaller returns the optimized payload only when it actually shrank.
func smaller(original, optimized []byte) []byte {
	if len(optimized) < len(original) {
		return optimized
	}
	return original
}
