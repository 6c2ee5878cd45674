package plugin

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultPlugins is the chain used when no names are given.
var DefaultPlugins = []string{"gif", "jpeg", "png", "svg"}

// aliases maps the external optimizer names users know to the built-ins.
var aliases = map[string]string{
	"gifsicle": "gif",
	"jpegtran": "jpeg",
	"mozjpeg":  "jpeg",
	"optipng":  "png",
	"svgo":     "svg",
}

// DecodeFunc fills a plugin's option struct. Factories call it once with a
// pointer to their defaults.
type DecodeFunc func(target any) error

// NoOptions leaves every option at its default.
func NoOptions(any) error { return nil }

// Factory builds a transform from its options.
type Factory func(decode DecodeFunc) (Transform, error)

// Registry maps plugin names to factories.
type Registry struct {
	factories map[string]Factory
}

// NewRegistry returns a registry holding the built-in plugins.
func NewRegistry() *Registry {
	r := &Registry{factories: make(map[string]Factory)}
	r.Register("gif", newGIF)
	r.Register("jpeg", newJPEG)
	r.Register("png", newPNG)
	r.Register("svg", newSVG)
	r.Register("strip", newStrip)
	r.Register("avif", newAVIF)
	return r
}

// Register adds a factory. Registering a name twice is a programming error.
func (r *Registry) Register(name string, factory Factory) {
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("plugin '%s' already registered", name))
	}
	r.factories[name] = factory
}

// Names returns the registered plugin names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates the named transform, decoding its options with decode.
func (r *Registry) Build(name string, decode DecodeFunc) (Transform, error) {
	key := canonicalName(name)
	factory, ok := r.factories[key]
	if !ok {
		return nil, &UnknownPluginError{Name: name, Known: r.Names()}
	}
	if decode == nil {
		decode = NoOptions
	}
	t, err := factory(decode)
	if err != nil {
		return nil, &OptionsError{Plugin: key, Err: err}
	}
	return t, nil
}

// Resolve builds a chain from names with default options. An empty list
// resolves DefaultPlugins.
func (r *Registry) Resolve(names []string) (Chain, error) {
	if len(names) == 0 {
		names = DefaultPlugins
	}
	chain := make(Chain, 0, len(names))
	for _, name := range names {
		t, err := r.Build(name, NoOptions)
		if err != nil {
			return nil, err
		}
		chain = append(chain, t)
	}
	return chain, nil
}

func canonicalName(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.TrimPrefix(key, "imagemin-")
	if alias, ok := aliases[key]; ok {
		return alias
	}
	return key
}
