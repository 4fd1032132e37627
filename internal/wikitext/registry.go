package wikitext

import (
	"fmt"
	"sort"
)

// Registry resolves dialect names to dialects. It holds the built-in
// dialects plus any loaded from files, and names a default.
type Registry struct {
	dialects map[string]*Dialect
	def      string
}

// NewRegistry returns a registry of the built-in dialects plus extra.
// Extra dialects replace built-ins of the same name. def must name a
// registered dialect.
func NewRegistry(def string, extra ...*Dialect) (*Registry, error) {
	r := &Registry{dialects: make(map[string]*Dialect), def: def}
	for _, name := range Names() {
		d, _ := Lookup(name)
		r.dialects[name] = d
	}
	for _, d := range extra {
		r.dialects[d.Name] = d
	}
	if _, ok := r.dialects[def]; !ok {
		return nil, fmt.Errorf("default %w %q", ErrUnknownDialect, def)
	}
	return r, nil
}

// Get returns the named dialect. An empty name selects the default.
func (r *Registry) Get(name string) (*Dialect, error) {
	if name == "" {
		name = r.def
	}
	d, ok := r.dialects[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownDialect, name)
	}
	return d, nil
}

// Default returns the name of the default dialect.
func (r *Registry) Default() string { return r.def }

// Names returns the registered dialect names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.dialects))
	for n := range r.dialects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
