package wikitext

import (
	"fmt"
	"io"
	"os"

	"github.com/dgallion1/docwiki/internal/doctree"
	"gopkg.in/yaml.v3"
)

// dialectFile is the YAML shape of a dialect override:
//
//	name: house
//	base: standard
//	list_prefix: append
//	marks:
//	  code: {open: "<tt>", close: "</tt>"}
//	  link: {open: "[{href} ", close: "]"}
//	exclude_nodes: [image]
type dialectFile struct {
	Name         string                  `yaml:"name"`
	Base         string                  `yaml:"base"`
	ListPrefix   string                  `yaml:"list_prefix"`
	Marks        map[string]tokenPairDef `yaml:"marks"`
	ExcludeNodes []string                `yaml:"exclude_nodes"`
	ExcludeMarks []string                `yaml:"exclude_marks"`
}

type tokenPairDef struct {
	Open  string `yaml:"open"`
	Close string `yaml:"close"`
}

// LoadDialect reads a YAML dialect override and applies it on top of its
// base dialect.
func LoadDialect(r io.Reader) (*Dialect, error) {
	var f dialectFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode dialect: %w", err)
	}

	if f.Base == "" {
		f.Base = "standard"
	}
	if f.Name == "" {
		f.Name = "custom"
	}
	base, ok := Lookup(f.Base)
	if !ok {
		return nil, fmt.Errorf("dialect %s: unknown base dialect %q", f.Name, f.Base)
	}
	d := base.Clone(f.Name)

	switch f.ListPrefix {
	case "", "repeat":
		d.ListPrefix = PrefixRepeat
	case "append":
		d.ListPrefix = PrefixAppend
	default:
		return nil, fmt.Errorf("dialect %s: list_prefix must be repeat or append, got %q", f.Name, f.ListPrefix)
	}

	for kind, def := range f.Marks {
		if def.Open == "" && def.Close == "" {
			return nil, fmt.Errorf("dialect %s: mark %s has no tokens", f.Name, kind)
		}
		d.Marks[doctree.MarkKind(kind)] = MarkSyntax{Open: Template(def.Open), Close: Template(def.Close)}
	}
	for _, kind := range f.ExcludeNodes {
		delete(d.Nodes, doctree.NodeKind(kind))
	}
	for _, kind := range f.ExcludeMarks {
		delete(d.Marks, doctree.MarkKind(kind))
	}
	return d, nil
}

// LoadDialectFile reads a YAML dialect override from path.
func LoadDialectFile(path string) (*Dialect, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dialect file: %w", err)
	}
	defer f.Close()
	return LoadDialect(f)
}
