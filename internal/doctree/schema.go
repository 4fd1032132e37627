package doctree

import (
	"errors"
	"fmt"
	"sort"
)

// ErrInvalidDocument is returned when a document does not conform to its schema.
var ErrInvalidDocument = errors.New("invalid document")

// AttrSpec declares one attribute. An attribute without a default must be
// supplied whenever the node or mark is built.
type AttrSpec struct {
	Default    any
	HasDefault bool
}

// Optional declares an attribute with a default value.
func Optional(def any) AttrSpec { return AttrSpec{Default: def, HasDefault: true} }

// Required declares an attribute that must always be supplied.
var Required = AttrSpec{}

// NodeSpec declares a node kind.
type NodeSpec struct {
	Attrs  map[string]AttrSpec
	Inline bool
}

// MarkSpec declares a mark kind.
type MarkSpec struct {
	Attrs map[string]AttrSpec
}

// Schema is a named registry of node and mark kinds with their attributes.
type Schema struct {
	Name  string
	Nodes map[NodeKind]NodeSpec
	Marks map[MarkKind]MarkSpec
}

var (
	// Minimal covers paragraphs of text with em, strong, underline and link.
	Minimal = minimalSchema()
	// Standard adds headings, breaks, code blocks, quotes, images and the
	// remaining inline marks.
	Standard = standardSchema()
	// Lists is Standard plus ordered and bullet lists.
	Lists = listSchema()
)

var schemas = map[string]*Schema{
	Minimal.Name:  Minimal,
	Standard.Name: Standard,
	Lists.Name:    Lists,
}

// LookupSchema returns a built-in schema by name.
func LookupSchema(name string) (*Schema, bool) {
	s, ok := schemas[name]
	return s, ok
}

// SchemaNames returns the names of the built-in schemas, sorted.
func SchemaNames() []string {
	names := make([]string, 0, len(schemas))
	for n := range schemas {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func minimalSchema() *Schema {
	return &Schema{
		Name: "minimal",
		Nodes: map[NodeKind]NodeSpec{
			KindDoc:       {},
			KindParagraph: {},
			KindText:      {Inline: true},
		},
		Marks: map[MarkKind]MarkSpec{
			MarkEm:        {},
			MarkStrong:    {},
			MarkUnderline: {},
			MarkLink: {Attrs: map[string]AttrSpec{
				"href":   Required,
				"title":  Optional(nil),
				"target": Optional(nil),
			}},
		},
	}
}

func standardSchema() *Schema {
	s := minimalSchema().extend("standard")
	s.Nodes[KindHardBreak] = NodeSpec{Inline: true}
	s.Nodes[KindHeading] = NodeSpec{Attrs: map[string]AttrSpec{"level": Optional(float64(2))}}
	s.Nodes[KindCodeBlock] = NodeSpec{}
	s.Nodes[KindBlockquote] = NodeSpec{Attrs: map[string]AttrSpec{
		"format":    Optional("long"),
		"attribute": Optional(nil),
	}}
	s.Nodes[KindImage] = NodeSpec{Inline: true, Attrs: map[string]AttrSpec{
		"imageid": Optional(nil),
		"src":     Optional(nil),
		"align":   Optional(nil),
		"size":    Optional(nil),
	}}
	for _, k := range []MarkKind{MarkSubscript, MarkSuperscript, MarkCode, MarkStrikethrough} {
		s.Marks[k] = MarkSpec{}
	}
	return s
}

func listSchema() *Schema {
	s := standardSchema().extend("lists")
	s.Nodes[KindOrderedList] = NodeSpec{Attrs: map[string]AttrSpec{"order": Optional(float64(1))}}
	s.Nodes[KindBulletList] = NodeSpec{}
	s.Nodes[KindListItem] = NodeSpec{}
	return s
}

// extend returns a copy of s under a new name.
func (s *Schema) extend(name string) *Schema {
	out := &Schema{
		Name:  name,
		Nodes: make(map[NodeKind]NodeSpec, len(s.Nodes)),
		Marks: make(map[MarkKind]MarkSpec, len(s.Marks)),
	}
	for k, v := range s.Nodes {
		out.Nodes[k] = v
	}
	for k, v := range s.Marks {
		out.Marks[k] = v
	}
	return out
}

// DefaultAttr returns the declared default of a node attribute.
func (s *Schema) DefaultAttr(kind NodeKind, name string) (any, bool) {
	spec, ok := s.Nodes[kind]
	if !ok {
		return nil, false
	}
	a, ok := spec.Attrs[name]
	if !ok || !a.HasDefault {
		return nil, false
	}
	return a.Default, true
}

// Node builds a non-text node, filling attribute defaults.
func (s *Schema) Node(kind NodeKind, attrs Attrs, content ...*Node) (*Node, error) {
	if kind == KindText {
		return nil, fmt.Errorf("%w: use Text to build text nodes", ErrInvalidDocument)
	}
	spec, ok := s.Nodes[kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown node type %q in schema %s", ErrInvalidDocument, kind, s.Name)
	}
	computed, err := computeAttrs(spec.Attrs, attrs)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	return &Node{Kind: kind, Attrs: computed, Content: content, schema: s}, nil
}

// MustNode is like Node but panics on error. For kinds known to the schema.
func (s *Schema) MustNode(kind NodeKind, attrs Attrs, content ...*Node) *Node {
	n, err := s.Node(kind, attrs, content...)
	if err != nil {
		panic(err)
	}
	return n
}

// Doc builds a doc node.
func (s *Schema) Doc(content ...*Node) *Node {
	return &Node{Kind: KindDoc, Attrs: Attrs{}, Content: content, schema: s}
}

// Text builds a text run.
func (s *Schema) Text(text string, marks ...Mark) *Node {
	return &Node{Kind: KindText, Attrs: Attrs{}, Text: text, Marks: marks, schema: s}
}

// Mark builds a mark, filling attribute defaults.
func (s *Schema) Mark(kind MarkKind, attrs Attrs) (Mark, error) {
	spec, ok := s.Marks[kind]
	if !ok {
		return Mark{}, fmt.Errorf("%w: unknown mark type %q in schema %s", ErrInvalidDocument, kind, s.Name)
	}
	computed, err := computeAttrs(spec.Attrs, attrs)
	if err != nil {
		return Mark{}, fmt.Errorf("mark %s: %w", kind, err)
	}
	return Mark{Kind: kind, Attrs: computed}, nil
}

// MustMark is like Mark but panics on error.
func (s *Schema) MustMark(kind MarkKind, attrs Attrs) Mark {
	m, err := s.Mark(kind, attrs)
	if err != nil {
		panic(err)
	}
	return m
}

// computeAttrs keeps declared attributes only. A supplied nil is kept as nil;
// a missing attribute takes its default.
func computeAttrs(specs map[string]AttrSpec, given Attrs) (Attrs, error) {
	out := make(Attrs, len(specs))
	for name, spec := range specs {
		if v, ok := given[name]; ok {
			out[name] = v
			continue
		}
		if !spec.HasDefault {
			return nil, fmt.Errorf("%w: no value supplied for attribute %q", ErrInvalidDocument, name)
		}
		out[name] = spec.Default
	}
	return out, nil
}
