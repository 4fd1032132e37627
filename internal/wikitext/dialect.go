package wikitext

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// ListPrefixMode selects how nested list prefixes are built.
type ListPrefixMode int

const (
	// PrefixRepeat repeats the innermost list's marker once per level:
	// a bullet list inside an ordered list renders as "**".
	PrefixRepeat ListPrefixMode = iota
	// PrefixAppend appends one marker per level: "#*".
	PrefixAppend
)

func (m ListPrefixMode) String() string {
	if m == PrefixAppend {
		return "append"
	}
	return "repeat"
}

// Dialect is a complete wiki-text flavour: a renderer per node kind and a
// token pair per mark kind.
type Dialect struct {
	Name       string
	Nodes      map[doctree.NodeKind]NodeRenderer
	Marks      map[doctree.MarkKind]MarkSyntax
	ListPrefix ListPrefixMode
}

// Standard returns the full dialect: every block template and mark token.
func Standard() *Dialect {
	return &Dialect{
		Name: "standard",
		Nodes: map[doctree.NodeKind]NodeRenderer{
			doctree.KindParagraph:   renderParagraph,
			doctree.KindText:        renderText,
			doctree.KindHardBreak:   renderHardBreak,
			doctree.KindHeading:     renderHeading,
			doctree.KindImage:       renderImage,
			doctree.KindCodeBlock:   renderCodeBlock,
			doctree.KindBlockquote:  renderBlockquote,
			doctree.KindOrderedList: renderOrderedList,
			doctree.KindBulletList:  renderBulletList,
		},
		Marks: standardMarks(),
	}
}

// Minimal returns a dialect for paragraphs with em, strong, underline and
// links only.
func Minimal() *Dialect {
	marks := standardMarks()
	d := &Dialect{
		Name: "minimal",
		Nodes: map[doctree.NodeKind]NodeRenderer{
			doctree.KindParagraph: renderParagraph,
			doctree.KindText:      renderText,
		},
		Marks: make(map[doctree.MarkKind]MarkSyntax),
	}
	for _, k := range []doctree.MarkKind{doctree.MarkEm, doctree.MarkStrong, doctree.MarkUnderline, doctree.MarkLink} {
		d.Marks[k] = marks[k]
	}
	return d
}

var builtin = map[string]func() *Dialect{
	"standard": Standard,
	"minimal":  Minimal,
}

// Lookup returns a fresh copy of a built-in dialect.
func Lookup(name string) (*Dialect, bool) {
	fn, ok := builtin[name]
	if !ok {
		return nil, false
	}
	return fn(), true
}

// Names returns the built-in dialect names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Clone returns a copy of d under a new name. The tables are copied so the
// clone can be changed without affecting d.
func (d *Dialect) Clone(name string) *Dialect {
	out := &Dialect{
		Name:       name,
		Nodes:      make(map[doctree.NodeKind]NodeRenderer, len(d.Nodes)),
		Marks:      make(map[doctree.MarkKind]MarkSyntax, len(d.Marks)),
		ListPrefix: d.ListPrefix,
	}
	for k, v := range d.Nodes {
		out.Nodes[k] = v
	}
	for k, v := range d.Marks {
		out.Marks[k] = v
	}
	return out
}

// Covers checks that every node and mark kind of s can be rendered. The
// doc and list_item kinds are handled by their containers.
func (d *Dialect) Covers(s *doctree.Schema) error {
	var missing []string
	for k := range s.Nodes {
		if k == doctree.KindDoc || k == doctree.KindListItem {
			continue
		}
		if _, ok := d.Nodes[k]; !ok {
			missing = append(missing, "node "+string(k))
		}
	}
	for k := range s.Marks {
		if _, ok := d.Marks[k]; !ok {
			missing = append(missing, "mark "+string(k))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	sort.Strings(missing)
	return fmt.Errorf("dialect %s does not cover schema %s: %s", d.Name, s.Name, strings.Join(missing, ", "))
}

func (d *Dialect) nextPrefix(old, marker string) string {
	if d.ListPrefix == PrefixAppend {
		return old + marker
	}
	return strings.Repeat(marker, len(old)+len(marker))
}
