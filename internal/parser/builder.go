package parser

import (
	"strings"
	"unicode"

	"github.com/dgallion1/docwiki/internal/doctree"
	"golang.org/x/text/unicode/norm"
)

// Importers build documents in the richest built-in schema.
var schema = doctree.Lists

const (
	defaultImageAlign = "center"
	defaultImageSize  = "standard"
)

// inlineBuilder collects the runs of one block. Adjacent text with the
// same marks is merged into a single run and text is normalized to NFC.
type inlineBuilder struct {
	runs []*doctree.Node
}

func (b *inlineBuilder) text(s string, marks []doctree.Mark) {
	if s == "" {
		return
	}
	s = norm.NFC.String(s)
	if n := len(b.runs); n > 0 {
		last := b.runs[n-1]
		if last.Kind == doctree.KindHardBreak {
			if s = strings.TrimLeftFunc(s, unicode.IsSpace); s == "" {
				return
			}
		}
		if last.IsText() && sameMarks(last.Marks, marks) {
			last.Text += s
			return
		}
	}
	b.runs = append(b.runs, schema.Text(s, append([]doctree.Mark(nil), marks...)...))
}

// node appends an atomic run. Whitespace before a hard break is dropped.
func (b *inlineBuilder) node(n *doctree.Node) {
	if k := len(b.runs); n.Kind == doctree.KindHardBreak && k > 0 && b.runs[k-1].IsText() {
		last := b.runs[k-1]
		last.Text = strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if last.Text == "" {
			b.runs = b.runs[:k-1]
		}
	}
	b.runs = append(b.runs, n)
}

// take returns the collected runs with outer whitespace trimmed and
// resets the builder.
func (b *inlineBuilder) take() []*doctree.Node {
	runs := b.runs
	b.runs = nil

	for len(runs) > 0 && runs[0].IsText() {
		runs[0].Text = strings.TrimLeftFunc(runs[0].Text, unicode.IsSpace)
		if runs[0].Text != "" {
			break
		}
		runs = runs[1:]
	}
	for len(runs) > 0 && runs[len(runs)-1].IsText() {
		last := runs[len(runs)-1]
		last.Text = strings.TrimRightFunc(last.Text, unicode.IsSpace)
		if last.Text != "" {
			break
		}
		runs = runs[:len(runs)-1]
	}
	return runs
}

func sameMarks(a, b []doctree.Mark) bool {
	if len(a) != len(b) {
		return false
	}
	for _, m := range a {
		if !doctree.HasMark(b, m) {
			return false
		}
	}
	return true
}

// withMark returns a copy of marks with m added.
func withMark(marks []doctree.Mark, m doctree.Mark) []doctree.Mark {
	if doctree.HasMark(marks, m) {
		return marks
	}
	out := make([]doctree.Mark, 0, len(marks)+1)
	out = append(out, marks...)
	return append(out, m)
}

func paragraph(runs []*doctree.Node) *doctree.Node {
	return schema.MustNode(doctree.KindParagraph, nil, runs...)
}

// heading builds a wiki heading. Wikis only have levels 2 through 6, so a
// top-level source heading becomes level 2.
func heading(level int, runs []*doctree.Node) *doctree.Node {
	if level < 2 {
		level = 2
	}
	if level > 6 {
		level = 6
	}
	return schema.MustNode(doctree.KindHeading, doctree.Attrs{"level": float64(level)}, runs...)
}

func codeBlock(text string) *doctree.Node {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return schema.MustNode(doctree.KindCodeBlock, nil)
	}
	return schema.MustNode(doctree.KindCodeBlock, nil, schema.Text(norm.NFC.String(text)))
}

func hardBreak() *doctree.Node {
	return schema.MustNode(doctree.KindHardBreak, nil)
}

func image(src, id, align string) *doctree.Node {
	if id == "" {
		id = src
	}
	if align == "" {
		align = defaultImageAlign
	}
	return schema.MustNode(doctree.KindImage, doctree.Attrs{
		"imageid": id,
		"src":     src,
		"align":   align,
		"size":    defaultImageSize,
	})
}

func linkMark(href, title, target string) doctree.Mark {
	attrs := doctree.Attrs{"href": href}
	if title != "" {
		attrs["title"] = title
	}
	if target != "" {
		attrs["target"] = target
	}
	return schema.MustMark(doctree.MarkLink, attrs)
}

func mark(kind doctree.MarkKind) doctree.Mark {
	return schema.MustMark(kind, nil)
}

// listNode wraps block groups into list items.
func listNode(ordered bool, start int, items [][]*doctree.Node) *doctree.Node {
	children := make([]*doctree.Node, 0, len(items))
	for _, blocks := range items {
		children = append(children, schema.MustNode(doctree.KindListItem, nil, blocks...))
	}
	if ordered {
		if start < 1 {
			start = 1
		}
		return schema.MustNode(doctree.KindOrderedList, doctree.Attrs{"order": float64(start)}, children...)
	}
	return schema.MustNode(doctree.KindBulletList, nil, children...)
}

func newDocument(title string, blocks []*doctree.Node) *doctree.Document {
	return &doctree.Document{Title: title, Body: schema.Doc(blocks...)}
}
