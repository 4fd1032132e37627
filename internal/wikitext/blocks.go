package wikitext

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// NodeRenderer writes the markup for one node kind.
type NodeRenderer func(st *State, n *doctree.Node) error

func renderParagraph(st *State, n *doctree.Node) error {
	prefix := st.Prefix()
	if prefix != "" {
		st.Write(prefix + " ")
	}
	if err := st.Inline(n); err != nil {
		return err
	}
	st.Write("\n")
	if prefix == "" {
		st.Write("\n")
	}
	return nil
}

// renderText handles a text node met outside an inline container: it is
// treated as a one-run sequence and finalized immediately.
func renderText(st *State, n *doctree.Node) error {
	if err := st.renderRun(n, nil); err != nil {
		return err
	}
	return st.endInline()
}

func renderHardBreak(st *State, _ *doctree.Node) error {
	st.Write("[br]\n")
	return nil
}

func renderHeading(st *State, n *doctree.Node) error {
	level := min(max(n.IntAttr("level", 2), 2), 6)
	bar := strings.Repeat("=", level)
	st.Write(bar + " ")
	if err := st.Inline(n); err != nil {
		return err
	}
	st.Write(" " + bar + "\n")
	return nil
}

func renderImage(st *State, n *doctree.Node) error {
	st.Write(fmt.Sprintf("[image|%s|align=%s|size=%s]",
		n.StringAttr("imageid"), n.StringAttr("align"), n.StringAttr("size")))
	return nil
}

func renderCodeBlock(st *State, n *doctree.Node) error {
	st.Write("[code]\n")
	if err := st.Inline(n); err != nil {
		return err
	}
	st.Write("\n[/code]\n")
	return nil
}

func renderBlockquote(st *State, n *doctree.Node) error {
	st.Write("[quote")

	attribution, err := quoteAttribution(n)
	if err != nil {
		return err
	}
	if attribution != nil {
		st.Write("|")
		if err := st.Inline(attribution); err != nil {
			return err
		}
	}
	if format := n.StringAttr("format"); format != "" && !isDefaultAttr(n, "format") {
		st.Write("|format=" + format)
	}

	st.Write("]\n")
	if err := st.RenderContent(n); err != nil {
		return err
	}
	st.Write("[/quote]\n")
	return nil
}

// quoteAttribution rebuilds the rich-text attribution stored in a quote's
// attribute. It returns nil when the attribution is absent, the string
// "null", or equal to the schema default.
func quoteAttribution(n *doctree.Node) (*doctree.Node, error) {
	v := n.Attr("attribute")
	if s, ok := v.(string); ok && (s == "null" || s == "") {
		return nil, nil
	}
	if v == nil || isDefaultAttr(n, "attribute") {
		return nil, nil
	}

	schema := n.Schema()
	if schema == nil {
		schema = doctree.Lists
	}
	if s, ok := v.(string); ok {
		return schema.MustNode(doctree.KindParagraph, nil, schema.Text(s)), nil
	}
	node, err := schema.NodeFromValue(v)
	if err != nil {
		return nil, fmt.Errorf("quote attribution: %w", err)
	}
	return node, nil
}

// isDefaultAttr compares an attribute with its schema default structurally.
func isDefaultAttr(n *doctree.Node, name string) bool {
	schema := n.Schema()
	if schema == nil {
		schema = doctree.Lists
	}
	def, ok := schema.DefaultAttr(n.Kind, name)
	if !ok {
		return false
	}
	return reflect.DeepEqual(n.Attr(name), def)
}

func renderOrderedList(st *State, n *doctree.Node) error {
	return st.RenderList(n, "#")
}

func renderBulletList(st *State, n *doctree.Node) error {
	return st.RenderList(n, "*")
}
