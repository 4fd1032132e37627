package parser

import (
	"bytes"
	"io"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New(goldmark.WithExtensions(extension.Strikethrough))
	root := md.Parser().Parse(text.NewReader(src))

	c := &mdConverter{src: src}
	blocks := c.blocks(root)

	return newDocument(titleFromFilename(filename), blocks), nil
}

type mdConverter struct {
	src []byte
}

func (c *mdConverter) blocks(parent ast.Node) []*doctree.Node {
	var out []*doctree.Node
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Heading:
			out = append(out, heading(node.Level, c.inlines(node)))
		case *ast.Paragraph, *ast.TextBlock:
			if runs := c.inlines(node); len(runs) > 0 {
				out = append(out, paragraph(runs))
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock:
			out = append(out, codeBlock(c.lines(node)))
		case *ast.Blockquote:
			out = append(out, schema.MustNode(doctree.KindBlockquote, nil, c.blocks(node)...))
		case *ast.List:
			var items [][]*doctree.Node
			for item := node.FirstChild(); item != nil; item = item.NextSibling() {
				items = append(items, c.blocks(item))
			}
			out = append(out, listNode(node.IsOrdered(), node.Start, items))
		case *ast.ThematicBreak, *ast.HTMLBlock:
			// No wiki-text equivalent.
		default:
			out = append(out, c.blocks(node)...)
		}
	}
	return out
}

func (c *mdConverter) lines(n ast.Node) string {
	var buf bytes.Buffer
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		line := lines.At(i)
		buf.Write(line.Value(c.src))
	}
	return buf.String()
}

func (c *mdConverter) inlines(parent ast.Node) []*doctree.Node {
	var b inlineBuilder
	c.walkInline(parent, nil, &b)
	return b.take()
}

func (c *mdConverter) walkInline(parent ast.Node, marks []doctree.Mark, b *inlineBuilder) {
	for n := parent.FirstChild(); n != nil; n = n.NextSibling() {
		switch node := n.(type) {
		case *ast.Text:
			b.text(string(node.Segment.Value(c.src)), marks)
			if node.HardLineBreak() {
				b.node(hardBreak())
			} else if node.SoftLineBreak() {
				b.text(" ", marks)
			}
		case *ast.String:
			b.text(string(node.Value), marks)
		case *ast.CodeSpan:
			b.text(c.codeSpan(node), withMark(marks, mark(doctree.MarkCode)))
		case *ast.Emphasis:
			kind := doctree.MarkEm
			if node.Level >= 2 {
				kind = doctree.MarkStrong
			}
			c.walkInline(node, withMark(marks, mark(kind)), b)
		case *extast.Strikethrough:
			c.walkInline(node, withMark(marks, mark(doctree.MarkStrikethrough)), b)
		case *ast.Link:
			m := linkMark(string(node.Destination), string(node.Title), "")
			c.walkInline(node, withMark(marks, m), b)
		case *ast.AutoLink:
			m := linkMark(string(node.URL(c.src)), "", "")
			b.text(string(node.Label(c.src)), withMark(marks, m))
		case *ast.Image:
			b.node(image(string(node.Destination), "", ""))
		case *ast.RawHTML:
			// Dropped.
		default:
			c.walkInline(node, marks, b)
		}
	}
}

func (c *mdConverter) codeSpan(n *ast.CodeSpan) string {
	var buf bytes.Buffer
	for ch := n.FirstChild(); ch != nil; ch = ch.NextSibling() {
		switch t := ch.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(c.src))
		case *ast.String:
			buf.Write(t.Value)
		}
	}
	return buf.String()
}
