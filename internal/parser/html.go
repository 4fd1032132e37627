package parser

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dgallion1/docwiki/internal/doctree"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML files.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	dom, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := titleFromFilename(filename)
	if t := strings.TrimSpace(dom.Find("title").First().Text()); t != "" {
		title = t
	}

	// Find <body> or use whole document.
	var root *html.Node
	if body := dom.Find("body").First(); body.Length() > 0 {
		root = body.Get(0)
	} else if len(dom.Nodes) > 0 {
		root = dom.Nodes[0]
	}
	if root == nil {
		return newDocument(title, nil), nil
	}

	return newDocument(title, htmlBlocks(root)), nil
}

// htmlBlocks converts the children of n. Loose inline content between
// block elements is gathered into paragraphs.
func htmlBlocks(n *html.Node) []*doctree.Node {
	var out []*doctree.Node
	var pending inlineBuilder
	flush := func() {
		if runs := pending.take(); len(runs) > 0 {
			out = append(out, paragraph(runs))
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			htmlInline(c, nil, &pending)
			continue
		}
		switch c.Data {
		case "script", "style", "nav", "footer", "header", "head", "template", "noscript":
			// Skip non-content elements.
		case "h1", "h2", "h3", "h4", "h5", "h6":
			flush()
			level, _ := strconv.Atoi(c.Data[1:])
			out = append(out, heading(level, htmlInlines(c)))
		case "p":
			flush()
			if runs := htmlInlines(c); len(runs) > 0 {
				out = append(out, paragraph(runs))
			}
		case "pre":
			flush()
			out = append(out, codeBlock(rawText(c)))
		case "blockquote":
			flush()
			out = append(out, schema.MustNode(doctree.KindBlockquote, nil, htmlBlocks(c)...))
		case "ul", "ol":
			flush()
			out = append(out, htmlList(c))
		case "div", "section", "article", "main", "aside", "figure", "table", "thead", "tbody", "tr", "td", "th", "dl", "dd", "dt", "li", "body", "html":
			flush()
			out = append(out, htmlBlocks(c)...)
		default:
			htmlInline(c, nil, &pending)
		}
	}
	flush()
	return out
}

func htmlList(n *html.Node) *doctree.Node {
	var items [][]*doctree.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.Data == "li" {
			items = append(items, htmlBlocks(c))
		}
	}
	start, _ := strconv.Atoi(attr(n, "start"))
	return listNode(n.Data == "ol", start, items)
}

func htmlInlines(n *html.Node) []*doctree.Node {
	var b inlineBuilder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		htmlInline(c, nil, &b)
	}
	return b.take()
}

func htmlInline(n *html.Node, marks []doctree.Mark, b *inlineBuilder) {
	switch n.Type {
	case html.TextNode:
		b.text(collapseSpace(n.Data), marks)
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.Data {
	case "br":
		b.node(hardBreak())
		return
	case "img":
		b.node(image(attr(n, "src"), attr(n, "data-imageid"), attr(n, "align")))
		return
	case "script", "style":
		return
	}
	if m, ok := htmlMark(n); ok {
		marks = withMark(marks, m)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		htmlInline(c, marks, b)
	}
}

func htmlMark(n *html.Node) (doctree.Mark, bool) {
	switch n.Data {
	case "em", "i":
		return mark(doctree.MarkEm), true
	case "strong", "b":
		return mark(doctree.MarkStrong), true
	case "u", "ins":
		return mark(doctree.MarkUnderline), true
	case "sub":
		return mark(doctree.MarkSubscript), true
	case "sup":
		return mark(doctree.MarkSuperscript), true
	case "code", "tt", "kbd", "samp":
		return mark(doctree.MarkCode), true
	case "s", "strike", "del":
		return mark(doctree.MarkStrikethrough), true
	case "a":
		if href := attr(n, "href"); href != "" {
			return linkMark(href, attr(n, "title"), attr(n, "target")), true
		}
	}
	return doctree.Mark{}, false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

// collapseSpace folds each whitespace sequence into one space.
func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' {
			if !space {
				b.WriteByte(' ')
			}
			space = true
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

func rawText(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && n.Data == "br" {
			buf.WriteByte('\n')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return buf.String()
}
