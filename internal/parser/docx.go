package parser

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Run formatting becomes marks, heading
// styles become headings and numbered paragraphs become nested lists.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Document, error) {
	// go-docx needs a ReaderAt+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docwiki-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, size)
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	var blocks []*doctree.Node
	var list docxListBuilder
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		runs := docxInlines(doc, para)

		if depth, ordered, ok := docxListLevel(para); ok {
			if len(runs) > 0 {
				list.add(depth, ordered, paragraph(runs))
			}
			continue
		}
		if l := list.finish(); l != nil {
			blocks = append(blocks, l)
		}
		if len(runs) == 0 {
			continue
		}
		if level := docxHeadingLevel(para); level > 0 {
			blocks = append(blocks, heading(level, runs))
			continue
		}
		if docxStyle(para) == "quote" || docxStyle(para) == "intensequote" {
			blocks = append(blocks, schema.MustNode(doctree.KindBlockquote, nil, paragraph(runs)))
			continue
		}
		blocks = append(blocks, paragraph(runs))
	}
	if l := list.finish(); l != nil {
		blocks = append(blocks, l)
	}

	return newDocument(titleFromFilename(filename), blocks), nil
}

// docxStyle returns the paragraph style name lowercased without spaces.
func docxStyle(para *docx.Paragraph) string {
	if para.Properties == nil || para.Properties.Style == nil {
		return ""
	}
	return strings.ToLower(strings.ReplaceAll(para.Properties.Style.Val, " ", ""))
}

func docxHeadingLevel(para *docx.Paragraph) int {
	style := docxStyle(para)
	if !strings.HasPrefix(style, "heading") {
		return 0
	}
	level, err := strconv.Atoi(strings.TrimPrefix(style, "heading"))
	if err != nil || level < 1 || level > 6 {
		return 0
	}
	return level
}

// docxListLevel reports whether para is a list paragraph, its zero-based
// depth and whether it is numbered. Numbering definitions are not exposed
// by go-docx, so numbered lists are recognised by style name.
func docxListLevel(para *docx.Paragraph) (depth int, ordered, ok bool) {
	style := docxStyle(para)
	numbered := strings.HasPrefix(style, "listnumber")
	bulleted := strings.HasPrefix(style, "listbullet") || style == "listparagraph"

	var numPr *docx.NumProperties
	if para.Properties != nil {
		numPr = para.Properties.NumProperties
	}
	if numPr == nil && !numbered && !bulleted {
		return 0, false, false
	}
	if numPr != nil && numPr.Ilvl != nil {
		depth, _ = strconv.Atoi(numPr.Ilvl.Val)
	}
	return max(depth, 0), numbered, true
}

// docxInlines converts the runs and hyperlinks of a paragraph.
func docxInlines(doc *docx.Docx, para *docx.Paragraph) []*doctree.Node {
	var b inlineBuilder
	for _, child := range para.Children {
		switch c := child.(type) {
		case *docx.Run:
			docxRun(c, docxRunMarks(c.RunProperties), &b)
		case *docx.Hyperlink:
			marks := docxRunMarks(c.Run.RunProperties)
			if target, err := doc.ReferTarget(c.ID); err == nil && target != "" {
				marks = withMark(marks, linkMark(target, "", ""))
			}
			if c.Run.InstrText != "" && len(c.Run.Children) == 0 {
				b.text(c.Run.InstrText, marks)
				continue
			}
			docxRun(&c.Run, marks, &b)
		}
	}
	return b.take()
}

func docxRun(run *docx.Run, marks []doctree.Mark, b *inlineBuilder) {
	for _, rc := range run.Children {
		switch x := rc.(type) {
		case *docx.Text:
			b.text(x.Text, marks)
		case *docx.Tab:
			b.text("\t", marks)
		case *docx.BarterRabbet:
			if x.Type == "" || x.Type == "textWrapping" {
				b.node(hardBreak())
			}
		}
	}
}

// docxRunMarks maps run properties onto marks.
func docxRunMarks(props *docx.RunProperties) []doctree.Mark {
	if props == nil {
		return nil
	}
	var marks []doctree.Mark
	if props.Bold != nil {
		marks = append(marks, mark(doctree.MarkStrong))
	}
	if props.Italic != nil {
		marks = append(marks, mark(doctree.MarkEm))
	}
	if props.Underline != nil && props.Underline.Val != "none" {
		marks = append(marks, mark(doctree.MarkUnderline))
	}
	if props.Strike != nil && docxOn(props.Strike.Val) {
		marks = append(marks, mark(doctree.MarkStrikethrough))
	}
	if props.VertAlign != nil {
		switch props.VertAlign.Val {
		case "subscript":
			marks = append(marks, mark(doctree.MarkSubscript))
		case "superscript":
			marks = append(marks, mark(doctree.MarkSuperscript))
		}
	}
	if props.RunStyle != nil && strings.Contains(strings.ToLower(props.RunStyle.Val), "code") {
		marks = append(marks, mark(doctree.MarkCode))
	}
	return marks
}

// docxOn reads an OOXML on/off value; absent means on.
func docxOn(val string) bool {
	switch strings.ToLower(val) {
	case "false", "0", "off":
		return false
	}
	return true
}

// docxListBuilder assembles consecutive list paragraphs into nested lists
// by their indentation level.
type docxListBuilder struct {
	levels []*docxListLevelState
}

type docxListLevelState struct {
	ordered bool
	items   [][]*doctree.Node
}

func (l *docxListBuilder) add(depth int, ordered bool, para *doctree.Node) {
	if len(l.levels) == 0 {
		depth = 0
	}
	// Levels may only deepen one step at a time.
	if depth > len(l.levels) {
		depth = len(l.levels)
	}
	for len(l.levels) > depth+1 {
		l.closeLevel()
	}
	if len(l.levels) == depth {
		l.levels = append(l.levels, &docxListLevelState{ordered: ordered})
	}
	top := l.levels[depth]
	top.items = append(top.items, []*doctree.Node{para})
}

// closeLevel folds the innermost list into the last item of its parent.
func (l *docxListBuilder) closeLevel() {
	n := len(l.levels)
	inner := l.levels[n-1]
	l.levels = l.levels[:n-1]
	node := listNode(inner.ordered, 0, inner.items)
	parent := l.levels[n-2]
	last := len(parent.items) - 1
	parent.items[last] = append(parent.items[last], node)
}

// finish returns the assembled list, or nil when none is open.
func (l *docxListBuilder) finish() *doctree.Node {
	if len(l.levels) == 0 {
		return nil
	}
	for len(l.levels) > 1 {
		l.closeLevel()
	}
	root := l.levels[0]
	l.levels = nil
	return listNode(root.ordered, 0, root.items)
}
