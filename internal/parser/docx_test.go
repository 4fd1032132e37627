package parser

import (
	"testing"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/dgallion1/docwiki/internal/wikitext"
	"github.com/fumiama/go-docx"
)

func TestDocxRunMarks(t *testing.T) {
	tests := []struct {
		name  string
		props *docx.RunProperties
		want  []doctree.MarkKind
	}{
		{"nil", nil, nil},
		{"bold italic", &docx.RunProperties{Bold: &docx.Bold{}, Italic: &docx.Italic{}},
			[]doctree.MarkKind{doctree.MarkStrong, doctree.MarkEm}},
		{"underline none", &docx.RunProperties{Underline: &docx.Underline{Val: "none"}}, nil},
		{"underline single", &docx.RunProperties{Underline: &docx.Underline{Val: "single"}},
			[]doctree.MarkKind{doctree.MarkUnderline}},
		{"strike off", &docx.RunProperties{Strike: &docx.Strike{Val: "false"}}, nil},
		{"strike", &docx.RunProperties{Strike: &docx.Strike{}},
			[]doctree.MarkKind{doctree.MarkStrikethrough}},
		{"superscript", &docx.RunProperties{VertAlign: &docx.VertAlign{Val: "superscript"}},
			[]doctree.MarkKind{doctree.MarkSuperscript}},
		{"subscript", &docx.RunProperties{VertAlign: &docx.VertAlign{Val: "subscript"}},
			[]doctree.MarkKind{doctree.MarkSubscript}},
		{"code style", &docx.RunProperties{RunStyle: &docx.RunStyle{Val: "HTMLCode"}},
			[]doctree.MarkKind{doctree.MarkCode}},
	}
	for _, tt := range tests {
		got := docxRunMarks(tt.props)
		if len(got) != len(tt.want) {
			t.Errorf("%s: expected %d marks, got %d", tt.name, len(tt.want), len(got))
			continue
		}
		for i, k := range tt.want {
			if got[i].Kind != k {
				t.Errorf("%s: mark %d = %s, want %s", tt.name, i, got[i].Kind, k)
			}
		}
	}
}

func TestDocxHeadingLevel(t *testing.T) {
	tests := []struct {
		style string
		want  int
	}{
		{"Heading1", 1},
		{"heading 3", 3},
		{"Heading7", 0},
		{"Normal", 0},
		{"", 0},
	}
	for _, tt := range tests {
		para := &docx.Paragraph{Properties: &docx.ParagraphProperties{Style: &docx.Style{Val: tt.style}}}
		if got := docxHeadingLevel(para); got != tt.want {
			t.Errorf("style %q: expected %d, got %d", tt.style, tt.want, got)
		}
	}
}

func TestDocxListLevel(t *testing.T) {
	numbered := &docx.Paragraph{Properties: &docx.ParagraphProperties{
		Style:         &docx.Style{Val: "ListNumber"},
		NumProperties: &docx.NumProperties{NumID: &docx.NumID{Val: "3"}, Ilvl: &docx.Ilevel{Val: "1"}},
	}}
	depth, ordered, ok := docxListLevel(numbered)
	if !ok || !ordered || depth != 1 {
		t.Errorf("numbered: got depth=%d ordered=%v ok=%v", depth, ordered, ok)
	}

	plain := &docx.Paragraph{Properties: &docx.ParagraphProperties{Style: &docx.Style{Val: "Normal"}}}
	if _, _, ok := docxListLevel(plain); ok {
		t.Error("plain paragraph should not be a list item")
	}
}

func TestDocxListBuilder(t *testing.T) {
	para := func(s string) *doctree.Node { return paragraph([]*doctree.Node{schema.Text(s)}) }

	var l docxListBuilder
	if l.finish() != nil {
		t.Fatal("expected nil list when nothing was added")
	}
	l.add(0, false, para("a"))
	l.add(1, true, para("b"))
	l.add(3, true, para("c"))
	l.add(0, false, para("d"))
	list := l.finish()

	got, err := wikitext.Serialize(schema.Doc(list))
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	want := "* a\n## b\n### c\n* d"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
