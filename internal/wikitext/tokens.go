package wikitext

import (
	"strings"

	"github.com/dgallion1/docwiki/internal/doctree"
)

// Token produces the markup emitted when a mark opens or closes. Most
// tokens are fixed strings; link tokens depend on the mark's attributes.
type Token func(m doctree.Mark) string

// MarkSyntax is the pair of tokens for one mark kind.
type MarkSyntax struct {
	Open  Token
	Close Token
}

// Literal returns a token that always yields s.
func Literal(s string) Token {
	return func(doctree.Mark) string { return s }
}

// Template returns a token that expands {href}, {title} and {target} from
// the mark's attributes.
func Template(s string) Token {
	if !strings.Contains(s, "{") {
		return Literal(s)
	}
	return func(m doctree.Mark) string {
		return strings.NewReplacer(
			"{href}", m.Attr("href"),
			"{title}", m.Attr("title"),
			"{target}", m.Attr("target"),
		).Replace(s)
	}
}

func symmetric(s string) MarkSyntax {
	return MarkSyntax{Open: Literal(s), Close: Literal(s)}
}

var linkSyntax = MarkSyntax{
	Open: func(m doctree.Mark) string {
		return "[" + m.Attr("href") + "|"
	},
	Close: func(m doctree.Mark) string {
		if m.Attr("target") == "_blank" {
			return "|new_window=true]"
		}
		return "]"
	},
}

func standardMarks() map[doctree.MarkKind]MarkSyntax {
	return map[doctree.MarkKind]MarkSyntax{
		doctree.MarkEm:            symmetric("''"),
		doctree.MarkStrong:        symmetric("'''"),
		doctree.MarkUnderline:     symmetric("++"),
		doctree.MarkSubscript:     symmetric(",,"),
		doctree.MarkSuperscript:   symmetric("^^"),
		doctree.MarkCode:          symmetric("``"),
		doctree.MarkStrikethrough: symmetric("~~"),
		doctree.MarkLink:          linkSyntax,
	}
}
