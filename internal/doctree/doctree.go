package doctree

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

// NodeKind names a node type declared by a Schema.
type NodeKind string

const (
	KindDoc         NodeKind = "doc"
	KindParagraph   NodeKind = "paragraph"
	KindHeading     NodeKind = "heading"
	KindText        NodeKind = "text"
	KindHardBreak   NodeKind = "hard_break"
	KindCodeBlock   NodeKind = "code_block"
	KindBlockquote  NodeKind = "blockquote"
	KindOrderedList NodeKind = "ordered_list"
	KindBulletList  NodeKind = "bullet_list"
	KindListItem    NodeKind = "list_item"
	KindImage       NodeKind = "image"
)

// MarkKind names an inline annotation type declared by a Schema.
type MarkKind string

const (
	MarkEm            MarkKind = "em"
	MarkStrong        MarkKind = "strong"
	MarkUnderline     MarkKind = "underline"
	MarkSubscript     MarkKind = "subscript"
	MarkSuperscript   MarkKind = "superscript"
	MarkCode          MarkKind = "code"
	MarkStrikethrough MarkKind = "strikethrough"
	MarkLink          MarkKind = "link"
)

// Attrs holds node or mark attributes. Values are whatever JSON decoding
// produced: string, float64, bool, nil, map[string]any or []any.
type Attrs map[string]any

// Document is an imported document together with its title.
type Document struct {
	Title string // From metadata or filename
	Body  *Node  // Root node, kind doc
}

// Mark is an inline annotation attached to a run. Marks are values; two
// marks are the same mark when their kinds and attributes are equal.
type Mark struct {
	Kind  MarkKind
	Attrs Attrs
}

// Eq reports structural equality: same kind and attributes with the same
// canonical encoding, so int(1) and float64(1) compare equal. Eq agrees
// with Key.
func (m Mark) Eq(o Mark) bool {
	if m.Kind != o.Kind {
		return false
	}
	return attrsEqual(m.Attrs, o.Attrs) || m.Key() == o.Key()
}

// Key returns a canonical identity for the mark, its kind followed by its
// attributes encoded with sorted keys. Equal marks have equal keys.
func (m Mark) Key() string {
	if len(m.Attrs) == 0 {
		return string(m.Kind)
	}
	b, err := json.Marshal(m.Attrs)
	if err != nil {
		return string(m.Kind) + fmt.Sprint(map[string]any(m.Attrs))
	}
	return string(m.Kind) + string(b)
}

// Attr returns the named attribute rendered as a string ("" when unset).
func (m Mark) Attr(name string) string {
	return FormatValue(m.Attrs[name])
}

// HasMark reports whether marks contains a mark equal to m.
func HasMark(marks []Mark, m Mark) bool {
	for _, x := range marks {
		if x.Eq(m) {
			return true
		}
	}
	return false
}

func attrsEqual(a, b Attrs) bool {
	if len(a) != len(b) {
		return false
	}
	for k, v := range a {
		w, ok := b[k]
		if !ok || !reflect.DeepEqual(v, w) {
			return false
		}
	}
	return true
}

// Node is one element of a document tree. Text nodes carry Text and Marks;
// other nodes carry Content. Nodes remember the schema that built them.
type Node struct {
	Kind    NodeKind
	Attrs   Attrs
	Content []*Node
	Marks   []Mark
	Text    string

	schema *Schema
}

// Schema returns the schema that built n, or nil for hand-assembled nodes.
func (n *Node) Schema() *Schema { return n.schema }

// IsText reports whether n is a text run.
func (n *Node) IsText() bool { return n.Kind == KindText }

// Attr returns the raw attribute value, nil when unset.
func (n *Node) Attr(name string) any {
	if n.Attrs == nil {
		return nil
	}
	return n.Attrs[name]
}

// StringAttr returns the attribute rendered as a string ("" when unset).
func (n *Node) StringAttr(name string) string {
	return FormatValue(n.Attr(name))
}

// IntAttr returns a numeric attribute as an int, or def when it is unset
// or not a number.
func (n *Node) IntAttr(name string, def int) int {
	switch v := n.Attr(name).(type) {
	case float64:
		return int(v)
	case int:
		return v
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i)
		}
	case string:
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int { return len(n.Content) }

// TextContent concatenates the text of all descendant text runs.
func (n *Node) TextContent() string {
	if n.IsText() {
		return n.Text
	}
	var b strings.Builder
	for _, c := range n.Content {
		b.WriteString(c.TextContent())
	}
	return b.String()
}

// FormatValue renders an attribute value the way it appears in markup.
// Whole floats print without a fraction so a decoded 1024 stays "1024".
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
