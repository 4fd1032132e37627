package doctree

import (
	"encoding/json"
	"fmt"
)

// NodeFromJSON decodes a document tree in the {type, attrs, content, marks,
// text} JSON shape.
func (s *Schema) NodeFromJSON(data []byte) (*Node, error) {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return s.NodeFromValue(v)
}

// NodeFromValue builds a node from an already-decoded JSON value.
func (s *Schema) NodeFromValue(v any) (*Node, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("%w: node must be an object, got %T", ErrInvalidDocument, v)
	}
	typ, _ := obj["type"].(string)
	if typ == "" {
		return nil, fmt.Errorf("%w: node without type", ErrInvalidDocument)
	}

	marks, err := s.marksFromValue(obj["marks"])
	if err != nil {
		return nil, err
	}

	if NodeKind(typ) == KindText {
		text, _ := obj["text"].(string)
		if text == "" {
			return nil, fmt.Errorf("%w: empty text nodes are not allowed", ErrInvalidDocument)
		}
		return s.Text(text, marks...), nil
	}

	attrs, _ := obj["attrs"].(map[string]any)
	var content []*Node
	if raw, ok := obj["content"]; ok && raw != nil {
		list, ok := raw.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: %s content must be an array", ErrInvalidDocument, typ)
		}
		content = make([]*Node, 0, len(list))
		for _, item := range list {
			child, err := s.NodeFromValue(item)
			if err != nil {
				return nil, err
			}
			content = append(content, child)
		}
	}

	n, err := s.Node(NodeKind(typ), attrs, content...)
	if err != nil {
		return nil, err
	}
	n.Marks = marks
	return n, nil
}

func (s *Schema) marksFromValue(raw any) ([]Mark, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("%w: marks must be an array", ErrInvalidDocument)
	}
	marks := make([]Mark, 0, len(list))
	for _, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: mark must be an object, got %T", ErrInvalidDocument, item)
		}
		typ, _ := obj["type"].(string)
		attrs, _ := obj["attrs"].(map[string]any)
		m, err := s.Mark(MarkKind(typ), attrs)
		if err != nil {
			return nil, err
		}
		marks = append(marks, m)
	}
	return marks, nil
}

type jsonMark struct {
	Type  MarkKind `json:"type"`
	Attrs Attrs    `json:"attrs,omitempty"`
}

type jsonNode struct {
	Type    NodeKind   `json:"type"`
	Attrs   Attrs      `json:"attrs,omitempty"`
	Content []*Node    `json:"content,omitempty"`
	Marks   []jsonMark `json:"marks,omitempty"`
	Text    string     `json:"text,omitempty"`
}

// MarshalJSON encodes n in the shape NodeFromJSON reads.
func (n *Node) MarshalJSON() ([]byte, error) {
	out := jsonNode{Type: n.Kind, Attrs: n.Attrs, Content: n.Content, Text: n.Text}
	for _, m := range n.Marks {
		out.Marks = append(out.Marks, jsonMark{Type: m.Kind, Attrs: m.Attrs})
	}
	return json.Marshal(out)
}
