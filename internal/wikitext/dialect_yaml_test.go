package wikitext

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const houseDialect = `
name: house
base: standard
list_prefix: append
marks:
  code: {open: "<tt>", close: "</tt>"}
  link: {open: "[{href} ", close: "]"}
exclude_nodes: [image]
`

func TestLoadDialect(t *testing.T) {
	d, err := LoadDialect(strings.NewReader(houseDialect))
	require.NoError(t, err)
	assert.Equal(t, "house", d.Name)
	assert.Equal(t, PrefixAppend, d.ListPrefix)
	assert.NotContains(t, d.Nodes, doctree.KindImage)

	s := doctree.Lists
	link := s.MustMark(doctree.MarkLink, doctree.Attrs{"href": "https://example.com"})
	doc := s.Doc(
		s.MustNode(doctree.KindBulletList, nil,
			s.MustNode(doctree.KindListItem, nil,
				s.MustNode(doctree.KindParagraph, nil,
					s.Text("run ", s.MustMark(doctree.MarkCode, nil)),
					s.Text("docs", link)),
				s.MustNode(doctree.KindOrderedList, nil,
					s.MustNode(doctree.KindListItem, nil,
						s.MustNode(doctree.KindParagraph, nil, s.Text("step")))))),
	)
	out, err := New(d).Serialize(doc)
	require.NoError(t, err)
	assert.Equal(t, "* <tt>run</tt> [https://example.com docs]\n*# step", out)

	// The base dialect is untouched.
	std := Standard()
	assert.Contains(t, std.Nodes, doctree.KindImage)
	assert.Equal(t, "``", std.Marks[doctree.MarkCode].Open(doctree.Mark{}))
}

func TestLoadDialectErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"unknown base", "base: mediawiki\n"},
		{"bad list prefix", "list_prefix: sideways\n"},
		{"unknown field", "colour: blue\n"},
		{"empty mark", "marks:\n  em: {}\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDialect(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestLoadDialectEmptyUsesStandard(t *testing.T) {
	d, err := LoadDialect(strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "custom", d.Name)
	assert.NoError(t, d.Covers(doctree.Lists))
}

func TestLoadDialectFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "house.yaml")
	require.NoError(t, os.WriteFile(path, []byte(houseDialect), 0o644))
	d, err := LoadDialectFile(path)
	require.NoError(t, err)
	assert.Equal(t, "house", d.Name)

	_, err = LoadDialectFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
