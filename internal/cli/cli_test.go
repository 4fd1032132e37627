package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

const quoteDoc = `{"type":"doc","content":[
	{"type":"paragraph","content":[
		{"type":"text","text":"Read "},
		{"type":"text","marks":[{"type":"strong"}],"text":"this"}
	]},
	{"type":"ordered_list","content":[{"type":"list_item","content":[
		{"type":"paragraph","content":[{"type":"text","marks":[{"type":"code"}],"text":"run"}]}
	]}]}
]}`

func TestRenderStdin(t *testing.T) {
	out, _, err := run(t, quoteDoc, "render", "-")
	require.NoError(t, err)
	assert.Equal(t, "Read '''this'''\n\n# ``run``\n", out)
}

func TestRenderFileWithDialectFile(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(input, []byte("- `run` it\n"), 0o644))
	dialect := filepath.Join(dir, "house.yaml")
	require.NoError(t, os.WriteFile(dialect, []byte("name: house\nmarks:\n  code: {open: \"<tt>\", close: \"</tt>\"}\n"), 0o644))
	outPath := filepath.Join(dir, "notes.wiki")

	_, stderr, err := run(t, "", "render", input, "--dialect-file", dialect, "--out", outPath, "-v")
	require.NoError(t, err)

	got, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "* <tt>run</tt> it\n", string(got))
	assert.Contains(t, stderr, "dialect house")
	assert.Contains(t, stderr, `"notes"`)
}

func TestRenderEmitJSON(t *testing.T) {
	out, _, err := run(t, `{"type":"doc","content":[{"type":"paragraph","content":[{"type":"text","text":"hi"}]}]}`,
		"render", "-", "--emit-json")
	require.NoError(t, err)
	assert.Contains(t, out, `"type": "paragraph"`)
	assert.Contains(t, out, `"text": "hi"`)
}

func TestRenderErrors(t *testing.T) {
	_, _, err := run(t, quoteDoc, "render", "-", "--dialect", "minimal")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ordered_list")

	_, _, err = run(t, "", "render", "missing.md")
	assert.Error(t, err)

	_, _, err = run(t, "", "render", "image.png")
	assert.Error(t, err)

	_, _, err = run(t, quoteDoc, "render", "-", "--dialect", "fancy")
	assert.Error(t, err)

	_, _, err = run(t, "", "render")
	assert.Error(t, err)
}

func TestDialects(t *testing.T) {
	out, _, err := run(t, "", "dialects")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "  minimal"), lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "* standard"), lines[1])
	assert.Contains(t, lines[1], "lists=repeat")
}
