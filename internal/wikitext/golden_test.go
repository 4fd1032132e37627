package wikitext

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/dgallion1/docwiki/internal/doctree"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

func TestGoldenComposite(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("testdata", "composite.json"))
	require.NoError(t, err)
	doc, err := doctree.Lists.NodeFromJSON(data)
	require.NoError(t, err)

	out, err := Serialize(doc)
	require.NoError(t, err)

	g := goldie.New(t, goldie.WithFixtureDir("testdata/golden"), goldie.WithNameSuffix(".golden"))
	g.Assert(t, "composite", []byte(out))
}
