package wikitext

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry(t *testing.T) {
	house, err := LoadDialect(strings.NewReader("name: house\nbase: minimal\n"))
	require.NoError(t, err)

	r, err := NewRegistry("house", house)
	require.NoError(t, err)
	assert.Equal(t, []string{"house", "minimal", "standard"}, r.Names())
	assert.Equal(t, "house", r.Default())

	d, err := r.Get("")
	require.NoError(t, err)
	assert.Same(t, house, d)

	d, err = r.Get("standard")
	require.NoError(t, err)
	assert.Equal(t, "standard", d.Name)

	_, err = r.Get("fancy")
	assert.ErrorIs(t, err, ErrUnknownDialect)
}

func TestRegistryUnknownDefault(t *testing.T) {
	_, err := NewRegistry("fancy")
	assert.ErrorIs(t, err, ErrUnknownDialect)
}
