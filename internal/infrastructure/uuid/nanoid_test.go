package uuid

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNanoIDGenerator_Generate(t *testing.T) {
	g := NewNanoIDGenerator(12)

	a, err := g.Generate()
	require.NoError(t, err)
	b, err := g.Generate()
	require.NoError(t, err)

	assert.Len(t, a, 12)
	assert.NotEqual(t, a, b)
}

func TestNanoIDGenerator_WithAlphabet(t *testing.T) {
	g := NewNanoIDGenerator(16).WithAlphabet(LowerAlphanumeric)

	id, err := g.Generate()
	require.NoError(t, err)
	assert.Len(t, id, 16)
	for _, r := range id {
		assert.True(t, strings.ContainsRune(LowerAlphanumeric, r), "unexpected rune %q", r)
	}
}

func TestNewNanoIDGenerator_InvalidLength(t *testing.T) {
	assert.Panics(t, func() { NewNanoIDGenerator(0) })
}
