package graph

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSparseFormat(t *testing.T) {
	in := `# triangle with a tail
4 4
1 2 1
2 3 2.5
3 1
3 4 1
`
	g, err := Read(strings.NewReader(in))
	require.NoError(t, err)
	assert.Equal(t, 4, g.N())
	assert.Equal(t, 4, g.M())

	w, ok := g.Weight(1, 2)
	require.True(t, ok)
	assert.Equal(t, 2.5, w)

	w, ok = g.Weight(0, 2)
	require.True(t, ok)
	assert.Equal(t, 1.0, w)
}

func TestReadErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"empty", "", ErrFormat},
		{"bad header", "4\n", ErrFormat},
		{"edge count mismatch", "3 2\n1 2 1\n", ErrFormat},
		{"bad weight text", "2 1\n1 2 x\n", ErrFormat},
		{"zero based", "2 1\n0 1 1\n", ErrNodeRange},
		{"loop", "2 1\n1 1 1\n", ErrSelfLoop},
		{"duplicate", "2 2\n1 2 1\n2 1 1\n", ErrDuplicateEdge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.in))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWriteReadRoundTrip(t *testing.T) {
	b := NewBuilder(5)
	require.NoError(t, b.AddEdge(0, 4, 0.25))
	require.NoError(t, b.AddEdge(1, 2, 3))
	require.NoError(t, b.AddEdge(2, 3, 1))
	g := b.Build()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, g))
	assert.True(t, strings.HasPrefix(buf.String(), "5 3\n"))

	back, err := Read(&buf)
	require.NoError(t, err)
	assert.Equal(t, g.Edges(), back.Edges())
}

func TestSaveLoad(t *testing.T) {
	g, err := Torus(3, 4)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "torus.txt")
	require.NoError(t, Save(path, g))

	back, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, g.N(), back.N())
	assert.Equal(t, g.M(), back.M())

	_, err = Load(filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)
}
