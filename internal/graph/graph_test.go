package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderRejectsInvalidEdges(t *testing.T) {
	tests := []struct {
		name string
		u, v int
		w    float64
		want error
	}{
		{"self loop", 1, 1, 1, ErrSelfLoop},
		{"negative index", -1, 2, 1, ErrNodeRange},
		{"index past end", 0, 4, 1, ErrNodeRange},
		{"zero weight", 0, 1, 0, ErrBadWeight},
		{"negative weight", 0, 1, -2, ErrBadWeight},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(4)
			err := b.AddEdge(tt.u, tt.v, tt.w)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestBuilderRejectsDuplicateInEitherOrientation(t *testing.T) {
	b := NewBuilder(3)
	require.NoError(t, b.AddEdge(0, 2, 1))
	require.ErrorIs(t, b.AddEdge(2, 0, 1), ErrDuplicateEdge)
	assert.True(t, b.HasEdge(2, 0))
	assert.False(t, b.HasEdge(0, 1))
}

func TestGraphAccessors(t *testing.T) {
	b := NewBuilder(4)
	require.NoError(t, b.AddEdge(0, 1, 1))
	require.NoError(t, b.AddEdge(1, 2, 2.5))
	require.NoError(t, b.AddEdge(1, 3, 1))
	g := b.Build()

	assert.Equal(t, 4, g.N())
	assert.Equal(t, 3, g.M())
	assert.True(t, g.Weighted())
	assert.Equal(t, 3, g.MaxDegree())
	assert.Equal(t, 1, g.Degree(0))
	assert.InDelta(t, 4.5, g.TotalWeight(), 1e-12)

	w, ok := g.Weight(2, 1)
	require.True(t, ok)
	assert.Equal(t, 2.5, w)

	_, ok = g.Weight(0, 3)
	assert.False(t, ok)
	_, ok = g.Weight(0, 9)
	assert.False(t, ok)

	// Later builder additions must not leak into the built graph.
	require.NoError(t, b.AddEdge(0, 3, 1))
	assert.Equal(t, 3, g.M())
}

func TestConnected(t *testing.T) {
	g, err := FromEdges(4, [][2]int{{0, 1}, {2, 3}})
	require.NoError(t, err)
	assert.False(t, g.Connected())

	g, err = FromEdges(4, [][2]int{{0, 1}, {1, 2}, {2, 3}})
	require.NoError(t, err)
	assert.True(t, g.Connected())

	assert.True(t, NewBuilder(0).Build().Connected())
}
