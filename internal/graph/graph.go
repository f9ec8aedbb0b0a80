package graph

import (
	"fmt"
	"math"
)

// Neighbor is one entry of a node's adjacency list.
type Neighbor struct {
	Node   int
	Weight float64
}

// Edge is an undirected edge with U < V.
type Edge struct {
	U, V   int
	Weight float64
}

// Graph is an immutable undirected graph without self-loops or parallel edges.
type Graph struct {
	n        int
	edges    []Edge
	adj      [][]Neighbor
	weighted bool
	total    float64
	maxDeg   int
}

// N returns the node count.
func (g *Graph) N() int { return g.n }

// M returns the edge count.
func (g *Graph) M() int { return len(g.edges) }

// Weighted reports whether any edge carries a weight other than 1.
func (g *Graph) Weighted() bool { return g.weighted }

// Edges returns the edge list. The slice is shared; callers must not modify it.
func (g *Graph) Edges() []Edge { return g.edges }

// Neighbors returns the adjacency list of n. The slice is shared; callers must not modify it.
func (g *Graph) Neighbors(n int) []Neighbor { return g.adj[n] }

func (g *Graph) Degree(n int) int { return len(g.adj[n]) }

func (g *Graph) MaxDegree() int { return g.maxDeg }

// TotalWeight is the sum of all edge weights, the upper bound of any cut.
func (g *Graph) TotalWeight() float64 { return g.total }

// Weight returns the weight of edge u-v and whether the edge exists.
func (g *Graph) Weight(u, v int) (float64, bool) {
	if u < 0 || u >= g.n || v < 0 || v >= g.n {
		return 0, false
	}
	a, b := u, v
	if len(g.adj[b]) < len(g.adj[a]) {
		a, b = b, a
	}
	for _, nb := range g.adj[a] {
		if nb.Node == b {
			return nb.Weight, true
		}
	}
	return 0, false
}

// Connected reports whether every node is reachable from node 0.
// The empty graph counts as connected.
func (g *Graph) Connected() bool {
	if g.n == 0 {
		return true
	}
	seen := make([]bool, g.n)
	stack := []int{0}
	seen[0] = true
	visited := 1
	for len(stack) > 0 {
		u := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, nb := range g.adj[u] {
			if !seen[nb.Node] {
				seen[nb.Node] = true
				visited++
				stack = append(stack, nb.Node)
			}
		}
	}
	return visited == g.n
}

func (g *Graph) String() string {
	return fmt.Sprintf("graph(n=%d, m=%d, weighted=%t)", g.n, len(g.edges), g.weighted)
}

// Builder accumulates edges and validates them before producing a Graph.
type Builder struct {
	n     int
	edges []Edge
	seen  map[[2]int]struct{}
}

func NewBuilder(n int) *Builder {
	return &Builder{n: n, seen: make(map[[2]int]struct{})}
}

// AddEdge adds the undirected edge u-v with weight w.
func (b *Builder) AddEdge(u, v int, w float64) error {
	if u < 0 || u >= b.n || v < 0 || v >= b.n {
		return fmt.Errorf("%w: edge %d-%d with n=%d", ErrNodeRange, u, v, b.n)
	}
	if u == v {
		return fmt.Errorf("%w: node %d", ErrSelfLoop, u)
	}
	if w <= 0 || math.IsNaN(w) || math.IsInf(w, 0) {
		return fmt.Errorf("%w: %d-%d has weight %g", ErrBadWeight, u, v, w)
	}
	if u > v {
		u, v = v, u
	}
	key := [2]int{u, v}
	if _, dup := b.seen[key]; dup {
		return fmt.Errorf("%w: %d-%d", ErrDuplicateEdge, u, v)
	}
	b.seen[key] = struct{}{}
	b.edges = append(b.edges, Edge{U: u, V: v, Weight: w})
	return nil
}

// HasEdge reports whether u-v was already added.
func (b *Builder) HasEdge(u, v int) bool {
	if u > v {
		u, v = v, u
	}
	_, ok := b.seen[[2]int{u, v}]
	return ok
}

// Build freezes the accumulated edges. The builder may be reused afterwards;
// later additions do not affect the returned graph.
func (b *Builder) Build() *Graph {
	g := &Graph{
		n:     b.n,
		edges: make([]Edge, len(b.edges)),
		adj:   make([][]Neighbor, b.n),
	}
	copy(g.edges, b.edges)

	deg := make([]int, b.n)
	for _, e := range g.edges {
		deg[e.U]++
		deg[e.V]++
	}
	for i := range g.adj {
		g.adj[i] = make([]Neighbor, 0, deg[i])
		if deg[i] > g.maxDeg {
			g.maxDeg = deg[i]
		}
	}
	for _, e := range g.edges {
		g.adj[e.U] = append(g.adj[e.U], Neighbor{Node: e.V, Weight: e.Weight})
		g.adj[e.V] = append(g.adj[e.V], Neighbor{Node: e.U, Weight: e.Weight})
		g.total += e.Weight
		if e.Weight != 1 {
			g.weighted = true
		}
	}
	return g
}

// FromEdges builds an unweighted graph from 0-based endpoint pairs.
func FromEdges(n int, pairs [][2]int) (*Graph, error) {
	b := NewBuilder(n)
	for _, p := range pairs {
		if err := b.AddEdge(p[0], p[1], 1); err != nil {
			return nil, err
		}
	}
	return b.Build(), nil
}
