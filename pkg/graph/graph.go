package graph

import (
	"errors"
	"fmt"
)

var (
	// ErrVertexOutOfRange is returned when an arc endpoint is not in [0, n).
	ErrVertexOutOfRange = errors.New("graph: vertex out of range")
	// ErrNegativeSize is returned when a graph is created with a negative vertex count.
	ErrNegativeSize = errors.New("graph: negative vertex count")
)

// View is read-only access to a directed graph with dense integer vertex ids.
// Successors may contain duplicates when the source graph has parallel arcs.
type View interface {
	NumVertices() int
	Successors(v int) []int
}

// ArcCounter is implemented by views that know their arc count without a scan.
type ArcCounter interface {
	NumArcs() int
}

// NumArcs returns the number of arcs in v, summing out-degrees when v does
// not implement ArcCounter.
func NumArcs(v View) int {
	if c, ok := v.(ArcCounter); ok {
		return c.NumArcs()
	}
	total := 0
	for u := 0; u < v.NumVertices(); u++ {
		total += len(v.Successors(u))
	}
	return total
}

// Graph is a directed graph stored as per-vertex successor lists.
type Graph struct {
	NumNodes  int     `json:"num_nodes"`
	Adjacency [][]int `json:"-"` // adjacency[u] = successors of u
	Arcs      int     `json:"num_arcs"`
}

// NewGraph creates a graph with n vertices and no arcs.
func NewGraph(numNodes int) *Graph {
	if numNodes < 0 {
		numNodes = 0
	}
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
	}
}

// AddArc adds the directed arc u -> v.
func (g *Graph) AddArc(u, v int) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("%w: u=%d, v=%d, numNodes=%d", ErrVertexOutOfRange, u, v, g.NumNodes)
	}
	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.Arcs++
	return nil
}

// AddEdge adds an undirected edge as the arc pair u -> v and v -> u.
// A self-loop is stored once.
func (g *Graph) AddEdge(u, v int) error {
	if err := g.AddArc(u, v); err != nil {
		return err
	}
	if u != v {
		return g.AddArc(v, u)
	}
	return nil
}

func (g *Graph) NumVertices() int { return g.NumNodes }

func (g *Graph) NumArcs() int { return g.Arcs }

// Successors returns the successor list of v, or nil when v is out of range.
func (g *Graph) Successors(v int) []int {
	if v < 0 || v >= g.NumNodes {
		return nil
	}
	return g.Adjacency[v]
}

// OutDegree returns the number of arcs leaving v, counting duplicates.
func (g *Graph) OutDegree(v int) int {
	return len(g.Successors(v))
}

// HasArc reports whether u -> v is present.
func (g *Graph) HasArc(u, v int) bool {
	for _, w := range g.Successors(u) {
		if w == v {
			return true
		}
	}
	return false
}

// Clone creates a deep copy of the graph
func (g *Graph) Clone() *Graph {
	clone := NewGraph(g.NumNodes)
	clone.Arcs = g.Arcs
	for i := 0; i < g.NumNodes; i++ {
		clone.Adjacency[i] = make([]int, len(g.Adjacency[i]))
		copy(clone.Adjacency[i], g.Adjacency[i])
	}
	return clone
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	if g.NumNodes < 0 {
		return ErrNegativeSize
	}
	if len(g.Adjacency) != g.NumNodes {
		return fmt.Errorf("adjacency has %d rows for %d nodes", len(g.Adjacency), g.NumNodes)
	}

	arcs := 0
	for u := 0; u < g.NumNodes; u++ {
		for _, v := range g.Adjacency[u] {
			if v < 0 || v >= g.NumNodes {
				return fmt.Errorf("%w: neighbor %d of node %d", ErrVertexOutOfRange, v, u)
			}
		}
		arcs += len(g.Adjacency[u])
	}
	if arcs != g.Arcs {
		return fmt.Errorf("arc count %d does not match adjacency total %d", g.Arcs, arcs)
	}
	return nil
}

// IsSymmetric reports whether every arc u -> v has a matching v -> u.
func IsSymmetric(v View) bool {
	type arc struct{ u, v int }
	counts := make(map[arc]int)
	for u := 0; u < v.NumVertices(); u++ {
		for _, w := range v.Successors(u) {
			if u == w {
				continue
			}
			counts[arc{u, w}]++
		}
	}
	for a, c := range counts {
		if counts[arc{a.v, a.u}] != c {
			return false
		}
	}
	return true
}
