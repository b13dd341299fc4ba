package louvain

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// ErrInvalidGraph indicates an inconsistent weighted graph.
var ErrInvalidGraph = errors.New("louvain: invalid graph")

// Graph represents a weighted undirected graph using simple arrays. Every
// undirected link appears in the lists of both endpoints; a self-loop
// appears once.
type Graph struct {
	NumNodes    int         `json:"num_nodes"`
	Adjacency   [][]int     `json:"-"`            // adjacency[i] = neighbours of node i
	Weights     [][]float64 `json:"-"`            // weights[i][j] = weight of link i -> adjacency[i][j]
	Degrees     []float64   `json:"degrees"`      // degrees[i] = sum of weights[i]
	TotalWeight float64     `json:"total_weight"` // sum of all degrees
}

// NewGraph creates a new graph with n nodes
func NewGraph(numNodes int) *Graph {
	return &Graph{
		NumNodes:  numNodes,
		Adjacency: make([][]int, numNodes),
		Weights:   make([][]float64, numNodes),
		Degrees:   make([]float64, numNodes),
	}
}

// addLink appends the one-directional entry u -> v.
func (g *Graph) addLink(u, v int, weight float64) {
	g.Adjacency[u] = append(g.Adjacency[u], v)
	g.Weights[u] = append(g.Weights[u], weight)
	g.Degrees[u] += weight
	g.TotalWeight += weight
}

// AddEdge adds a weighted undirected edge between two nodes
func (g *Graph) AddEdge(u, v int, weight float64) error {
	if u < 0 || u >= g.NumNodes || v < 0 || v >= g.NumNodes {
		return fmt.Errorf("%w: node index out of range: u=%d, v=%d, numNodes=%d",
			ErrInvalidGraph, u, v, g.NumNodes)
	}
	if weight <= 0 {
		return fmt.Errorf("%w: edge weight must be positive: %f", ErrInvalidGraph, weight)
	}
	g.addLink(u, v, weight)
	if u != v {
		g.addLink(v, u, weight)
	}
	return nil
}

// SelfLoop returns the weight of the self-loop on node, or 0.
func (g *Graph) SelfLoop(node int) float64 {
	for i, neighbor := range g.Adjacency[node] {
		if neighbor == node {
			return g.Weights[node][i]
		}
	}
	return 0
}

// Validate checks graph consistency
func (g *Graph) Validate() error {
	for i := 0; i < g.NumNodes; i++ {
		if len(g.Adjacency[i]) != len(g.Weights[i]) {
			return fmt.Errorf("%w: adjacency and weights inconsistent for node %d", ErrInvalidGraph, i)
		}
		for j, neighbor := range g.Adjacency[i] {
			if neighbor < 0 || neighbor >= g.NumNodes {
				return fmt.Errorf("%w: invalid neighbor %d for node %d", ErrInvalidGraph, neighbor, i)
			}
			if g.Weights[i][j] <= 0 {
				return fmt.Errorf("%w: non-positive weight %f for edge %d-%d",
					ErrInvalidGraph, g.Weights[i][j], i, neighbor)
			}
		}
	}
	return nil
}

// FromView symmetrises a directed graph view into a unit-weight undirected
// graph. Each arc adds 1 to the weight of its undirected edge, so a
// reciprocated pair weighs 2.
func FromView(v graph.View) *Graph {
	n := v.NumVertices()
	links := make([]map[int]float64, n)
	touch := func(u, w int) {
		if links[u] == nil {
			links[u] = make(map[int]float64)
		}
		links[u][w]++
	}
	for u := 0; u < n; u++ {
		for _, w := range v.Successors(u) {
			touch(u, w)
			if u != w {
				touch(w, u)
			}
		}
	}

	g := NewGraph(n)
	for u, m := range links {
		neighbors := make([]int, 0, len(m))
		for w := range m {
			neighbors = append(neighbors, w)
		}
		slices.Sort(neighbors)
		for _, w := range neighbors {
			g.addLink(u, w, m[w])
		}
	}
	return g
}
