package graph

import (
	"fmt"
	"sort"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// FromGonum converts a gonum directed graph into a Graph with dense vertex ids.
// Vertex i of the result corresponds to ids[i]; ids are assigned in ascending
// gonum node id order.
func FromGonum(dg gonum.Directed) (*Graph, []int64, error) {
	nodes := gonum.NodesOf(dg.Nodes())
	ids := make([]int64, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID()
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	index := make(map[int64]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	g := NewGraph(len(ids))
	for i, id := range ids {
		succ := gonum.NodesOf(dg.From(id))
		targets := make([]int, 0, len(succ))
		for _, s := range succ {
			targets = append(targets, index[s.ID()])
		}
		sort.Ints(targets)
		for _, t := range targets {
			if err := g.AddArc(i, t); err != nil {
				return nil, nil, fmt.Errorf("gonum node %d: %w", id, err)
			}
		}
	}
	return g, ids, nil
}

// ToGonum copies v into a gonum simple directed graph. simple.DirectedGraph
// holds no self-loops or parallel arcs, so both are dropped.
func ToGonum(v View) *simple.DirectedGraph {
	dg := simple.NewDirectedGraph()
	for u := 0; u < v.NumVertices(); u++ {
		dg.AddNode(simple.Node(u))
	}
	for u := 0; u < v.NumVertices(); u++ {
		for _, t := range v.Successors(u) {
			if t == u || dg.HasEdgeFromTo(int64(u), int64(t)) {
				continue
			}
			dg.SetEdge(dg.NewEdge(simple.Node(u), simple.Node(t)))
		}
	}
	return dg
}
