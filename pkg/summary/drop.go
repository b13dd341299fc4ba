package summary

import (
	"cmp"
	"fmt"
	"math"
	"slices"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// DropResult is the outcome of a lossy drop pass.
type DropResult struct {
	Encoding          *Encoding `json:"-" yaml:"-"`
	ErrorBound        float64   `json:"error_bound" yaml:"error_bound"`
	DroppedPlus       int       `json:"dropped_plus" yaml:"dropped_plus"`
	DroppedMinus      int       `json:"dropped_minus" yaml:"dropped_minus"`
	DroppedSuperedges int       `json:"dropped_superedges" yaml:"dropped_superedges"`

	// UndirectedCompressionRatio is measured against NumArcs/2 (integer
	// division), treating each undirected edge as two stored arcs. It is not
	// comparable with Evaluation.CompressionRatio, which uses NumArcs.
	UndirectedCompressionRatio float64 `json:"undirected_compression_ratio" yaml:"undirected_compression_ratio"`
}

// Drop greedily removes corrections and superedges while every vertex v
// stays within a budget of errorBound * outdegree(v) changed arcs. C+ arcs
// go first, then C- arcs, each costing one unit at both endpoints. Then
// superedges between distinct supernodes, largest blocks first, are dropped
// when every member of each side can pay the other side's size. Self
// superedges are always kept. enc is not modified.
func Drop(g graph.View, enc *Encoding, errorBound float64) (*DropResult, error) {
	if errorBound < 0 || math.IsNaN(errorBound) {
		return nil, fmt.Errorf("%w: %v", ErrNegativeErrorBound, errorBound)
	}
	if g.NumVertices() != enc.NumVertices {
		return nil, fmt.Errorf("%w: graph has %d vertices, encoding %d",
			ErrGraphMismatch, g.NumVertices(), enc.NumVertices)
	}

	cv := make([]float64, enc.NumVertices)
	for v := range cv {
		cv[v] = errorBound * float64(len(g.Successors(v)))
	}
	spend := func(v int, amount float64) error {
		cv[v] -= amount
		if cv[v] < 0 {
			return fmt.Errorf("%w: vertex %d at %v", ErrBudgetUnderflow, v, cv[v])
		}
		return nil
	}

	result := &DropResult{ErrorBound: errorBound}
	dropEdges := func(edges []Edge) ([]Edge, int, error) {
		kept := make([]Edge, 0, len(edges))
		dropped := 0
		for _, e := range edges {
			if affordable(cv, e) {
				if err := spend(e.U, 1); err != nil {
					return nil, 0, err
				}
				if err := spend(e.V, 1); err != nil {
					return nil, 0, err
				}
				dropped++
				continue
			}
			kept = append(kept, e)
		}
		return kept, dropped, nil
	}

	plus, droppedPlus, err := dropEdges(enc.CPlus)
	if err != nil {
		return nil, err
	}
	minus, droppedMinus, err := dropEdges(enc.CMinus)
	if err != nil {
		return nil, err
	}
	result.DroppedPlus, result.DroppedMinus = droppedPlus, droppedMinus

	ordered := slices.Clone(enc.P)
	slices.SortStableFunc(ordered, superedgeOrder(enc.Sizes))

	p := make([]Superedge, 0, len(ordered))
	for _, se := range ordered {
		if se.A == se.B {
			p = append(p, se)
			continue
		}
		sizeA, sizeB := float64(enc.Sizes[se.A]), float64(enc.Sizes[se.B])
		if !canPay(cv, enc.Members[se.A], sizeB) || !canPay(cv, enc.Members[se.B], sizeA) {
			p = append(p, se)
			continue
		}
		for _, v := range enc.Members[se.A] {
			if err := spend(v, sizeB); err != nil {
				return nil, err
			}
		}
		for _, v := range enc.Members[se.B] {
			if err := spend(v, sizeA); err != nil {
				return nil, err
			}
		}
		result.DroppedSuperedges++
	}

	pruned := *enc
	pruned.P, pruned.CPlus, pruned.CMinus = p, plus, minus
	result.Encoding = &pruned

	if half := enc.NumArcs / 2; half > 0 {
		result.UndirectedCompressionRatio = 1 - float64(pruned.Size())/float64(half)
	}
	return result, nil
}

// affordable reports whether both endpoints of e can pay one unit. A
// self-loop pays twice from the same vertex.
func affordable(cv []float64, e Edge) bool {
	if e.U == e.V {
		return cv[e.U] >= 2
	}
	return cv[e.U] >= 1 && cv[e.V] >= 1
}

func canPay(cv []float64, members []int, amount float64) bool {
	for _, v := range members {
		if cv[v] < amount {
			return false
		}
	}
	return true
}

// superedgeOrder puts larger blocks first and self superedges last; ties
// keep ascending (A, B) order.
func superedgeOrder(sizes []int) func(x, y Superedge) int {
	return func(x, y Superedge) int {
		xSelf, ySelf := x.A == x.B, y.A == y.B
		if xSelf != ySelf {
			if xSelf {
				return 1
			}
			return -1
		}
		if c := cmp.Compare(sizes[y.A]*sizes[y.B], sizes[x.A]*sizes[x.B]); c != 0 {
			return c
		}
		if c := cmp.Compare(x.A, y.A); c != 0 {
			return c
		}
		return cmp.Compare(x.B, y.B)
	}
}
