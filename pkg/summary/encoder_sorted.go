package summary

import (
	"cmp"
	"slices"
	"time"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// SortedEncoder emits one (A, B, u, v) tuple per arc, sorts the tuples and
// decides each run of equal (A, B) as it closes. It never materialises
// per-supernode buckets; the cost is an O(E log E) sort.
type SortedEncoder struct {
	Symmetric bool
}

type arcTuple struct {
	a, b int
	u, v int
}

func compareTuples(x, y arcTuple) int {
	if c := cmp.Compare(x.a, y.a); c != 0 {
		return c
	}
	if c := cmp.Compare(x.b, y.b); c != 0 {
		return c
	}
	if c := cmp.Compare(x.u, y.u); c != 0 {
		return c
	}
	return cmp.Compare(x.v, y.v)
}

func (e *SortedEncoder) Name() string { return EncoderSorted }

func (e *SortedEncoder) Encode(g graph.View, p *Partition) (*Encoding, error) {
	start := time.Now()
	enc, err := newEncoding(g, p, e.Symmetric)
	if err != nil {
		return nil, err
	}

	tuples := make([]arcTuple, 0, enc.NumArcs)
	for u := 0; u < enc.NumVertices; u++ {
		for _, v := range g.Successors(u) {
			a, b := enc.Owner[u], enc.Owner[v]
			if e.Symmetric && a > b {
				continue
			}
			tuples = append(tuples, arcTuple{a: a, b: b, u: u, v: v})
		}
	}
	if len(tuples) == 0 {
		enc.Elapsed = time.Since(start)
		return enc, nil
	}
	slices.SortFunc(tuples, compareTuples)

	var out blockOutput
	prevA, prevB := tuples[0].a, tuples[0].b
	edges := NewHashCounter[Edge](0)
	for _, t := range tuples {
		if t.a != prevA || t.b != prevB {
			out.emit(enc, prevA, prevB, edges)
			edges = NewHashCounter[Edge](0)
			prevA, prevB = t.a, t.b
		}
		edges.Add(Edge{U: t.u, V: t.v}, 1)
	}
	out.emit(enc, prevA, prevB, edges)

	out.appendTo(enc)
	enc.Elapsed = time.Since(start)
	return enc, nil
}
