package summary

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// Edge is a vertex pair (U, V) standing for the arc U -> V.
type Edge struct {
	U int `json:"u" yaml:"u"`
	V int `json:"v" yaml:"v"`
}

// Superedge declares the block between dense supernode ids A and B.
type Superedge struct {
	A int `json:"a" yaml:"a"`
	B int `json:"b" yaml:"b"`
}

func compareEdges(x, y Edge) int {
	if c := cmp.Compare(x.U, y.U); c != 0 {
		return c
	}
	return cmp.Compare(x.V, y.V)
}

// Encoding is a summarised graph. Surviving supernodes are renumbered densely
// in ascending representative order. An arc (u, v) is present on
// reconstruction iff it is in CPlus, or (Owner[u], Owner[v]) is in P and
// (u, v) is not in CMinus. With Symmetric set, only arcs whose source
// supernode is not greater than the target supernode are encoded and every
// reconstructed arc is mirrored.
type Encoding struct {
	NumVertices   int     `json:"num_vertices"`
	NumArcs       int     `json:"num_arcs"`
	Symmetric     bool    `json:"symmetric"`
	NumSupernodes int     `json:"num_supernodes"`
	Owner         []int   `json:"-"`
	Members       [][]int `json:"members"`
	Sizes         []int   `json:"sizes"`

	P      []Superedge `json:"p"`
	CPlus  []Edge      `json:"c_plus"`
	CMinus []Edge      `json:"c_minus"`

	Elapsed time.Duration `json:"-"`
}

// Size returns |P| + |C+| + |C-|.
func (enc *Encoding) Size() int {
	return len(enc.P) + len(enc.CPlus) + len(enc.CMinus)
}

// Encoder turns a finalised partition into an Encoding. Implementations must
// agree on the content of P, C+ and C- for the same input.
type Encoder interface {
	Name() string
	Encode(g graph.View, p *Partition) (*Encoding, error)
}

// Encoder names accepted by NewEncoder.
const (
	EncoderPairwise = "pairwise"
	EncoderSorted   = "sorted"
)

// NewEncoder returns the encoder registered under name.
func NewEncoder(name string, symmetric bool, workers int) (Encoder, error) {
	switch name {
	case EncoderPairwise:
		return &PairwiseEncoder{Symmetric: symmetric, Workers: workers}, nil
	case EncoderSorted:
		return &SortedEncoder{Symmetric: symmetric}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoder, name)
	}
}

// newEncoding renumbers the surviving supernodes of p and records their
// members, sizes and the dense owner of every vertex.
func newEncoding(g graph.View, p *Partition, symmetric bool) (*Encoding, error) {
	if g.NumVertices() != p.Len() {
		return nil, fmt.Errorf("%w: graph has %d vertices, partition %d",
			ErrGraphMismatch, g.NumVertices(), p.Len())
	}
	reps := p.Supernodes()
	enc := &Encoding{
		NumVertices:   p.Len(),
		NumArcs:       graph.NumArcs(g),
		Symmetric:     symmetric,
		NumSupernodes: len(reps),
		Owner:         make([]int, p.Len()),
		Members:       make([][]int, len(reps)),
		Sizes:         make([]int, len(reps)),
	}
	for i, r := range reps {
		nodes, err := p.Members(r)
		if err != nil {
			return nil, err
		}
		enc.Members[i] = nodes
		enc.Sizes[i] = len(nodes)
		for _, v := range nodes {
			enc.Owner[v] = i
		}
	}
	return enc, nil
}

// denseThreshold is the largest distinct-arc count for which the block
// between a and b is still listed arc by arc.
func denseThreshold(sizes []int, a, b int) float64 {
	if a == b {
		s := float64(sizes[a])
		return s * (s - 1) / 4
	}
	return float64(sizes[a]) * float64(sizes[b]) / 2
}

// blockOutput collects the P, C+ and C- entries of one or more blocks.
type blockOutput struct {
	p     []Superedge
	plus  []Edge
	minus []Edge
}

// emit decides the block between dense supernodes a and b given its literal
// arcs, which must all run from a member of a to a member of b.
func (o *blockOutput) emit(enc *Encoding, a, b int, edges Counter[Edge]) {
	literal := make([]Edge, 0, edges.Len())
	edges.Range(func(e Edge, _ int) bool {
		literal = append(literal, e)
		return true
	})

	if float64(len(literal)) <= denseThreshold(enc.Sizes, a, b) {
		slices.SortFunc(literal, compareEdges)
		o.plus = append(o.plus, literal...)
		return
	}

	o.p = append(o.p, Superedge{A: a, B: b})
	for _, x := range enc.Members[a] {
		for _, y := range enc.Members[b] {
			if edges.Get(Edge{U: x, V: y}) == 0 {
				o.minus = append(o.minus, Edge{U: x, V: y})
			}
		}
	}
}

func (o *blockOutput) appendTo(enc *Encoding) {
	enc.P = append(enc.P, o.p...)
	enc.CPlus = append(enc.CPlus, o.plus...)
	enc.CMinus = append(enc.CMinus, o.minus...)
}

// Reconstruct decodes enc into its sorted, duplicate-free arc list.
func Reconstruct(enc *Encoding) []Edge {
	set := make(map[Edge]struct{}, len(enc.CPlus))
	for _, e := range enc.CPlus {
		set[e] = struct{}{}
	}
	for _, se := range enc.P {
		for _, x := range enc.Members[se.A] {
			for _, y := range enc.Members[se.B] {
				set[Edge{U: x, V: y}] = struct{}{}
			}
		}
	}
	for _, e := range enc.CMinus {
		delete(set, e)
	}
	edges := make([]Edge, 0, len(set))
	for e := range set {
		edges = append(edges, e)
	}
	if enc.Symmetric {
		for _, e := range edges {
			set[Edge{U: e.V, V: e.U}] = struct{}{}
		}
		edges = edges[:0]
		for e := range set {
			edges = append(edges, e)
		}
	}
	slices.SortFunc(edges, compareEdges)
	return edges
}
