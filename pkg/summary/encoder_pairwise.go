package summary

import (
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// PairwiseEncoder scans each supernode's members, buckets their arcs by
// target supernode and decides every bucket. Supernodes are scanned
// independently, so Workers > 1 spreads the scan over goroutines that each
// own their output buffer.
type PairwiseEncoder struct {
	Symmetric bool
	Workers   int
}

func (e *PairwiseEncoder) Name() string { return EncoderPairwise }

func (e *PairwiseEncoder) Encode(g graph.View, p *Partition) (*Encoding, error) {
	start := time.Now()
	enc, err := newEncoding(g, p, e.Symmetric)
	if err != nil {
		return nil, err
	}

	outputs := make([]blockOutput, enc.NumSupernodes)
	if e.Workers <= 1 {
		for a := range outputs {
			e.scan(g, enc, a, &outputs[a])
		}
	} else {
		var eg errgroup.Group
		eg.SetLimit(e.Workers)
		for a := range outputs {
			a := a
			eg.Go(func() error {
				e.scan(g, enc, a, &outputs[a])
				return nil
			})
		}
		_ = eg.Wait()
	}

	for i := range outputs {
		outputs[i].appendTo(enc)
	}
	enc.Elapsed = time.Since(start)
	return enc, nil
}

// scan handles every block whose source is supernode a.
func (e *PairwiseEncoder) scan(g graph.View, enc *Encoding, a int, out *blockOutput) {
	buckets := make(map[int]HashCounter[Edge])
	for _, u := range enc.Members[a] {
		for _, v := range g.Successors(u) {
			b := enc.Owner[v]
			if e.Symmetric && b < a {
				continue
			}
			bucket, ok := buckets[b]
			if !ok {
				bucket = NewHashCounter[Edge](1)
				buckets[b] = bucket
			}
			bucket.Add(Edge{U: u, V: v}, 1)
		}
	}

	targets := make([]int, 0, len(buckets))
	for b := range buckets {
		targets = append(targets, b)
	}
	slices.Sort(targets)
	for _, b := range targets {
		out.emit(enc, a, b, buckets[b])
	}
}
