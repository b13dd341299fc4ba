package summary

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// WeightVector maps a neighbour vertex to the number of arcs reaching it
// from a supernode's members. Parallel arcs are counted, not deduplicated.
type WeightVector = Counter[int]

// Builder computes weight vectors from a graph and the current partition.
type Builder struct {
	graph     graph.View
	partition *Partition
	workers   int
}

// NewBuilder binds a builder to g and p. workers <= 1 keeps BuildBatch
// sequential.
func NewBuilder(g graph.View, p *Partition, workers int) (*Builder, error) {
	if g.NumVertices() != p.Len() {
		return nil, fmt.Errorf("%w: graph has %d vertices, partition %d",
			ErrGraphMismatch, g.NumVertices(), p.Len())
	}
	return &Builder{graph: g, partition: p, workers: workers}, nil
}

// BuildOne scans every member of supernode r and counts arcs per neighbour.
func (b *Builder) BuildOne(r int) (WeightVector, error) {
	nodes, err := b.partition.Members(r)
	if err != nil {
		return nil, err
	}
	w := NewHashCounter[int](0)
	for _, u := range nodes {
		for _, v := range b.graph.Successors(u) {
			w.Add(v, 1)
		}
	}
	return w, nil
}

// BuildBatch builds the weight vector of every representative in group;
// result[i] belongs to group[i]. Vectors are independent, so with more than
// one worker they are built concurrently. The partition must not be merged
// while a batch is running.
func (b *Builder) BuildBatch(group []int) ([]WeightVector, error) {
	result := make([]WeightVector, len(group))
	if b.workers <= 1 || len(group) < 2 {
		for i, r := range group {
			w, err := b.BuildOne(r)
			if err != nil {
				return nil, err
			}
			result[i] = w
		}
		return result, nil
	}

	var eg errgroup.Group
	eg.SetLimit(b.workers)
	for i, r := range group {
		i, r := i, r
		eg.Go(func() error {
			w, err := b.BuildOne(r)
			if err != nil {
				return err
			}
			result[i] = w
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// Combine returns the key-wise sum of wa and wb, the weight vector of the
// merged supernode. Neither input is modified.
func Combine(wa, wb WeightVector) WeightVector {
	result := NewHashCounter[int](wa.Len() + wb.Len())
	wa.Range(func(k, n int) bool {
		result.Add(k, n)
		return true
	})
	wb.Range(func(k, n int) bool {
		result.Add(k, n)
		return true
	})
	return result
}
