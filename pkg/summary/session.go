package summary

import (
	"github.com/gilchrisn/graph-summarization-service/pkg/graph"
)

// Session is the surface a Strategy works through: the read-only graph, the
// partition queries, weight vectors, scoring and the Merge Operator. A
// Session is single-writer; BuildBatch may fan out internally but Merge must
// not run concurrently with anything else.
type Session struct {
	graph     graph.View
	partition *Partition
	builder   *Builder
	estimator *Estimator
	merges    int
}

// NewSession starts every vertex of g in its own supernode.
func NewSession(g graph.View, symmetric bool, workers int) *Session {
	p := NewPartition(g.NumVertices())
	return &Session{
		graph:     g,
		partition: p,
		builder:   &Builder{graph: g, partition: p, workers: workers},
		estimator: NewEstimator(p, symmetric),
	}
}

func (s *Session) Graph() graph.View { return s.graph }

func (s *Session) NumVertices() int { return s.partition.Len() }
func (s *Session) Count() int { return s.partition.Count() }
func (s *Session) Supernodes() []int { return s.partition.Supernodes() }
func (s *Session) IsValid(r int) bool { return s.partition.IsValid(r) }

func (s *Session) Owner(v int) (int, error) { return s.partition.Owner(v) }
func (s *Session) Members(r int) ([]int, error) { return s.partition.Members(r) }
func (s *Session) Size(r int) (int, error) { return s.partition.Size(r) }

func (s *Session) BuildOne(r int) (WeightVector, error) { return s.builder.BuildOne(r) }

func (s *Session) BuildBatch(group []int) ([]WeightVector, error) {
	return s.builder.BuildBatch(group)
}

func (s *Session) Jaccard(wa, wb WeightVector) (float64, error) { return Jaccard(wa, wb) }

func (s *Session) Savings(wa, wb WeightVector, a, b int) (float64, error) {
	return s.estimator.Savings(wa, wb, a, b)
}

// Merge commits the merge of supernodes a and b and returns the surviving
// representative.
func (s *Session) Merge(a, b int) (int, error) {
	r, err := s.partition.Merge(a, b)
	if err != nil {
		return none, err
	}
	s.merges++
	return r, nil
}

// Merges returns the number of merges committed so far.
func (s *Session) Merges() int { return s.merges }
