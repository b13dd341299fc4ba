package strategy

import (
	"context"
	"fmt"

	"github.com/gilchrisn/graph-summarization-service/pkg/summary"
)

// Replay merges every group of a precomputed vertex -> group assignment in
// a single iteration, for example one produced by an offline clustering run.
type Replay struct {
	assignment []int
	done       bool
}

func NewReplay(assignment []int) *Replay {
	return &Replay{assignment: assignment}
}

func (r *Replay) Name() string { return "replay" }

func (r *Replay) Initial(_ context.Context, s *summary.Session) error {
	if len(r.assignment) != s.NumVertices() {
		return fmt.Errorf("%w: %d labels for %d vertices",
			ErrAssignmentSize, len(r.assignment), s.NumVertices())
	}
	r.done = false
	return nil
}

// Divide groups the current supernodes by the label of their
// representative. Only the first iteration yields groups.
func (r *Replay) Divide(s *summary.Session, iteration int) ([][]int, error) {
	if r.done {
		return nil, nil
	}
	var groups [][]int
	for _, g := range groupBy(s.Supernodes(), func(rep int) int { return r.assignment[rep] }) {
		if len(g) > 1 {
			groups = append(groups, g)
		}
	}
	return groups, nil
}

// Merge folds each group into one supernode.
func (r *Replay) Merge(s *summary.Session, groups [][]int, iteration int) (int, error) {
	r.done = true
	merges := 0
	for _, group := range groups {
		current := group[0]
		for _, other := range group[1:] {
			next, err := s.Merge(current, other)
			if err != nil {
				return merges, err
			}
			current = next
			merges++
		}
	}
	return merges, nil
}
